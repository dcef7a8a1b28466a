package services

import (
	"context"
	"errors"
	"testing"

	"github.com/resume-analyzer/apiserver/types"
)

func testApplicationService(scorer MatchScorer) (*ApplicationService, *fakeApplicationRepo, *fakeJobRepo, *fakeResumeRepo) {
	apps := newFakeApplicationRepo()
	jobs := newFakeJobRepo()
	resumes := newFakeResumeRepo()
	svc := NewApplicationService(apps, jobs, resumes, scorer, nil, nil)
	return svc, apps, jobs, resumes
}

func TestApplyWithExplicitResume(t *testing.T) {
	scorer := &fakeScorer{score: 72.5}
	svc, _, jobs, resumes := testApplicationService(scorer)

	job, _ := jobs.Create(context.Background(), types.Job{
		Title:       "Backend Engineer",
		Company:     "Acme",
		Location:    "Remote",
		Description: "go postgres grpc",
	})
	resume, _ := resumes.Create(context.Background(), types.Resume{UserID: 1, Text: "go postgres"})

	detail, err := svc.Apply(context.Background(), 1, job.ID, resume.ID)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if detail.MatchScore != 72.5 {
		t.Errorf("MatchScore = %v, want 72.5", detail.MatchScore)
	}
	if detail.JobTitle != "Backend Engineer" || detail.Company != "Acme" || detail.Location != "Remote" {
		t.Errorf("snapshot fields = %q/%q/%q", detail.JobTitle, detail.Company, detail.Location)
	}
	if scorer.lastTextA != "go postgres" {
		t.Errorf("scorer textA = %q, want the resume text", scorer.lastTextA)
	}
	if scorer.lastTextB != "go postgres grpc" {
		t.Errorf("scorer textB = %q, want the job description", scorer.lastTextB)
	}
}

func TestApplyDefaultsToLatestResume(t *testing.T) {
	scorer := &fakeScorer{score: 10}
	svc, _, jobs, resumes := testApplicationService(scorer)

	job, _ := jobs.Create(context.Background(), types.Job{Description: "jd"})
	if _, err := resumes.Create(context.Background(), types.Resume{UserID: 1, Text: "old resume"}); err != nil {
		t.Fatal(err)
	}
	if _, err := resumes.Create(context.Background(), types.Resume{UserID: 1, Text: "new resume"}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Apply(context.Background(), 1, job.ID, 0); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if scorer.lastTextA != "new resume" {
		t.Errorf("scored against %q, want the most recent resume", scorer.lastTextA)
	}
}

func TestApplyJobNotFound(t *testing.T) {
	svc, _, _, resumes := testApplicationService(&fakeScorer{})
	if _, err := resumes.Create(context.Background(), types.Resume{UserID: 1}); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Apply(context.Background(), 1, 999, 0)
	if !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("Apply() error = %v, want ErrJobNotFound", err)
	}
}

func TestApplyResumeNotOwned(t *testing.T) {
	svc, _, jobs, resumes := testApplicationService(&fakeScorer{})

	job, _ := jobs.Create(context.Background(), types.Job{Description: "jd"})
	other, _ := resumes.Create(context.Background(), types.Resume{UserID: 2, Text: "not yours"})

	_, err := svc.Apply(context.Background(), 1, job.ID, other.ID)
	if !errors.Is(err, ErrResumeNotOwned) {
		t.Fatalf("Apply() error = %v, want ErrResumeNotOwned", err)
	}
}

func TestApplyNoResumeUploaded(t *testing.T) {
	svc, _, jobs, _ := testApplicationService(&fakeScorer{})

	job, _ := jobs.Create(context.Background(), types.Job{Description: "jd"})

	_, err := svc.Apply(context.Background(), 1, job.ID, 0)
	if !errors.Is(err, ErrNoResume) {
		t.Fatalf("Apply() error = %v, want ErrNoResume", err)
	}
}

func TestListByUserSubstitutesUnknownForVanishedJob(t *testing.T) {
	svc, apps, jobs, _ := testApplicationService(&fakeScorer{})

	job, _ := jobs.Create(context.Background(), types.Job{
		Title:    "SRE",
		Company:  "Acme",
		Location: "Berlin",
	})
	if _, err := apps.Create(context.Background(), types.Application{UserID: 1, JobID: job.ID, MatchScore: 55}); err != nil {
		t.Fatal(err)
	}
	if _, err := apps.Create(context.Background(), types.Application{UserID: 1, JobID: 999, MatchScore: 40}); err != nil {
		t.Fatal(err)
	}

	details, err := svc.ListByUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("got %d applications, want 2", len(details))
	}

	// Newest first: the dangling application comes first.
	if details[0].JobTitle != "Unknown" || details[0].Company != "Unknown" || details[0].Location != "Unknown" {
		t.Errorf("vanished job fields = %q/%q/%q, want Unknown", details[0].JobTitle, details[0].Company, details[0].Location)
	}
	if details[0].MatchScore != 40 {
		t.Errorf("vanished job kept score %v, want 40", details[0].MatchScore)
	}
	if details[1].JobTitle != "SRE" || details[1].Company != "Acme" {
		t.Errorf("live job fields = %q/%q", details[1].JobTitle, details[1].Company)
	}
}

func TestListByUserScopesToUser(t *testing.T) {
	svc, apps, jobs, _ := testApplicationService(&fakeScorer{})

	job, _ := jobs.Create(context.Background(), types.Job{Title: "Dev"})
	if _, err := apps.Create(context.Background(), types.Application{UserID: 1, JobID: job.ID}); err != nil {
		t.Fatal(err)
	}
	if _, err := apps.Create(context.Background(), types.Application{UserID: 2, JobID: job.ID}); err != nil {
		t.Fatal(err)
	}

	details, err := svc.ListByUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(details) != 1 {
		t.Errorf("got %d applications, want only the user's own", len(details))
	}
}
