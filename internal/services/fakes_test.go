package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/resume-analyzer/apiserver/internal/store"
	"github.com/resume-analyzer/apiserver/types"
)

// In-memory fakes for the repository interfaces. Fakes rather than a
// mock framework keep the tests readable: what a fake does is right
// here in the file.

type fakeUserRepo struct {
	users  map[int]types.User
	nextID int

	// set to force Create to fail with a duplicate, simulating a lost
	// unique-index race
	createDuplicate bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]types.User), nextID: 1}
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	user, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	if f.createDuplicate {
		return types.User{}, store.ErrDuplicate
	}
	for _, existing := range f.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return types.User{}, store.ErrDuplicate
		}
	}
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	f.nextID++
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) UpdateRole(ctx context.Context, id int, role string) error {
	user, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.Role = role
	f.users[id] = user
	return nil
}

func (f *fakeUserRepo) Count(ctx context.Context) (int, error) {
	return len(f.users), nil
}

type fakeJobRepo struct {
	jobs   map[int]types.Job
	nextID int
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[int]types.Job), nextID: 1}
}

func (f *fakeJobRepo) Create(ctx context.Context, job types.Job) (types.Job, error) {
	job.ID = f.nextID
	job.CreatedAt = time.Now()
	f.nextID++
	f.jobs[job.ID] = job
	return job, nil
}

func (f *fakeJobRepo) Get(ctx context.Context, id int) (types.Job, error) {
	job, ok := f.jobs[id]
	if !ok {
		return types.Job{}, store.ErrNotFound
	}
	return job, nil
}

func (f *fakeJobRepo) List(ctx context.Context, limit int) ([]types.Job, error) {
	out := make([]types.Job, 0, len(f.jobs))
	for _, job := range f.jobs {
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeJobRepo) Count(ctx context.Context) (int, error) {
	return len(f.jobs), nil
}

type fakeResumeRepo struct {
	resumes map[int]types.Resume
	nextID  int
}

func newFakeResumeRepo() *fakeResumeRepo {
	return &fakeResumeRepo{resumes: make(map[int]types.Resume), nextID: 1}
}

func (f *fakeResumeRepo) Create(ctx context.Context, resume types.Resume) (types.Resume, error) {
	resume.ID = f.nextID
	resume.UploadedAt = time.Now()
	f.nextID++
	f.resumes[resume.ID] = resume
	return resume, nil
}

func (f *fakeResumeRepo) GetOwned(ctx context.Context, id, userID int) (types.Resume, error) {
	resume, ok := f.resumes[id]
	if !ok || resume.UserID != userID {
		return types.Resume{}, store.ErrNotFound
	}
	return resume, nil
}

func (f *fakeResumeRepo) Latest(ctx context.Context, userID int) (types.Resume, error) {
	var latest types.Resume
	found := false
	for _, resume := range f.resumes {
		if resume.UserID != userID {
			continue
		}
		if !found || resume.ID > latest.ID {
			latest = resume
			found = true
		}
	}
	if !found {
		return types.Resume{}, store.ErrNotFound
	}
	return latest, nil
}

func (f *fakeResumeRepo) ListByUser(ctx context.Context, userID int) ([]types.Resume, error) {
	out := []types.Resume{}
	for _, resume := range f.resumes {
		if resume.UserID == userID {
			out = append(out, resume)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeResumeRepo) FindBySkill(ctx context.Context, skill string, limit int) ([]types.Resume, error) {
	out := []types.Resume{}
	for _, resume := range f.resumes {
		for _, s := range resume.Skills {
			if strings.EqualFold(s, skill) {
				out = append(out, resume)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeResumeRepo) Count(ctx context.Context) (int, error) {
	return len(f.resumes), nil
}

type fakeApplicationRepo struct {
	apps   map[int]types.Application
	nextID int
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{apps: make(map[int]types.Application), nextID: 1}
}

func (f *fakeApplicationRepo) Create(ctx context.Context, app types.Application) (types.Application, error) {
	app.ID = f.nextID
	app.CreatedAt = time.Now()
	f.nextID++
	f.apps[app.ID] = app
	return app, nil
}

func (f *fakeApplicationRepo) ListByUser(ctx context.Context, userID int) ([]types.Application, error) {
	out := []types.Application{}
	for _, app := range f.apps {
		if app.UserID == userID {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeApplicationRepo) Count(ctx context.Context) (int, error) {
	return len(f.apps), nil
}

func (f *fakeApplicationRepo) CountSince(ctx context.Context, since time.Time) (int, error) {
	n := 0
	for _, app := range f.apps {
		if !app.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

type fakeFeedbackRepo struct {
	entries map[int]types.Feedback
	nextID  int
}

func newFakeFeedbackRepo() *fakeFeedbackRepo {
	return &fakeFeedbackRepo{entries: make(map[int]types.Feedback), nextID: 1}
}

func (f *fakeFeedbackRepo) Create(ctx context.Context, fb types.Feedback) (types.Feedback, error) {
	fb.ID = f.nextID
	fb.CreatedAt = time.Now()
	f.nextID++
	f.entries[fb.ID] = fb
	return fb, nil
}

func (f *fakeFeedbackRepo) List(ctx context.Context, limit int) ([]types.Feedback, error) {
	out := []types.Feedback{}
	for _, fb := range f.entries {
		out = append(out, fb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeFeedbackRepo) Stats(ctx context.Context) (types.FeedbackStats, error) {
	if len(f.entries) == 0 {
		return types.FeedbackStats{}, nil
	}
	sum := 0
	for _, fb := range f.entries {
		sum += fb.Rating
	}
	return types.FeedbackStats{
		Average: float64(sum) / float64(len(f.entries)),
		Count:   len(f.entries),
	}, nil
}

// fakeScorer returns a fixed score and skill set, recording the inputs
// of the last Score call.
type fakeScorer struct {
	score  float64
	skills []string

	lastTextA string
	lastTextB string
}

func (f *fakeScorer) Score(ctx context.Context, textA, textB string) float64 {
	f.lastTextA = textA
	f.lastTextB = textB
	return f.score
}

func (f *fakeScorer) ExtractSkills(ctx context.Context, text string) []string {
	if f.skills == nil {
		return []string{}
	}
	return f.skills
}
