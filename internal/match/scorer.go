// Package match scores how well a resume fits a job description.
//
// Scoring is two-tiered: a remote semantic-similarity service when a
// credential is configured, and a local lexical-overlap fallback
// otherwise. The remote tier is best effort only. Any failure there
// (network, timeout, bad payload) degrades silently to the fallback and
// is never surfaced to the caller.
package match

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"
)

const (
	// requestTimeout bounds every remote call so a hung service cannot
	// stall unrelated requests.
	requestTimeout = 20 * time.Second

	// maxInputChars caps the text sent to the remote service.
	maxInputChars = 1000

	// skillEntityTag is the NER label treated as a job skill.
	skillEntityTag = "B-JobSkill"
)

// Scorer computes 0-100 match scores between two texts and extracts
// skill entities. A zero APIKey disables the remote tiers.
type Scorer struct {
	apiKey        string
	similarityURL string
	nerURL        string
	httpClient    *http.Client
	logger        *slog.Logger
}

func NewScorer(apiKey, similarityURL, nerURL string, logger *slog.Logger) *Scorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{
		apiKey:        apiKey,
		similarityURL: similarityURL,
		nerURL:        nerURL,
		httpClient:    &http.Client{Timeout: requestTimeout},
		logger:        logger,
	}
}

// Score returns the match score between textA and textB in [0, 100],
// rounded to two decimals.
//
// The lexical fallback normalizes by textB's distinct-word count, so the
// score is asymmetric in its arguments. Callers pass the resume as textA
// and the job description as textB; keep that order for comparable
// scores across jobs.
func (s *Scorer) Score(ctx context.Context, textA, textB string) float64 {
	if s.apiKey == "" {
		return lexicalScore(textA, textB)
	}

	score, err := s.remoteScore(ctx, textA, textB)
	if err != nil {
		s.logger.Warn("remote similarity unavailable, using lexical fallback",
			slog.String("error", err.Error()))
		return lexicalScore(textA, textB)
	}
	return score
}

// ExtractSkills runs the remote NER model over text and returns the
// entities tagged as job skills. Returns an empty slice when the remote
// service is unconfigured or the call fails.
func (s *Scorer) ExtractSkills(ctx context.Context, text string) []string {
	if s.apiKey == "" {
		return []string{}
	}

	entities, err := s.remoteEntities(ctx, text)
	if err != nil {
		s.logger.Warn("remote NER unavailable, skipping skill extraction",
			slog.String("error", err.Error()))
		return []string{}
	}

	skills := make([]string, 0, len(entities))
	for _, entity := range entities {
		if entity.Entity == skillEntityTag {
			skills = append(skills, entity.Word)
		}
	}
	return skills
}

// NewScorerWithClient is intended for tests that need to control the
// HTTP client, e.g. to shrink the remote-call timeout.
func NewScorerWithClient(apiKey, similarityURL, nerURL string, client *http.Client, logger *slog.Logger) *Scorer {
	scorer := NewScorer(apiKey, similarityURL, nerURL, logger)
	if client != nil {
		scorer.httpClient = client
	}
	return scorer
}

type similarityRequest struct {
	Inputs similarityInputs `json:"inputs"`
}

type similarityInputs struct {
	SourceSentence string   `json:"source_sentence"`
	Sentences      []string `json:"sentences"`
}

type similarityResult struct {
	Score float64 `json:"score"`
}

func (s *Scorer) remoteScore(ctx context.Context, textA, textB string) (float64, error) {
	payload := similarityRequest{
		Inputs: similarityInputs{
			SourceSentence: truncate(textA, maxInputChars),
			Sentences:      []string{truncate(textB, maxInputChars)},
		},
	}

	var results []similarityResult
	if err := s.post(ctx, s.similarityURL, payload, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, errors.New("empty similarity response")
	}

	return round2(results[0].Score * 100), nil
}

type nerEntity struct {
	Word   string `json:"word"`
	Entity string `json:"entity"`
}

type nerRequest struct {
	Inputs string `json:"inputs"`
}

func (s *Scorer) remoteEntities(ctx context.Context, text string) ([]nerEntity, error) {
	var entities []nerEntity
	if err := s.post(ctx, s.nerURL, nerRequest{Inputs: truncate(text, maxInputChars)}, &entities); err != nil {
		return nil, err
	}
	return entities, nil
}

func (s *Scorer) post(ctx context.Context, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference api returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// lexicalScore is the dependency-free tier: the fraction of textB's
// distinct vocabulary also present in textA, as a percentage.
//
// Normalizing by textB (not the union) is intentional and load-bearing:
// every call site passes the job description as textB, so scores stay
// comparable across jobs. Do not symmetrize.
func lexicalScore(textA, textB string) float64 {
	wordsA := wordSet(textA)
	wordsB := wordSet(textB)

	inter := 0
	for word := range wordsB {
		if _, ok := wordsA[word]; ok {
			inter++
		}
	}

	denom := len(wordsB)
	if denom < 1 {
		denom = 1
	}
	return round2(100 * float64(inter) / float64(denom))
}

func wordSet(text string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		set[word] = struct{}{}
	}
	return set
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
