package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-engine/internal/evaluate"
	"interview-engine/internal/model"
)

type memReportRepo struct {
	mu      sync.Mutex
	reports map[string]model.SessionReport
}

func newMemReportRepo() *memReportRepo {
	return &memReportRepo{reports: make(map[string]model.SessionReport)}
}

func (r *memReportRepo) Upsert(_ context.Context, report *model.SessionReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports[report.SessionID] = *report
	return nil
}

func (r *memReportRepo) GetBySessionID(_ context.Context, sessionID string) (*model.SessionReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[sessionID]
	if !ok {
		return nil, nil
	}
	out := report
	return &out, nil
}

type memReportCache struct {
	mu      sync.Mutex
	reports map[string]model.SessionReport
	hits    int
}

func newMemReportCache() *memReportCache {
	return &memReportCache{reports: make(map[string]model.SessionReport)}
}

func (c *memReportCache) Set(_ context.Context, report *model.SessionReport) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports[report.SessionID] = *report
	return nil
}

func (c *memReportCache) Get(_ context.Context, sessionID string) (*model.SessionReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	report, ok := c.reports[sessionID]
	if !ok {
		return nil, nil
	}
	c.hits++
	out := report
	return &out, nil
}

func seededEvalRepo(sessionID string, scores ...float64) *memEvalRepo {
	repo := &memEvalRepo{}
	for _, v := range scores {
		repo.evals = append(repo.evals, model.Evaluation{
			SessionID: sessionID,
			Rubric: model.RubricScore{
				Clarity: v, Structure: v, DepthSpecificity: v, RoleFit: v,
				Technical: v, Communication: v, Ownership: v,
			},
		})
	}
	return repo
}

func TestReportServiceGenerate(t *testing.T) {
	evals := seededEvalRepo("s1", 4.0, 5.0)
	repo := newMemReportRepo()
	cache := newMemReportCache()
	b := &recordingBroadcaster{}

	svc := NewReportService(evals, repo, cache, evaluate.NewSessionReportSummarizer(), nil)
	svc.SetBroadcaster(b)

	report, err := svc.Generate(context.Background(), "s1")
	require.NoError(t, err)

	assert.Equal(t, 2, report.AnswerCount)
	assert.InDelta(t, 4.5, report.OverallScore, 1e-9)
	assert.InDelta(t, 9.0, report.FitScore, 1e-9)
	assert.Equal(t, model.BandStrongFit, report.Band)

	persisted, err := repo.GetBySessionID(context.Background(), "s1")
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, report.FitScore, persisted.FitScore)

	assert.Contains(t, b.types(), MsgReportReady)
}

func TestReportServiceGetUsesCache(t *testing.T) {
	evals := seededEvalRepo("s1", 3.0)
	cache := newMemReportCache()
	svc := NewReportService(evals, newMemReportRepo(), cache, evaluate.NewSessionReportSummarizer(), nil)

	first, err := svc.GetReport(context.Background(), "s1")
	require.NoError(t, err)

	second, err := svc.GetReport(context.Background(), "s1")
	require.NoError(t, err)

	assert.Equal(t, first.FitScore, second.FitScore)
	assert.Equal(t, 1, cache.hits)
}

func TestReportServiceEmptySession(t *testing.T) {
	svc := NewReportService(&memEvalRepo{}, newMemReportRepo(), newMemReportCache(), evaluate.NewSessionReportSummarizer(), nil)

	report, err := svc.GetReport(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Zero(t, report.AnswerCount)
	assert.Equal(t, model.BandNoHire, report.Band)
}
