package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-engine/internal/evaluate"
	"interview-engine/internal/model"
)

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]model.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]model.Session)}
}

func (r *memSessionRepo) Create(_ context.Context, s *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *memSessionRepo) GetByID(_ context.Context, id string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	out := s
	return &out, nil
}

func (r *memSessionRepo) Update(_ context.Context, s *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *memSessionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

type memAnswerRepo struct {
	mu      sync.Mutex
	answers []model.Answer
}

func (r *memAnswerRepo) Create(_ context.Context, a *model.Answer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.answers = append(r.answers, *a)
	return nil
}

func (r *memAnswerRepo) GetBySessionID(_ context.Context, sessionID string) ([]model.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Answer
	for _, a := range r.answers {
		if a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	return out, nil
}

type memEvalRepo struct {
	mu    sync.Mutex
	evals []model.Evaluation
}

func (r *memEvalRepo) Create(_ context.Context, e *model.Evaluation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evals = append(r.evals, *e)
	return nil
}

func (r *memEvalRepo) GetBySessionID(_ context.Context, sessionID string) ([]model.Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Evaluation
	for _, e := range r.evals {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

type memStageCache struct {
	mu     sync.Mutex
	states map[string]model.StageState
}

func newMemStageCache() *memStageCache {
	return &memStageCache{states: make(map[string]model.StageState)}
}

func (c *memStageCache) Set(_ context.Context, sessionID string, state model.StageState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[sessionID] = state
	return nil
}

func (c *memStageCache) Get(_ context.Context, sessionID string) (*model.StageState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.states[sessionID]
	if !ok {
		return nil, nil
	}
	out := s
	return &out, nil
}

func (c *memStageCache) Delete(_ context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.states, sessionID)
	return nil
}

type recordedEvent struct {
	sessionID string
	msgType   string
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *recordingBroadcaster) BroadcastToSession(sessionID string, msgType string, _ interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{sessionID, msgType})
}

func (b *recordingBroadcaster) DisconnectSession(string) {}

func (b *recordingBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.msgType
	}
	return out
}

// slowEmbedder blocks past any reasonable analysis deadline, then
// signals on done when it finally returns.
type slowEmbedder struct {
	delay time.Duration
	done  chan struct{}
}

func (e *slowEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	time.Sleep(e.delay)
	vectors := make([][]float64, len(texts))
	for i := range vectors {
		vectors[i] = []float64{1, 0, 0}
	}
	close(e.done)
	return vectors, nil
}

func newTestService() (*InterviewService, *memSessionRepo, *memAnswerRepo, *memEvalRepo, *recordingBroadcaster) {
	return newTestServiceWith(evaluate.NewSemanticSimilarityDetector(nil, nil, nil), 5*time.Second)
}

func newTestServiceWith(similarity *evaluate.SemanticSimilarityDetector, timeout time.Duration) (*InterviewService, *memSessionRepo, *memAnswerRepo, *memEvalRepo, *recordingBroadcaster) {
	sessions := newMemSessionRepo()
	answers := &memAnswerRepo{}
	evals := &memEvalRepo{}
	b := &recordingBroadcaster{}

	svc := NewInterviewService(
		sessions,
		answers,
		evals,
		newMemStageCache(),
		evaluate.NewTextRubricScorer(),
		evaluate.NewVoiceSignalScorer(nil),
		evaluate.NewVideoBehaviorAnalyzer(nil, 15, nil),
		similarity,
		evaluate.NewEvaluationAggregator(3, nil),
		evaluate.NewStageController(),
		nil,
		2,
		timeout,
		nil,
	)
	svc.SetBroadcaster(b)
	return svc, sessions, answers, evals, b
}

func TestCreateSession(t *testing.T) {
	svc, sessions, _, _, _ := newTestService()

	s, err := svc.CreateSession(context.Background(), "backend engineer", "acme", "fintech")
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, model.SessionStatusActive, s.Status)
	assert.Equal(t, model.StageIntro, s.Stage.Current)

	stored, err := sessions.GetByID(context.Background(), s.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "backend engineer", stored.Role)
}

func TestSubmitAnswerAdvancesStage(t *testing.T) {
	svc, _, _, evals, b := newTestService()

	s, err := svc.CreateSession(context.Background(), "backend engineer", "", "")
	require.NoError(t, err)

	// A transcript strong enough to clear every rubric threshold does not
	// exist for the deterministic scorer, so a follow-up loop is expected.
	result, err := svc.SubmitAnswer(context.Background(), s.ID, &model.Answer{
		Transcript: "I worked on a project once.",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.Evaluation.ID)
	assert.Equal(t, s.ID, result.Evaluation.SessionID)
	assert.Equal(t, model.StageIntro, result.Evaluation.Stage)
	assert.True(t, result.Decision.Recommended)
	assert.Equal(t, model.StageIntro, result.Stage.Current)
	assert.Equal(t, 1, result.Stage.FollowUpsInStage)

	// The intro cap is one follow-up; the next turn advances.
	result, err = svc.SubmitAnswer(context.Background(), s.ID, &model.Answer{
		Transcript: "Still a weak answer.",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StageHR, result.Stage.Current)
	assert.NotEmpty(t, result.NextPolicy.Instruction)

	stored, err := evals.GetBySessionID(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	types := b.types()
	assert.Contains(t, types, MsgEvaluationResult)
	assert.Contains(t, types, MsgStageAdvanced)
	assert.NotContains(t, types, MsgSessionCompleted)
}

func TestSubmitAnswerWithoutMediaSkipsModalities(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	s, err := svc.CreateSession(context.Background(), "backend engineer", "", "")
	require.NoError(t, err)

	result, err := svc.SubmitAnswer(context.Background(), s.ID, &model.Answer{
		Transcript: "A plain text answer with no recordings attached.",
	})
	require.NoError(t, err)

	assert.Nil(t, result.Evaluation.Voice)
	assert.Nil(t, result.Evaluation.Video)

	// Similarity runs on the transcript itself; with no embedder configured
	// it reports the structured unavailable result.
	require.NotNil(t, result.Evaluation.Similarity)
	assert.False(t, result.Evaluation.Similarity.AnalysisOK)
	assert.Equal(t, model.RiskUnknown, result.Evaluation.Similarity.RiskLevel)
}

func TestSubmitAnswerWithMediaDegradesGracefully(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	s, err := svc.CreateSession(context.Background(), "backend engineer", "", "")
	require.NoError(t, err)

	// Garbage payloads and no configured analyzers: every modality falls
	// back to its default result instead of failing the submission.
	result, err := svc.SubmitAnswer(context.Background(), s.ID, &model.Answer{
		Transcript:   "An answer with broken attachments.",
		AudioSamples: []byte("not audio"),
		VideoFrames:  []byte("not video"),
	})
	require.NoError(t, err)

	require.NotNil(t, result.Evaluation.Voice)
	assert.False(t, result.Evaluation.Voice.AnalysisOK)
	require.NotNil(t, result.Evaluation.Video)
	assert.False(t, result.Evaluation.Video.AnalysisOK)
	require.NotNil(t, result.Evaluation.Similarity)
	assert.False(t, result.Evaluation.Similarity.AnalysisOK)
}

func TestSubmitAnswerUnknownSession(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	_, err := svc.SubmitAnswer(context.Background(), "missing", &model.Answer{Transcript: "hello"})
	assert.ErrorContains(t, err, "not found")
}

func TestSubmitAnswerCompletedSession(t *testing.T) {
	svc, sessions, _, _, b := newTestService()

	s, err := svc.CreateSession(context.Background(), "backend engineer", "", "")
	require.NoError(t, err)

	// Walk the whole interview with weak answers until it completes.
	for i := 0; i < 2*len(model.StageOrder)+2; i++ {
		result, err := svc.SubmitAnswer(context.Background(), s.ID, &model.Answer{Transcript: "short"})
		require.NoError(t, err)
		if result.Stage.Completed {
			break
		}
	}

	stored, err := sessions.GetByID(context.Background(), s.ID)
	require.NoError(t, err)
	require.True(t, stored.Stage.Completed)
	assert.Equal(t, model.SessionStatusCompleted, stored.Status)
	assert.Contains(t, b.types(), MsgSessionCompleted)

	_, err = svc.SubmitAnswer(context.Background(), s.ID, &model.Answer{Transcript: "one more"})
	assert.ErrorContains(t, err, "completed")
}

func TestSubmitAnswerPersistsAnswer(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	s, err := svc.CreateSession(context.Background(), "backend engineer", "", "")
	require.NoError(t, err)

	_, err = svc.SubmitAnswer(context.Background(), s.ID, &model.Answer{Transcript: "First answer about the project."})
	require.NoError(t, err)
	_, err = svc.SubmitAnswer(context.Background(), s.ID, &model.Answer{Transcript: "Second answer with more detail."})
	require.NoError(t, err)

	stored, err := svc.Answers(context.Background(), s.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "First answer about the project.", stored[0].Transcript)
	assert.Equal(t, "Second answer with more detail.", stored[1].Transcript)
	assert.Equal(t, s.ID, stored[0].SessionID)
	assert.NotEmpty(t, stored[0].ID)
	assert.False(t, stored[0].SubmittedAt.IsZero())
}

func TestSlowAnalyzerKeepsFallback(t *testing.T) {
	embedder := &slowEmbedder{delay: 300 * time.Millisecond, done: make(chan struct{})}
	similarity := evaluate.NewSemanticSimilarityDetector(embedder, nil, nil)
	svc, _, _, _, _ := newTestServiceWith(similarity, 50*time.Millisecond)

	s, err := svc.CreateSession(context.Background(), "backend engineer", "", "")
	require.NoError(t, err)

	result, err := svc.SubmitAnswer(context.Background(), s.ID, &model.Answer{
		Transcript: "A long enough answer for the embedding call to be attempted.",
	})
	require.NoError(t, err)

	// The deadline fired first, so the submission carries the fallback
	// result, untouched by the still-running worker.
	require.NotNil(t, result.Evaluation.Similarity)
	assert.False(t, result.Evaluation.Similarity.AnalysisOK)
	assert.Equal(t, model.RiskUnknown, result.Evaluation.Similarity.RiskLevel)
	assert.Equal(t, []string{"Analysis unavailable"}, result.Evaluation.Similarity.Indicators)

	// Let the worker run to completion; its late result must go nowhere.
	<-embedder.done
	assert.False(t, result.Evaluation.Similarity.AnalysisOK)
	assert.Equal(t, model.RiskUnknown, result.Evaluation.Similarity.RiskLevel)
}

func TestCompletedSessionReleasesLock(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	s, err := svc.CreateSession(context.Background(), "backend engineer", "", "")
	require.NoError(t, err)

	for i := 0; i < 2*len(model.StageOrder)+2; i++ {
		result, err := svc.SubmitAnswer(context.Background(), s.ID, &model.Answer{Transcript: "short"})
		require.NoError(t, err)
		if result.Stage.Completed {
			break
		}
	}

	svc.mu.Lock()
	_, held := svc.locks[s.ID]
	svc.mu.Unlock()
	assert.False(t, held)
}
