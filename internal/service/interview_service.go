package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"interview-engine/internal/cache"
	"interview-engine/internal/evaluate"
	"interview-engine/internal/model"
	"interview-engine/internal/observability/metrics"
	"interview-engine/internal/repository"
)

// WebSocket event types emitted during a session.
const (
	MsgEvaluationResult = "evaluation_result"
	MsgStageAdvanced    = "stage_advanced"
	MsgSessionCompleted = "session_completed"
)

// InterviewService orchestrates one answer submission end to end: run the
// analyzers, merge their results, advance the stage machine, persist. Stage
// state is serialized with a per-session lock so exactly one evaluation per
// session is in flight at a time.
type InterviewService struct {
	sessionRepo repository.SessionRepo
	answerRepo  repository.AnswerRepo
	evalRepo    repository.EvaluationRepo
	stageCache  cache.StageCache

	text       *evaluate.TextRubricScorer
	voice      *evaluate.VoiceSignalScorer
	video      *evaluate.VideoBehaviorAnalyzer
	similarity *evaluate.SemanticSimilarityDetector
	aggregator *evaluate.EvaluationAggregator
	stages     *evaluate.StageController

	broadcaster Broadcaster
	metrics     *metrics.EvaluationMetrics
	log         *zap.Logger

	// CPU-bound media analysis runs under a bounded pool with a timeout;
	// on timeout the modality degrades to its documented fallback.
	pool    *semaphore.Weighted
	timeout time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewInterviewService creates the orchestrating service.
func NewInterviewService(
	sessionRepo repository.SessionRepo,
	answerRepo repository.AnswerRepo,
	evalRepo repository.EvaluationRepo,
	stageCache cache.StageCache,
	text *evaluate.TextRubricScorer,
	voice *evaluate.VoiceSignalScorer,
	video *evaluate.VideoBehaviorAnalyzer,
	similarity *evaluate.SemanticSimilarityDetector,
	aggregator *evaluate.EvaluationAggregator,
	stages *evaluate.StageController,
	m *metrics.EvaluationMetrics,
	workers int,
	timeout time.Duration,
	log *zap.Logger,
) *InterviewService {
	if workers <= 0 {
		workers = 4
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &InterviewService{
		sessionRepo: sessionRepo,
		answerRepo:  answerRepo,
		evalRepo:    evalRepo,
		stageCache:  stageCache,
		text:        text,
		voice:       voice,
		video:       video,
		similarity:  similarity,
		aggregator:  aggregator,
		stages:      stages,
		metrics:     m,
		pool:        semaphore.NewWeighted(int64(workers)),
		timeout:     timeout,
		log:         log,
		locks:       make(map[string]*sync.Mutex),
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events.
func (s *InterviewService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// CreateSession starts a new interview session at the intro stage.
func (s *InterviewService) CreateSession(ctx context.Context, role, company, industry string) (*model.Session, error) {
	session := &model.Session{
		ID:       uuid.NewString(),
		Role:     role,
		Company:  company,
		Industry: industry,
		Status:   model.SessionStatusActive,
		Stage:    s.stages.NewState(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if err := s.stageCache.Set(ctx, session.ID, session.Stage); err != nil {
		s.log.Warn("stage cache set failed", zap.String("session", session.ID), zap.Error(err))
	}
	return session, nil
}

// GetSession loads a session, preferring the cached stage state.
func (s *InterviewService) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil || session == nil {
		return session, err
	}
	if state, err := s.stageCache.Get(ctx, sessionID); err == nil && state != nil {
		session.Stage = *state
	}
	return session, nil
}

// Policy exposes the current stage's topic policy for the question writer.
func (s *InterviewService) Policy(stage model.Stage) model.TopicPolicy {
	return s.stages.Policy(stage)
}

// Answers returns the session's submitted answers in order, the raw
// conversation the question writer builds its context from.
func (s *InterviewService) Answers(ctx context.Context, sessionID string) ([]model.Answer, error) {
	return s.answerRepo.GetBySessionID(ctx, sessionID)
}

// SubmitResult is the full outcome of one answer submission.
type SubmitResult struct {
	Evaluation model.Evaluation       `json:"evaluation"`
	Decision   model.FollowUpDecision `json:"decision"`
	Stage      model.StageState       `json:"stage"`
	NextPolicy model.TopicPolicy      `json:"nextPolicy"`
}

// SubmitAnswer evaluates one answer and advances the session. Analyzer
// failures never abort the flow; each modality degrades independently.
func (s *InterviewService) SubmitAnswer(ctx context.Context, sessionID string, answer *model.Answer) (*SubmitResult, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}
	if session.Stage.Completed {
		return nil, fmt.Errorf("session %s is already completed", sessionID)
	}

	answer.ID = uuid.NewString()
	answer.SessionID = sessionID
	answer.SubmittedAt = time.Now().UTC()

	started := time.Now()
	rubric := s.text.Score(answer.Transcript, answer.QuestionMeta)
	voice, video, similarity := s.analyzeMedia(ctx, answer)

	eval, decision := s.aggregator.Aggregate(answer, rubric, voice, video, similarity)
	eval.ID = uuid.NewString()
	eval.Stage = session.Stage.Current

	newState := s.stages.Advance(session.Stage, answer.ID, decision)

	if err := s.answerRepo.Create(ctx, answer); err != nil {
		return nil, fmt.Errorf("persist answer: %w", err)
	}
	if err := s.evalRepo.Create(ctx, &eval); err != nil {
		return nil, fmt.Errorf("persist evaluation: %w", err)
	}

	session.Stage = newState
	if newState.Completed {
		session.Status = model.SessionStatusCompleted
	}
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	if newState.Completed {
		// Final state lives in the store; the hot cache entry is done.
		if err := s.stageCache.Delete(ctx, sessionID); err != nil {
			s.log.Warn("stage cache delete failed", zap.String("session", sessionID), zap.Error(err))
		}
		s.dropLock(sessionID)
	} else if err := s.stageCache.Set(ctx, sessionID, newState); err != nil {
		s.log.Warn("stage cache set failed", zap.String("session", sessionID), zap.Error(err))
	}

	s.metrics.ObserveEvaluation(string(eval.Stage), decision.Recommended, time.Since(started).Seconds())
	s.publish(sessionID, eval, newState)

	return &SubmitResult{
		Evaluation: eval,
		Decision:   decision,
		Stage:      newState,
		NextPolicy: s.stages.Policy(newState.Current),
	}, nil
}

// analyzeMedia runs the optional modalities concurrently under the bounded
// pool. Each one has its own timeout and falls back on its default result.
func (s *InterviewService) analyzeMedia(ctx context.Context, answer *model.Answer) (*model.VoiceMetrics, *model.VideoMetrics, *model.SimilarityRisk) {
	var (
		voice      *model.VoiceMetrics
		video      *model.VideoMetrics
		similarity *model.SimilarityRisk
	)

	g, gctx := errgroup.WithContext(ctx)

	if answer.HasAudio() {
		g.Go(func() error {
			vm := s.runVoice(gctx, answer.AudioSamples)
			voice = &vm
			return nil
		})
	}
	if answer.HasVideo() {
		g.Go(func() error {
			vm := s.runVideo(gctx, answer.VideoFrames)
			video = &vm
			return nil
		})
	}
	// The transcript is always present, so similarity always runs.
	g.Go(func() error {
		sr := s.runSimilarity(gctx, answer.Transcript)
		similarity = &sr
		return nil
	})

	// Analyzers return fallback values instead of errors.
	_ = g.Wait()

	if voice != nil && !voice.AnalysisOK {
		s.metrics.ObserveFallback("voice")
	}
	if video != nil && !video.AnalysisOK {
		s.metrics.ObserveFallback("video")
	}
	if similarity != nil && !similarity.AnalysisOK {
		s.metrics.ObserveFallback("similarity")
	}
	return voice, video, similarity
}

func (s *InterviewService) runVoice(ctx context.Context, data []byte) model.VoiceMetrics {
	fallback := model.VoiceMetrics{Scores: model.VoiceScores{Fluency: 1.0, Clarity: 0.8, Confidence: 0.8, Pace: 0.6, Total: 3.2}}
	return runBounded(s, ctx, "voice", fallback, func(context.Context) model.VoiceMetrics {
		return s.voice.Score(data)
	})
}

func (s *InterviewService) runVideo(ctx context.Context, data []byte) model.VideoMetrics {
	fallback := model.VideoMetrics{HeadStability: 1.0, Cheating: model.CheatingRisk{Level: model.RiskNone, Indicators: []string{}}}
	return runBounded(s, ctx, "video", fallback, func(context.Context) model.VideoMetrics {
		return s.video.Analyze(data)
	})
}

func (s *InterviewService) runSimilarity(ctx context.Context, transcript string) model.SimilarityRisk {
	fallback := model.SimilarityRisk{RiskLevel: model.RiskUnknown, Indicators: []string{"Analysis unavailable"}}
	return runBounded(s, ctx, "similarity", fallback, func(ctx context.Context) model.SimilarityRisk {
		return s.similarity.Detect(ctx, transcript)
	})
}

// runBounded runs fn under the worker pool with the analysis timeout. The
// result travels over a channel, so a worker that finishes after the
// deadline never touches memory the caller is reading. On timeout, pool
// exhaustion, or panic the caller gets fallback.
func runBounded[T any](s *InterviewService, ctx context.Context, modality string, fallback T, fn func(context.Context) T) T {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.pool.Acquire(ctx, 1); err != nil {
		s.log.Warn("analysis pool acquire timed out", zap.String("modality", modality))
		return fallback
	}

	done := make(chan T, 1)
	go func() {
		defer s.pool.Release(1)
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("analyzer panic", zap.String("modality", modality), zap.Any("panic", r))
				done <- fallback
			}
		}()
		done <- fn(ctx)
	}()

	select {
	case out := <-done:
		return out
	case <-ctx.Done():
		s.log.Warn("analysis timed out", zap.String("modality", modality))
		return fallback
	}
}

func (s *InterviewService) publish(sessionID string, eval model.Evaluation, state model.StageState) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToSession(sessionID, MsgEvaluationResult, eval)
	s.broadcaster.BroadcastToSession(sessionID, MsgStageAdvanced, state)
	if state.Completed {
		s.broadcaster.BroadcastToSession(sessionID, MsgSessionCompleted, map[string]string{"sessionId": sessionID})
		s.broadcaster.DisconnectSession(sessionID)
	}
}

func (s *InterviewService) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[sessionID]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[sessionID] = l
	return l
}

// dropLock removes a completed session's lock entry so the map does not
// grow for the life of the process. A late submitter gets a fresh mutex
// and fails the completed check.
func (s *InterviewService) dropLock(sessionID string) {
	s.mu.Lock()
	delete(s.locks, sessionID)
	s.mu.Unlock()
}
