package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"interview-engine/internal/cache"
	"interview-engine/internal/evaluate"
	"interview-engine/internal/model"
	"interview-engine/internal/repository"
)

// MsgReportReady is emitted once a session report is generated.
const MsgReportReady = "report_ready"

// ReportService builds and serves final session reports. Reports are
// regenerated on demand and cached; the cache is the first stop on reads.
type ReportService struct {
	evalRepo    repository.EvaluationRepo
	reportRepo  repository.ReportRepo
	reportCache cache.ReportCache
	summarizer  *evaluate.SessionReportSummarizer
	broadcaster Broadcaster
	log         *zap.Logger
}

// NewReportService creates the report service.
func NewReportService(
	evalRepo repository.EvaluationRepo,
	reportRepo repository.ReportRepo,
	reportCache cache.ReportCache,
	summarizer *evaluate.SessionReportSummarizer,
	log *zap.Logger,
) *ReportService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReportService{
		evalRepo:    evalRepo,
		reportRepo:  reportRepo,
		reportCache: reportCache,
		summarizer:  summarizer,
		log:         log,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events.
func (s *ReportService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// GetReport returns the session report, generating it if needed.
func (s *ReportService) GetReport(ctx context.Context, sessionID string) (*model.SessionReport, error) {
	if cached, err := s.reportCache.Get(ctx, sessionID); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		s.log.Warn("report cache get failed", zap.String("session", sessionID), zap.Error(err))
	}
	return s.Generate(ctx, sessionID)
}

// Generate rebuilds the report from the session's evaluations, persists it
// and refreshes the cache.
func (s *ReportService) Generate(ctx context.Context, sessionID string) (*model.SessionReport, error) {
	evals, err := s.evalRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load evaluations: %w", err)
	}

	report := s.summarizer.Summarize(sessionID, evals)
	if err := s.reportRepo.Upsert(ctx, &report); err != nil {
		return nil, fmt.Errorf("persist report: %w", err)
	}
	if err := s.reportCache.Set(ctx, &report); err != nil {
		s.log.Warn("report cache set failed", zap.String("session", sessionID), zap.Error(err))
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToSession(sessionID, MsgReportReady, report)
	}
	return &report, nil
}
