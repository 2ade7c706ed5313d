// Package app wires configuration into the full dependency graph: data
// stores, analyzers, services, hub. main stays a thin shell around it.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"interview-engine/internal/cache"
	"interview-engine/internal/config"
	"interview-engine/internal/embedding"
	"interview-engine/internal/evaluate"
	"interview-engine/internal/observability/metrics"
	"interview-engine/internal/repository"
	"interview-engine/internal/service"
	"interview-engine/internal/transport/ws"
	"interview-engine/internal/vision"
)

// App holds the wired application.
type App struct {
	InterviewService *service.InterviewService
	ReportService    *service.ReportService
	WSHub            *ws.Hub
	MetricsRegistry  *prometheus.Registry

	mongoClient *mongo.Client
	redisClient *redis.Client
}

// New connects to the data stores and builds the service graph.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	log.Info("connected to mongodb")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		mongoClient.Disconnect(ctx)
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	log.Info("connected to redis")

	sessionRepo := repository.NewSessionRepo(mongoClient, cfg.MongoDB)
	answerRepo := repository.NewAnswerRepo(mongoClient, cfg.MongoDB)
	evalRepo := repository.NewEvaluationRepo(mongoClient, cfg.MongoDB)
	reportRepo := repository.NewReportRepo(mongoClient, cfg.MongoDB)

	stageCache := cache.NewStageCache(rdb)
	reportCache := cache.NewReportCache(rdb)

	var embedder embedding.Embedder
	if cfg.EmbeddingURL != "" {
		embedder = embedding.NewClient(cfg.EmbeddingURL, cfg.EmbeddingTimeout)
	} else {
		log.Warn("EMBEDDING_URL not set, similarity analysis disabled")
	}

	var detector vision.Detector
	if cfg.LandmarkURL != "" {
		detector = vision.NewClient(cfg.LandmarkURL, cfg.AnalysisTimeout)
	} else {
		log.Warn("LANDMARK_URL not set, video analysis degraded")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	evalMetrics := metrics.NewEvaluationMetrics(registry)

	hub := ws.NewHub(log)

	interviewSvc := service.NewInterviewService(
		sessionRepo,
		answerRepo,
		evalRepo,
		stageCache,
		evaluate.NewTextRubricScorer(),
		evaluate.NewVoiceSignalScorer(log),
		evaluate.NewVideoBehaviorAnalyzer(detector, cfg.VideoFPS, log),
		evaluate.NewSemanticSimilarityDetector(embedder, nil, log),
		evaluate.NewEvaluationAggregator(cfg.MaxFollowUps, nil),
		evaluate.NewStageController(),
		evalMetrics,
		cfg.AnalysisWorkers,
		cfg.AnalysisTimeout,
		log,
	)
	reportSvc := service.NewReportService(evalRepo, reportRepo, reportCache, evaluate.NewSessionReportSummarizer(), log)

	interviewSvc.SetBroadcaster(hub)
	reportSvc.SetBroadcaster(hub)

	return &App{
		InterviewService: interviewSvc,
		ReportService:    reportSvc,
		WSHub:            hub,
		MetricsRegistry:  registry,
		mongoClient:      mongoClient,
		redisClient:      rdb,
	}, nil
}

// Close releases the store connections.
func (a *App) Close(ctx context.Context) {
	a.redisClient.Close()
	a.mongoClient.Disconnect(ctx)
}
