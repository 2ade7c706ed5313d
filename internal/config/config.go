package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full process configuration, read from the environment.
type Config struct {
	HTTPPort  string
	MongoURI  string
	MongoDB   string
	RedisAddr string

	LogJSON  bool
	LogDebug bool

	// Embedding service.
	EmbeddingURL     string
	EmbeddingTimeout time.Duration

	// Landmark model service for video analysis.
	LandmarkURL     string
	VideoFPS        float64

	// Evaluation worker pool.
	AnalysisWorkers int
	AnalysisTimeout time.Duration
	MaxFollowUps    int
}

// Load reads configuration from the environment, after loading a local
// .env file when one exists.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPPort:  getEnv("HTTP_PORT", "8080"),
		MongoURI:  getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:   getEnv("MONGO_DB", "interview_engine"),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		LogJSON:  getEnvBool("LOG_JSON", true),
		LogDebug: getEnvBool("LOG_DEBUG", false),

		EmbeddingURL:     getEnv("EMBEDDING_URL", ""),
		EmbeddingTimeout: getEnvDuration("EMBEDDING_TIMEOUT", 10*time.Second),

		LandmarkURL: getEnv("LANDMARK_URL", ""),
		VideoFPS:    getEnvFloat("VIDEO_FPS", 15),

		AnalysisWorkers: getEnvInt("ANALYSIS_WORKERS", 4),
		AnalysisTimeout: getEnvDuration("ANALYSIS_TIMEOUT", 30*time.Second),
		MaxFollowUps:    getEnvInt("MAX_FOLLOW_UPS", 3),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
