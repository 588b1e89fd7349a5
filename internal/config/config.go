package config

import (
	"os"
	"strconv"
	"time"
)

// Settings collects every environment-driven knob the service reads. All
// fields have working defaults so the service boots in a compose environment
// without any configuration.
type Settings struct {
	ListenAddr     string
	FaceEngineAddr string
	DatabaseDSN    string
	RedisAddr      string

	JWTSecret   string
	JWTAudience string

	// Cosine similarity floor for a face match verdict.
	FacePassThreshold float64
	// Liveness heuristic floor for a live-capture verdict.
	LivenessPassThreshold float64

	SanctionsAPIKey        string
	SanctionsAPIURL        string
	SanctionsTopK          int
	SanctionsFlagThreshold float64
	SanctionsTimeout       time.Duration
}

// Load reads settings from the environment.
func Load() Settings {
	return Settings{
		ListenAddr:     getEnv("LISTEN_ADDR", ":8080"),
		FaceEngineAddr: getEnv("FACE_ENGINE_ADDR", "face-engine:50051"),
		DatabaseDSN:    getEnv("DATABASE_DSN", "host=postgres user=postgres password=postgres dbname=kyc port=5432 sslmode=disable"),
		RedisAddr:      getEnv("REDIS_ADDR", "redis:6379"),

		JWTSecret:   getEnv("JWT_SECRET", "dev-secret"),
		JWTAudience: os.Getenv("JWT_AUDIENCE"),

		FacePassThreshold:     getEnvFloat("FACE_PASS_THRESHOLD", 0.35),
		LivenessPassThreshold: getEnvFloat("LIVENESS_PASS_THRESHOLD", 0.35),

		SanctionsAPIKey:        os.Getenv("OPEN_SANCTIONS_API_KEY"),
		SanctionsAPIURL:        getEnv("OPEN_SANCTIONS_API_URL", "https://api.opensanctions.org/match"),
		SanctionsTopK:          getEnvInt("SANCTIONS_TOPK", 5),
		SanctionsFlagThreshold: getEnvFloat("SANCTIONS_FLAG_THRESHOLD", 0.85),
		SanctionsTimeout:       getEnvDuration("SANCTIONS_TIMEOUT", 20*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
