package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by DOCCHECKER_ENV (or .env by default).
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("DOCCHECKER_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Missing file is fine, env vars may be set directly
	_ = godotenv.Load(envFile)

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// Pricing holds the per-action metering costs in dollars.
type Pricing struct {
	AnalyzePerDocument float64
	Report             float64
	MonitorURL         float64
}

// LoadPricing returns the pricing table, overridable via env.
// Defaults match the original backend rates.
func LoadPricing() Pricing {
	return Pricing{
		AnalyzePerDocument: envFloat("ANALYZE_COST_PER_DOCUMENT", 0.50),
		Report:             envFloat("REPORT_COST", 1.00),
		MonitorURL:         envFloat("MONITOR_URL_COST", 0.10),
	}
}

// MaxDocumentsPerAnalysis caps how many documents one analyze call accepts.
func MaxDocumentsPerAnalysis() int {
	return envInt("MAX_DOCUMENTS_PER_ANALYSIS", 3)
}

// MaxStatements is the ceiling on total extracted statements per analysis.
// Matching is quadratic in statement count, so this bounds worst-case work.
func MaxStatements() int {
	return envInt("MAX_STATEMENTS", 2000)
}

func RateLimitRPS() float64 {
	return envFloat("RATE_LIMIT_RPS", 10)
}

func RateLimitBurst() int {
	return envInt("RATE_LIMIT_BURST", 20)
}

func envFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
