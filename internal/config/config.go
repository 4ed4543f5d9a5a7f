package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file named by TRUSTMIND_ENV (or .env by default),
// then the matching .secret sidecar if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("TRUSTMIND_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Missing files are fine; the process environment still applies.
	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// StorageBackend selects where datasets live: "file" (default) or "postgres".
func StorageBackend() string {
	return getString("STORAGE_BACKEND", "file")
}

func DatasetsDir() string {
	return getString("DATASETS_DIR", "datasets")
}

func ClockFile() string {
	return getString("CLOCK_FILE", "current_time.csv")
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func MigrationsPath() string {
	return getString("MIGRATIONS_PATH", "migrations")
}

// MatureToM toggles the theory-of-mind encoding of demonstrations.
// Defaults to true.
func MatureToM() bool {
	return getBool("MATURE_TOM", true)
}

// UpdateOnDecision makes the robot learn from every decision outcome.
// Defaults to true.
func UpdateOnDecision() bool {
	return getBool("UPDATE_ON_DECISION", true)
}

// EpisodicSamples is the number of resampled episodes in a new episodic memory.
func EpisodicSamples() int {
	n, err := strconv.Atoi(os.Getenv("EPISODIC_SAMPLES"))
	if err != nil || n <= 0 {
		return 6
	}
	return n
}

// RandomSeed seeds the resampler. Zero means seed from the wall clock.
func RandomSeed() uint64 {
	seed, err := strconv.ParseUint(os.Getenv("RANDOM_SEED"), 10, 64)
	if err != nil {
		return 0
	}
	return seed
}

// AutosaveInterval returns how often the server flushes beliefs to storage.
// Zero disables autosave.
func AutosaveInterval() time.Duration {
	d, err := time.ParseDuration(os.Getenv("AUTOSAVE_INTERVAL"))
	if err != nil || d < 0 {
		return time.Minute
	}
	return d
}

// APIKey guards the /v1 routes. Empty disables authentication.
func APIKey() string {
	return os.Getenv("API_KEY")
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	return getString("LOG_LEVEL", "info")
}
