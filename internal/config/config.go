package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration read from the environment.
type Config struct {
	Port        string
	DBPath      string
	DatabaseURL string
	RedisURL    string
	SeedPath    string

	MatrixProvider string
	Geocoder       string
	ORSAPIKey      string
	OSRMBaseURL    string
	GeoapifyAPIKey string

	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string

	PricingFile     string
	WeatherCacheTTL time.Duration

	MaxVisitsPerDay       int
	DayStartTime          string
	DwellMinutes          int
	MaxDriveSecondsPerDay float64
}

// LoadDotEnv loads a .env file when present.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
}

// Load reads Config from the environment, applying defaults.
func Load() Config {
	return Config{
		Port:        Get("PORT", "8080"),
		DBPath:      Get("DB_PATH", "data/app.db"),
		DatabaseURL: Get("DATABASE_URL", ""),
		RedisURL:    Get("REDIS_URL", ""),
		SeedPath:    Get("SEED_PATH", "data/seeds/geocode.json"),

		MatrixProvider: strings.ToLower(Get("MATRIX_PROVIDER", "osrm")),
		Geocoder:       strings.ToLower(Get("GEOCODER", "nominatim")),
		ORSAPIKey:      Get("ORS_API_KEY", ""),
		OSRMBaseURL:    Get("OSRM_BASE_URL", "https://router.project-osrm.org"),
		GeoapifyAPIKey: Get("GEOAPIFY_API_KEY", ""),

		LLMAPIKey:  Get("GROQ_API_KEY", ""),
		LLMBaseURL: Get("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		LLMModel:   Get("LLM_MODEL", "llama-3.1-8b-instant"),

		PricingFile:     Get("PRICING_FILE", ""),
		WeatherCacheTTL: GetDuration("WEATHER_CACHE_TTL", 3*time.Hour),

		MaxVisitsPerDay:       GetInt("MAX_VISITS_PER_DAY", 4),
		DayStartTime:          Get("DAY_START_TIME", "09:00"),
		DwellMinutes:          GetInt("DWELL_MINUTES", 60),
		MaxDriveSecondsPerDay: GetFloat("MAX_DRIVE_SECONDS_PER_DAY", 4*3600),
	}
}

func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetInt(key string, fallback int) int {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: invalid int key=%s value=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func GetFloat(key string, fallback float64) float64 {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("config: invalid float key=%s value=%q, using %v", key, v, fallback)
		return fallback
	}
	return f
}

func GetDuration(key string, fallback time.Duration) time.Duration {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("config: invalid duration key=%s value=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
