package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"wheelfinder/models"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int
	MaxListings    int // per-brand cap on detail pages visited; 0 means no cap

	InventoryCSVPath string
	HondaCSVPath     string
	ToyotaCSVPath    string
	ChromeBin        string
	Debug            bool

	HondaURL  string
	ToyotaURL string

	// Default ranking preference, overridable per run through the environment.
	PrefBrands      []string
	PrefPriceTarget float64
	PrefPriceWeight int
	PrefMPGTarget   float64
	PrefMPGWeight   int
	PrefSizeTarget  float64
	PrefSizeWeight  int
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "wheelfinder"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "wheelfinder123"),
		PostgresDB:       getEnv("POSTGRES_DB", "inventory_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 3000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		MaxListings:    getEnvInt("MAX_LISTINGS", 0),

		InventoryCSVPath: getEnv("INVENTORY_CSV_PATH", "./output/wheelfinder_inventory.csv"),
		HondaCSVPath:     getEnv("HONDA_CSV_PATH", "./output/honda.csv"),
		ToyotaCSVPath:    getEnv("TOYOTA_CSV_PATH", "./output/toyota.csv"),
		ChromeBin:        getEnv("CHROME_BIN", ""),
		Debug:            getEnvBool("DEBUG", false),

		HondaURL:  getEnv("HONDA_URL", "https://www.hondaoflosangeles.com/searchnew.aspx"),
		ToyotaURL: getEnv("TOYOTA_URL", "https://www.toyotaofdowntownla.com/inventory/new"),

		PrefBrands:      getEnvList("PREF_BRANDS"),
		PrefPriceTarget: getEnvFloat("PREF_PRICE_TARGET", 30000),
		PrefPriceWeight: getEnvInt("PREF_PRICE_WEIGHT", 5),
		PrefMPGTarget:   getEnvFloat("PREF_MPG_TARGET", 35),
		PrefMPGWeight:   getEnvInt("PREF_MPG_WEIGHT", 5),
		PrefSizeTarget:  getEnvFloat("PREF_SIZE_TARGET", 5),
		PrefSizeWeight:  getEnvInt("PREF_SIZE_WEIGHT", 5),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// Preference assembles the ranking preference configured for this run.
func (c *Config) Preference() models.Preference {
	return models.Preference{
		Brands: c.PrefBrands,
		Price:  models.Criterion{Target: c.PrefPriceTarget, Weight: c.PrefPriceWeight},
		MPG:    models.Criterion{Target: c.PrefMPGTarget, Weight: c.PrefMPGWeight},
		Size:   models.Criterion{Target: c.PrefSizeTarget, Weight: c.PrefSizeWeight},
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
