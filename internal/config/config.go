package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Upstream  UpstreamConfig
	Import    ImportConfig
	Telemetry TelemetryConfig
	Bootstrap BootstrapConfig
}

// TelemetryConfig carries log and OpenTelemetry settings.
type TelemetryConfig struct {
	LogLevel      string
	LogFormat     string
	OTelEnabled   bool
	OTLPEndpoint  string
	OTLPProtocol  string
	SamplingRatio float64
}

// UpstreamConfig describes the vendor meal plan endpoint.
type UpstreamConfig struct {
	RequestURL   string
	ReferrerURL  string
	MandantID    string
	SpeiseplanNr string
	Timeout      time.Duration
}

// ImportConfig controls the periodic range import.
type ImportConfig struct {
	Enabled     bool
	Interval    time.Duration
	DayDistance int
	Timeout     time.Duration
}

type BootstrapConfig struct {
	SeedReference bool
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "mensaplan"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		DBType:            getenv("DB_TYPE", "mysql"),
		DBHost:            getenv("DB_HOST", "localhost"),
		DBPort:            getenv("DB_PORT", "3306"),
		DBName:            getenv("DB_DATABASE", "mensa"),
		DBUser:            getenv("DB_USER", "mensa"),
		DBPassword:        getenv("DB_PASSWORD", ""),
		DBSSLMode:         getenv("DB_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DB_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DB_CONNECTION_LIMIT", 10),
		DBConnMaxLifetime: getenvInt("DB_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DB_CONN_MAX_IDLE_TIME", 60),

		Upstream: UpstreamConfig{
			RequestURL:   strings.TrimSpace(getenv("API_REQUEST_URL", "")),
			ReferrerURL:  strings.TrimSpace(getenv("API_REFERRER_URL", "")),
			MandantID:    strings.TrimSpace(getenv("API_MANDANT_ID", "")),
			SpeiseplanNr: strings.TrimSpace(getenv("API_SPEISEPLAN_NR", "")),
			Timeout:      getenvDuration("API_TIMEOUT", 15*time.Second),
		},
		Import: ImportConfig{
			Enabled:     getenvBool("IMPORT_ENABLED", true),
			Interval:    getenvDuration("IMPORT_INTERVAL", time.Hour),
			DayDistance: getenvInt("IMPORT_DAY_DISTANCE", 14),
			Timeout:     getenvDuration("IMPORT_TIMEOUT", 2*time.Minute),
		},
		Telemetry: TelemetryConfig{
			LogLevel:      strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info"))),
			LogFormat:     strings.ToLower(strings.TrimSpace(getenv("LOG_FORMAT", "json"))),
			OTelEnabled:   getenvBool("OTEL_ENABLED", false),
			OTLPEndpoint:  strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")),
			OTLPProtocol:  strings.ToLower(strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"))),
			SamplingRatio: getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
		},
		Bootstrap: BootstrapConfig{
			SeedReference: getenvBool("BOOTSTRAP_SEED_REFERENCE", false),
		},
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed < 0 || parsed > 1 {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
