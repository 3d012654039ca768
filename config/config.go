package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DataDir              string `env:"DATA_DIR" validate:"required"`
	CountryCodesFile     string `env:"COUNTRY_CODES_FILE" validate:"required"`
	CountryCodesEncoding string `env:"COUNTRY_CODES_ENCODING"`
	ProductCodesFile     string `env:"PRODUCT_CODES_FILE" validate:"required"`
	FacetYearToken       string `env:"FACET_YEAR_TOKEN" validate:"required"`

	OutputDir    string `env:"OUTPUT_DIR" validate:"required"`
	OutputFormat string `env:"OUTPUT_FORMAT" validate:"oneof=csv xlsx sqlite postgres"`
	SQLitePath   string `env:"SQLITE_PATH"`

	PostgresHost     string `env:"POSTGRES_HOST"`
	PostgresPort     string `env:"POSTGRES_PORT" validate:"omitempty,numeric"`
	PostgresUser     string `env:"POSTGRES_USER"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresDB       string `env:"POSTGRES_DB"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE"`
	MaxRetries       int    `env:"MAX_RETRIES" validate:"min=1,max=20"`

	LogLevel string `env:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn warning error"`
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() *Config {
	return &Config{
		DataDir:              getEnv("DATA_DIR", "src"),
		CountryCodesFile:     getEnv("COUNTRY_CODES_FILE", "country_codes_V202001.csv"),
		CountryCodesEncoding: getEnv("COUNTRY_CODES_ENCODING", "gbk"),
		ProductCodesFile:     getEnv("PRODUCT_CODES_FILE", "product_codes_HS92_V202001.csv"),
		FacetYearToken:       getEnv("FACET_YEAR_TOKEN", "Y%d"),

		OutputDir:    getEnv("OUTPUT_DIR", "_output"),
		OutputFormat: strings.ToLower(getEnv("OUTPUT_FORMAT", "csv")),
		SQLitePath:   getEnv("SQLITE_PATH", ""),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "tradenet"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresDB:       getEnv("POSTGRES_DB", "tradenet"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		MaxRetries:       getEnvInt("MAX_RETRIES", 5),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	dsn := "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
	if c.PostgresPassword != "" {
		dsn += " password=" + c.PostgresPassword
	}
	return dsn
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
