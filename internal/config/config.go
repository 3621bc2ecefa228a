// Package config loads process settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the settings shared by the API server and the CLI.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	// MaxUploadBytes caps request bodies of spreadsheet uploads.
	MaxUploadBytes int64

	GCSBucket  string
	GCPProject string
	BQDataset  string

	SheetsCredentialsFile string

	NotionToken      string
	NotionDatabaseID string

	GeminiModel string
}

const (
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"
	defaultMaxUploadBytes = 10 << 20
	defaultBQDataset      = "finance_dashboard"
	defaultGeminiModel    = "gemini-2.5-flash"
)

// Load reads the given .env files (".env" when none are given) and then the
// environment. Missing .env files are not an error; variables already set
// in the environment win over the file.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, path := range envFiles {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	maxUpload, err := int64Env("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:                  stringEnv("PORT", defaultPort),
		LogLevel:              stringEnv("LOG_LEVEL", defaultLogLevel),
		LogFormat:             stringEnv("LOG_FORMAT", defaultLogFormat),
		MaxUploadBytes:        maxUpload,
		GCSBucket:             os.Getenv("GCS_BUCKET"),
		GCPProject:            stringEnv("GCP_PROJECT", os.Getenv("GOOGLE_CLOUD_PROJECT")),
		BQDataset:             stringEnv("BQ_DATASET", defaultBQDataset),
		SheetsCredentialsFile: stringEnv("SHEETS_CREDENTIALS_FILE", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
		NotionToken:           os.Getenv("NOTION_TOKEN"),
		NotionDatabaseID:      os.Getenv("NOTION_DATABASE_ID"),
		GeminiModel:           stringEnv("GEMINI_MODEL", defaultGeminiModel),
	}, nil
}

// BigQueryEnabled reports whether a warehouse export target is configured.
func (c *Config) BigQueryEnabled() bool {
	return c.GCPProject != "" && c.BQDataset != ""
}

// NotionEnabled reports whether the Notion sink is configured.
func (c *Config) NotionEnabled() bool {
	return c.NotionToken != "" && c.NotionDatabaseID != ""
}

// SheetsEnabled reports whether Google Sheets imports can authenticate.
func (c *Config) SheetsEnabled() bool {
	return c.SheetsCredentialsFile != ""
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func int64Env(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}
