// Package config loads service configuration from the environment,
// with an optional .env file for local development.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name      string `envconfig:"APP_NAME" default:"mizan"`
		Port      int    `envconfig:"PORT" default:"8080"`
		LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
		LogFormat string `envconfig:"LOG_FORMAT" default:"console"`
	}

	Report struct {
		Currency string  `envconfig:"REPORT_CURRENCY" default:"EUR"`
		VATRate  float64 `envconfig:"REPORT_VAT_RATE" default:"0.19"`
	}

	GCP struct {
		ProjectID string `envconfig:"GCP_PROJECT_ID"`
		Bucket    string `envconfig:"GCS_BUCKET"`
		Dataset   string `envconfig:"BQ_DATASET" default:"mizan"`
		Location  string `envconfig:"BQ_LOCATION" default:"EU"`
	}

	Gemini struct {
		APIKey string `envconfig:"GEMINI_API_KEY"`
		Model  string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	}

	Jobs struct {
		BufferSize int `envconfig:"JOB_BUFFER_SIZE" default:"100"`
		MaxRetries int `envconfig:"JOB_MAX_RETRIES" default:"3"`
	}

	Notion struct {
		Token      string `envconfig:"NOTION_TOKEN"`
		DatabaseID string `envconfig:"NOTION_DATABASE_ID"`
	}
}

// Load reads configuration from the environment. A missing .env file is
// not an error; explicit environment variables always win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
