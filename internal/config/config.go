package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the tracker services.
// Values come from the environment, optionally seeded from a .env file.
type Config struct {
	// ProjectID is the cloud project hosting the dataset.
	ProjectID string
	// Dataset is the dataset name containing the tracker tables.
	Dataset string
	// Port is the HTTP listen port for the API server.
	Port string
	// AvatarBucket is the GCS bucket for person avatar uploads.
	// Empty disables avatar uploads.
	AvatarBucket string
	// BulkDeletePolicy selects how bulk deletes handle individual
	// failures: "stop" (default) or "continue".
	BulkDeletePolicy string
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional in production
	}

	return &Config{
		ProjectID:        getEnvOrDefault("MONETA_PROJECT_ID", "moneta-tracker"),
		Dataset:          getEnvOrDefault("MONETA_DATASET", "moneta"),
		Port:             getEnvOrDefault("PORT", "8080"),
		AvatarBucket:     os.Getenv("GCS_BUCKET"),
		BulkDeletePolicy: getEnvOrDefault("BULK_DELETE_POLICY", "stop"),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
