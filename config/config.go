package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendFirestore = "firestore"
	BackendMongo     = "mongo"

	DefaultProjectID = "cement-delivery-tracker-72de2"
)

type Config struct {
	Backend          string
	ProjectID        string
	MongoURI         string
	MongoDatabase    string
	VisitsCollection string
	UsersCollection  string
	Schedule         string
	StoreTimeout     time.Duration
}

/*
* Load .env if present, a missing file is not an error
* Read every setting with its default
* Validate the backend specific settings
 */
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded:", err)
	}

	timeout, err := time.ParseDuration(getEnv("STORE_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("STORE_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Backend:          strings.ToLower(getEnv("STORE_BACKEND", BackendFirestore)),
		ProjectID:        getEnv("GOOGLE_CLOUD_PROJECT", DefaultProjectID),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDatabase:    os.Getenv("MONGO_DATABASE"),
		VisitsCollection: getEnv("VISITS_COLLECTION", "visits"),
		UsersCollection:  getEnv("USERS_COLLECTION", "users"),
		Schedule:         strings.TrimSpace(os.Getenv("MIGRATION_SCHEDULE")),
		StoreTimeout:     timeout,
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendFirestore:
		if c.ProjectID == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required for the firestore backend")
		}
	case BackendMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for the mongo backend")
		}
		if c.MongoDatabase == "" {
			return fmt.Errorf("MONGO_DATABASE is required for the mongo backend")
		}
	default:
		return fmt.Errorf("STORE_BACKEND: unknown backend %q, expected firestore or mongo", c.Backend)
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
