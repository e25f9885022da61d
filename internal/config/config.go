package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN         string
	ServerPort    string
	SessionSecret string
	CORSOrigins   []string

	// Identity provider (worker auth bridge).
	IdentityBaseURL    string
	IdentityServiceKey string
	IdentityJWTSecret  string

	// External billing provider.
	BillingBaseURL string
	BillingAPIKey  string

	// Notification senders.
	MailBaseURL     string
	MailAPIKey      string
	MailFrom        string
	CalendarBaseURL string
	CalendarAPIKey  string
	CalendarID      string

	// File storage.
	StorageProvider string // "local" or "gcs"
	StorageLocalDir string
	GCSBucket       string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBDSN:         os.Getenv("DB_DSN"),
		ServerPort:    os.Getenv("SERVER_PORT"),
		SessionSecret: os.Getenv("SESSION_SECRET"),

		IdentityBaseURL:    os.Getenv("IDP_BASE_URL"),
		IdentityServiceKey: os.Getenv("IDP_SERVICE_KEY"),
		IdentityJWTSecret:  os.Getenv("IDP_JWT_SECRET"),

		BillingBaseURL: os.Getenv("BILLING_BASE_URL"),
		BillingAPIKey:  os.Getenv("BILLING_API_KEY"),

		MailBaseURL:     os.Getenv("MAIL_BASE_URL"),
		MailAPIKey:      os.Getenv("MAIL_API_KEY"),
		MailFrom:        os.Getenv("MAIL_FROM"),
		CalendarBaseURL: os.Getenv("CALENDAR_BASE_URL"),
		CalendarAPIKey:  os.Getenv("CALENDAR_API_KEY"),
		CalendarID:      os.Getenv("CALENDAR_ID"),

		StorageProvider: os.Getenv("STORAGE_PROVIDER"),
		StorageLocalDir: os.Getenv("STORAGE_LOCAL_DIR"),
		GCSBucket:       os.Getenv("GCS_BUCKET"),
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	if cfg.DBDSN == "" {
		log.Fatal("DB_DSN is not set")
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.SessionSecret == "" {
		log.Fatal("SESSION_SECRET is not set")
	}
	if cfg.IdentityJWTSecret == "" {
		log.Fatal("IDP_JWT_SECRET is not set")
	}
	if cfg.StorageProvider == "" {
		cfg.StorageProvider = "local"
	}
	if cfg.StorageLocalDir == "" {
		cfg.StorageLocalDir = "./data/files"
	}
	if cfg.MailFrom == "" {
		cfg.MailFrom = "noreply@solardesk.local"
	}

	return cfg
}
