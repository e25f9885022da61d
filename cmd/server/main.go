package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"solardesk/internal/billing"
	"solardesk/internal/config"
	"solardesk/internal/database"
	"solardesk/internal/identity"
	"solardesk/internal/notify"
	"solardesk/internal/server"
	"solardesk/internal/storage"
)

func main() {
	cfg := config.Load()
	logger := config.GetLogger()

	database.Init(cfg.DBDSN)

	store, err := storage.FromConfig(cfg)
	if err != nil {
		log.Fatalf("failed to init storage: %v", err)
	}

	idp := identity.NewClient(cfg.IdentityBaseURL, cfg.IdentityServiceKey)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var email notify.EmailSender
	if cfg.MailBaseURL != "" {
		email = notify.NewMailClient(cfg.MailBaseURL, cfg.MailAPIKey, cfg.MailFrom)
	}
	var calendar notify.CalendarSender
	if cfg.CalendarBaseURL != "" {
		calendar = notify.NewCalendarClient(cfg.CalendarBaseURL, cfg.CalendarAPIKey, cfg.CalendarID)
	}
	dispatcher := notify.NewDispatcher(database.DB, logger, email, calendar)
	go dispatcher.Run(ctx)

	if cfg.BillingBaseURL != "" {
		syncer := billing.NewSyncer(database.DB, billing.NewClient(cfg.BillingBaseURL, cfg.BillingAPIKey), logger)
		go syncer.Run(ctx)
	} else {
		logger.Warn("BILLING_BASE_URL not set, invoice sync disabled")
	}

	r := server.NewRouter(cfg, idp, store)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
