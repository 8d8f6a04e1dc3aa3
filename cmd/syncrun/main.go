package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/mercantil-app/mercantilgo/internal/config"
	"github.com/mercantil-app/mercantilgo/internal/database"
	"github.com/mercantil-app/mercantilgo/internal/models"
	"github.com/mercantil-app/mercantilgo/internal/services/tiny"
	"github.com/mercantil-app/mercantilgo/internal/storage"
)

// syncrun executes one marketplace sync for an explicit date range and
// exits. Useful for backfills and for testing the integration without
// starting the API server.
func main() {
	var (
		startDate    = flag.String("start", tiny.TodayStoreDate(), "start date (DD/MM/YYYY)")
		endDate      = flag.String("end", tiny.TodayStoreDate(), "end date (DD/MM/YYYY)")
		statusFilter = flag.String("status", "", "optional marketplace status filter")
	)
	flag.Parse()

	for _, raw := range []string{*startDate, *endDate} {
		if _, err := time.Parse("02/01/2006", raw); err != nil {
			log.Fatalf("Invalid date %q, expected DD/MM/YYYY", raw)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Olist.APIToken == "" {
		log.Fatal("OLIST_API_TOKEN is not set")
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}); err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	}

	store := storage.NewGormStore(db)
	syncService := tiny.NewSyncService(store, tiny.Config{
		APIToken:     cfg.Olist.APIToken,
		APIURL:       cfg.Olist.APIURL,
		SyncInterval: cfg.Olist.SyncInterval,
		RateLimit:    cfg.Olist.RateLimit,
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	report, err := syncService.RunSync(ctx, *startDate, *endDate, *statusFilter)
	if err != nil {
		log.Fatalf("❌ Sync failed: %v", err)
	}

	log.Printf("✅ Done: %d found, %d synced, %d skipped, %d with unrecognized status",
		report.Found, report.Synced, report.Skipped, report.Unrecognized)
}
