package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mercantil-app/mercantilgo/internal/config"
	"github.com/mercantil-app/mercantilgo/internal/database"
	"github.com/mercantil-app/mercantilgo/internal/handlers"
	"github.com/mercantil-app/mercantilgo/internal/models"
	"github.com/mercantil-app/mercantilgo/internal/services/tiny"
	"github.com/mercantil-app/mercantilgo/internal/storage"
	"github.com/mercantil-app/mercantilgo/internal/websocket"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize database (Detects Embedded vs External automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-Migrate Schema
	log.Println("🚀 Synchronizing database schema...")
	err = db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Order{},
	)
	if err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	} else {
		log.Println("✅ Schema synchronized successfully")
	}

	// 4. Set up HTTP router
	router := handlers.NewRouter(db, cfg)

	// 5. Websocket hub for the live admin order feed
	hub := websocket.NewHub()
	go hub.Run()
	router.SetHub(hub)

	// 6. Start Olist Sync Service (Background)
	store := storage.NewGormStore(db)
	syncService := tiny.NewSyncService(store, tiny.Config{
		APIToken:     cfg.Olist.APIToken,
		APIURL:       cfg.Olist.APIURL,
		SyncInterval: cfg.Olist.SyncInterval,
		RateLimit:    cfg.Olist.RateLimit,
	}, hub)
	syncService.Start()
	router.SetSyncService(syncService)

	// 7. Start server with graceful shutdown
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router.Handler(),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		log.Printf("🚀 Server starting on port %s [env: %s]\n", cfg.Port, cfg.NodeEnv)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sig := <-shutdown
	log.Printf("\n⚠️  Received signal: %v. Shutting down gracefully...\n", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	syncService.Stop()

	// Close database (this also stops embedded PostgreSQL)
	log.Println("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
