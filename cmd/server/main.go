// Package main is the entry point for the Mol-MiDial server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/markxbrooks/Mol-MiDial/internal/api"
	"github.com/markxbrooks/Mol-MiDial/internal/config"
	"github.com/markxbrooks/Mol-MiDial/internal/database"
	"github.com/markxbrooks/Mol-MiDial/internal/database/models"
	"github.com/markxbrooks/Mol-MiDial/internal/database/repositories"
	"github.com/markxbrooks/Mol-MiDial/internal/logger"
	"github.com/markxbrooks/Mol-MiDial/internal/services/midi"
	"github.com/markxbrooks/Mol-MiDial/internal/services/pubsub"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()
	if err := logger.SetLevelName(cfg.LogLevel); err != nil {
		log.Printf("Warning: %v, using INFO", err)
	}

	// Print startup banner
	printBanner(cfg)

	// Connect to database
	db, err := database.Connect(database.Config{
		URL:         cfg.DatabaseURL,
		MaxIdleConn: 5,
		MaxOpenConn: 10,
		Debug:       cfg.IsDevelopment(),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close() }()

	// Auto-migrate database schema
	log.Println("Running database migrations...")
	if err := db.AutoMigrate(
		&models.Setting{},
		&models.ControlMapping{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migrations complete")

	// Create the MIDI controller over the system driver
	transport := midi.NewGomidiTransport()
	controller := midi.NewController(midi.Config{
		Transport:       transport,
		DefaultThrottle: cfg.ThrottleDefault,
	})
	defer transport.Shutdown()

	// Restore persisted preferences and custom mappings
	settingRepo := repositories.NewSettingRepository(db)
	mappingRepo := repositories.NewMappingRepository(db)
	restoreSettings(settingRepo, cfg)
	restoreMappings(mappingRepo, controller)

	// Fan accepted dispatches out to WebSocket subscribers
	ps := pubsub.New()
	registerUpdateHandlers(controller, ps)

	// Auto-connect to the configured port when one is set
	port := cfg.MIDIPort
	if port == "" {
		if saved, err := settingRepo.FindByKey(context.Background(), models.SettingMIDIPort); err == nil && saved != nil {
			port = saved.Value
		}
	}
	if port != "" {
		if err := controller.Connect(port); err != nil {
			log.Printf("Warning: auto-connect to %q failed: %v", port, err)
		} else if cfg.MIDIAutoListen {
			if err := controller.Start(); err != nil {
				log.Printf("Warning: auto-listen failed: %v", err)
			}
		}
	}

	// Create router
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin, "http://localhost:3000", "http://localhost:4000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		Debug:            cfg.IsDevelopment(),
	})
	router.Use(corsMiddleware.Handler)

	// Routes
	router.Get("/health", healthCheckHandler)
	api.NewServer(controller, ps, db).Routes(router)

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on http://localhost:%s\n", cfg.Port)
		log.Printf("Parameter updates: ws://localhost:%s/ws/updates\n", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Cleanup services in reverse order
	controller.Stop()
	controller.Disconnect()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// restoreSettings applies persisted preferences that the environment did
// not override.
func restoreSettings(repo *repositories.SettingRepository, cfg *config.Config) {
	if _, set := os.LookupEnv("LOG_LEVEL"); set {
		return
	}
	saved, err := repo.FindByKey(context.Background(), models.SettingLogLevel)
	if err != nil || saved == nil {
		return
	}
	if err := logger.SetLevelName(saved.Value); err != nil {
		log.Printf("Warning: ignoring saved log level %q: %v", saved.Value, err)
	}
}

// restoreMappings layers persisted custom mappings over the defaults.
func restoreMappings(repo *repositories.MappingRepository, controller *midi.Controller) {
	records, err := repo.FindAll(context.Background())
	if err != nil {
		log.Printf("Warning: failed to load persisted mappings: %v", err)
		return
	}
	for _, rec := range records {
		controller.AddMapping(rec.Name, midi.Mapping{
			Control:        uint8(rec.Control),
			Channel:        uint8(rec.Channel),
			Type:           midi.ControlType(rec.ControlType),
			TargetFunction: rec.TargetFunction,
			TargetMin:      rec.TargetMin,
			TargetMax:      rec.TargetMax,
			Enabled:        rec.Enabled,
			Description:    rec.Description,
		})
	}
	if len(records) > 0 {
		log.Printf("Restored %d persisted mappings", len(records))
	}
}

// registerUpdateHandlers registers one handler per known target function
// that republishes accepted values to WebSocket subscribers.
func registerUpdateHandlers(controller *midi.Controller, ps *pubsub.PubSub) {
	for _, info := range controller.MappingInfo() {
		target := info.TargetFunction
		controller.SetHandler(target, func(value float64) {
			ps.PublishUpdate(target, value)
		})
	}
}

// healthCheckHandler returns the server health status.
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := fmt.Sprintf(`{
  "status": "ok",
  "timestamp": "%s",
  "version": "%s",
  "uptime": "N/A"
}`, time.Now().UTC().Format(time.RFC3339), Version)

	_, _ = w.Write([]byte(response))
}

// printBanner prints the startup banner.
func printBanner(cfg *config.Config) {
	fmt.Println("============================================")
	fmt.Println("  Mol-MiDial Server")
	fmt.Printf("  Version: %s\n", Version)
	fmt.Printf("  Build:   %s\n", BuildTime)
	fmt.Printf("  Commit:  %s\n", GitCommit)
	fmt.Println("============================================")
	fmt.Printf("  Environment: %s\n", cfg.Env)
	fmt.Printf("  Port:        %s\n", cfg.Port)
	fmt.Printf("  Database:    %s\n", cfg.DatabaseURL)
	fmt.Printf("  MIDI port:   %s\n", valueOrUnset(cfg.MIDIPort))
	fmt.Println("============================================")
}

func valueOrUnset(v string) string {
	if v == "" {
		return "(manual)"
	}
	return v
}
