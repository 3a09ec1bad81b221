// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"stockroom/internal/auth"
	"stockroom/internal/config"
	"stockroom/internal/directory"
	"stockroom/internal/inventory"
	"stockroom/internal/notifications"
	"stockroom/internal/postgres"
	"stockroom/internal/requests"
	"stockroom/internal/telemetry"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "stockroom", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("Failed to set up tracing: %v", err)
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	directoryService := directory.NewService(db)
	inventoryService := inventory.NewService(db)
	requestService := requests.NewService(db, directoryService, inventoryService)
	notificationService := notifications.NewService(db)

	directoryHandler := directory.NewHandler(directoryService, cfg.JWTSecret)
	inventoryHandler := inventory.NewHandler(inventoryService)
	requestHandler := requests.NewHandler(requestService)
	notificationHandler := notifications.NewHandler(notificationService)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/auth/register", directoryHandler.HandleRegister)
	r.Post("/auth/login", directoryHandler.HandleLogin)

	r.Get("/categories", inventoryHandler.HandleListCategories)
	r.Get("/inventory/items", inventoryHandler.HandleListItems)
	r.Get("/inventory/items/{id}", inventoryHandler.HandleGetItem)

	r.Get("/requests", requestHandler.HandleList)
	r.Get("/requests/{id}", requestHandler.HandleGet)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(cfg.JWTSecret))

		r.Get("/users/{id}", directoryHandler.HandleGetUser)
		r.Post("/requests", requestHandler.HandleCreate)
		r.Post("/requests/{id}/transition", requestHandler.HandleTransition)
		r.Post("/requests/{id}/comments", requestHandler.HandleAddComment)
		r.Get("/notifications", notificationHandler.HandleList)
		r.Post("/notifications/{id}/read", notificationHandler.HandleMarkRead)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(directory.RoleAdmin))
			r.Post("/categories", inventoryHandler.HandleCreateCategory)
			r.Post("/inventory/items", inventoryHandler.HandleCreateItem)
		})
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("tracing shutdown", "error", err)
	}
}
