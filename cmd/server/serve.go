package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lagergrenk/grindmode-sub001/internal/api"
	"github.com/Lagergrenk/grindmode-sub001/internal/config"
	"github.com/Lagergrenk/grindmode-sub001/internal/identity"
	"github.com/Lagergrenk/grindmode-sub001/internal/repository"
	"github.com/Lagergrenk/grindmode-sub001/internal/repository/memory"
	"github.com/Lagergrenk/grindmode-sub001/internal/repository/mongo"
	"github.com/Lagergrenk/grindmode-sub001/internal/service"
	"github.com/Lagergrenk/grindmode-sub001/internal/session"
	"github.com/Lagergrenk/grindmode-sub001/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg, logger)
	},
}

// backend is the persistence chosen by database.driver.
type backend struct {
	store repository.Store
	users repository.UserRepository
	close func()
}

func openBackend(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*backend, error) {
	if cfg.Driver == config.DriverMemory {
		logger.Warn("using in-memory storage; data is lost on exit")
		return &backend{store: memory.NewStore(), users: memory.NewUserRepository(), close: func() {}}, nil
	}

	client, err := mongo.ConnectDB(cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	db := client.Database(cfg.Name)
	logger.Info("database connection established", "database", cfg.Name)

	// Index creation must not hold up startup.
	go func() {
		ctx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(ctx, db, service.ScopedCollections...); err != nil {
			logger.Error("index creation failed", "error", err)
			return
		}
		logger.Info("index creation completed")
	}()

	return &backend{
		store: mongo.NewStore(db),
		users: mongo.NewMongoUserRepository(db),
		close: func() {
			logger.Info("disconnecting MongoDB")
			if err := mongo.DisconnectDB(client); err != nil {
				logger.Error("failed to disconnect MongoDB", "error", err)
			}
		},
	}, nil
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openBackend(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.close()

	// --- Initialize Storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.Enabled() {
		fileStorage, err = storage.NewS3Storage(ctx, cfg.S3, logger)
		if err != nil {
			return fmt.Errorf("initialize S3 storage: %w", err)
		}
	} else {
		logger.Warn("s3.bucket_name not set; progress photos are disabled")
	}

	// --- Initialize Services ---
	events := identity.NewStream(logger)
	defer events.Close()

	svcOpts := []service.Option{service.WithLogger(logger)}
	authService := service.NewAuthService(db.users, cfg.JWT.Secret, cfg.JWT.Expiration, events, svcOpts...)
	// Sessions idle for a token lifetime are dropped.
	sessions := session.NewManager(session.NewBuilder(db.store, fileStorage, svcOpts...), logger,
		session.WithIdleTimeout(cfg.JWT.Expiration))
	go sessions.Watch(ctx, events)

	// --- Initialize Gin Engine ---
	if cfg.Log.SlogLevel() > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(api.RequestLogger(logger), gin.Recovery())
	api.SetupRoutes(router, authService, sessions)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful Shutdown ---
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	// In-flight requests get 5 seconds to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exiting")
	return nil
}
