package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/AlexMorrigan04/PilotForce-sub007/internal/adapters/handlers/http/chi"
	recovery2 "github.com/AlexMorrigan04/PilotForce-sub007/internal/adapters/handlers/http/chi/v1/recovery"
	session2 "github.com/AlexMorrigan04/PilotForce-sub007/internal/adapters/handlers/http/chi/v1/session"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/adapters/repository/postgres"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/adapters/storage/minio"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/config"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/port"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/service/reassembly"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/service/recovery"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/service/sweep"
	_ "github.com/lib/pq"
)

func main() {

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := initDB(cfg.Database)
	if err != nil {
		logger.Error("failed to init database", "error", err)
		os.Exit(1)
	}
	defer func(db *sql.DB) {
		err := db.Close()
		if err != nil {
			logger.Error("failed to close database", "error", err)
			os.Exit(1)
		}
	}(db)
	logger.Info("db connection established")

	//storage
	minioAdapter, err := minio.NewAdapter(ctx, cfg.Minio, logger)
	if err != nil {
		logger.Error("failed to init minio", "error", err)
		os.Exit(1)
	}

	//repositories
	unitOfWork := postgres.NewUnitOfWork(db)

	reassemblyService := reassembly.NewReassemblyService(unitOfWork, minioAdapter, cfg.Reassembly, logger)
	recoveryService := recovery.NewRecoveryService(cfg.Recovery, logger)
	sweepService := sweep.NewSweepService(unitOfWork, reassemblyService, minioAdapter, cfg.Reassembly, logger)

	//http
	sessionHandler := session2.NewSessionHandlerV1(reassemblyService, logger)
	recoveryHandler := recovery2.NewRecoveryHandlerV1(recoveryService, logger)

	router := chi.NewRouter(logger, sessionHandler, recoveryHandler, cfg.Env.Env)
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port)
		servErr := server.ListenAndServe()
		if servErr != nil && !errors.Is(servErr, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", servErr)
			stop()
		}
	}()

	// init sweep task
	wg.Add(1)
	go func() {
		defer wg.Done()
		initSweepTask(ctx, sweepService, cfg.Reassembly.SweepEvery, logger)
	}()

	//wait for context cancel
	<-ctx.Done()
	logger.Info("gracefully shutting down app")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	} else {
		logger.Info("server gracefully shutdown complete")
	}

	wg.Wait()
	logger.Info("app shutdown complete")

}

func initDB(cfg config.DatabaseConfig) (*sql.DB, error) {

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenCons)
	db.SetMaxIdleConns(cfg.MaxIdleCons)
	db.SetConnMaxLifetime(cfg.ConMaxLifeTime)

	return db, nil
}

func initSweepTask(ctx context.Context, service port.SweepService, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	logger.Info("sweep task initialized", "interval", every)

	for {
		select {
		case <-ticker.C:
			logger.Info("sweep task starting")
			err := service.SweepPending(ctx, time.Now())
			if err != nil {
				logger.Error("failed to sweep pending sessions", "error", err)
			} else {
				logger.Info("sweep task completed successfully")
			}
		case <-ctx.Done():
			logger.Info("sweep task stopped")
			return
		}
	}

}
