package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/AlexMorrigan04/PilotForce-sub007/internal/adapters/repository/postgres"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/adapters/storage/minio"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/config"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/service/recovery"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/service/upload"
	_ "github.com/lib/pq"
)

// chunkctl drives the pipeline from the command line: it splits and uploads a
// file as chunks, or probes alternate URLs for an unreachable resource.
func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var err error
	switch os.Args[1] {
	case "upload":
		err = runUpload(os.Args[2:], logger)
	case "resolve":
		err = runResolve(os.Args[2:], logger)
	case "ls":
		err = runList(os.Args[2:], logger)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: chunkctl <upload|resolve|ls> [flags]")
	fmt.Fprintln(os.Stderr, "  upload  -booking <id> -file <path> [-mime <type>]")
	fmt.Fprintln(os.Stderr, "  resolve -url <failing-url>")
	fmt.Fprintln(os.Stderr, "  ls      -booking <id>")
}

func runUpload(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bookingID := fs.String("booking", "", "booking the file belongs to")
	path := fs.String("file", "", "path of the file to upload")
	mimeType := fs.String("mime", "", "mime type (defaults from extension)")
	fs.Parse(args)

	if *bookingID == "" || *path == "" {
		return fmt.Errorf("-booking and -file are required")
	}
	if *mimeType == "" {
		*mimeType = mime.TypeByExtension(filepath.Ext(*path))
		if *mimeType == "" {
			*mimeType = "application/octet-stream"
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := context.Background()

	db, err := initDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	minioAdapter, err := minio.NewAdapter(ctx, cfg.Minio, logger)
	if err != nil {
		return fmt.Errorf("failed to init minio: %w", err)
	}

	f, err := os.Open(*path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	unitOfWork := postgres.NewUnitOfWork(db)
	uploadService := upload.NewUploadService(unitOfWork, minioAdapter, cfg.Upload, logger)

	sessionID, err := uploadService.Upload(ctx, *bookingID, filepath.Base(*path), *mimeType, f, info.Size())
	if err != nil {
		return err
	}

	fmt.Printf("session %s uploaded for booking %s\n", sessionID, *bookingID)
	return nil
}

func runResolve(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	failingURL := fs.String("url", "", "URL that no longer works")
	fs.Parse(args)

	if *failingURL == "" {
		return fmt.Errorf("-url is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	recoveryService := recovery.NewRecoveryService(cfg.Recovery, logger)
	resolved, err := recoveryService.Resolve(context.Background(), *failingURL)
	if err != nil {
		return err
	}

	fmt.Println(resolved)
	return nil
}

func runList(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	bookingID := fs.String("booking", "", "booking whose objects to list")
	fs.Parse(args)

	if *bookingID == "" {
		return fmt.Errorf("-booking is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := context.Background()

	minioAdapter, err := minio.NewAdapter(ctx, cfg.Minio, logger)
	if err != nil {
		return fmt.Errorf("failed to init minio: %w", err)
	}

	keys, err := minioAdapter.ListKeys(ctx, *bookingID+"/")
	if err != nil {
		return err
	}
	for _, key := range keys {
		size, err := minioAdapter.ObjectSize(ctx, key)
		if err != nil {
			return err
		}
		fmt.Printf("%12d  %s\n", size, key)
	}
	return nil
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
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
