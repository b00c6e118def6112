package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"rooms-client/internal/config"
	"rooms-client/internal/domain"
	"rooms-client/internal/observability"
	"rooms-client/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	observability.InitLoggerTo(stderr, cfg.LogLevel, cfg.LogFormat)

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open session store", slog.String("driver", cfg.StorageDriver), slog.String("error", err.Error()))
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer func() {
		if err := closeStore(); err != nil {
			slog.Warn("failed to close session store", slog.String("error", err.Error()))
		}
	}()

	a, err := newApp(ctx, cfg, store, stdout, stderr)
	if err != nil {
		fmt.Fprintln(stderr, domain.Message(err))
		return 1
	}
	defer a.close()

	if err := a.execute(ctx, args); err != nil {
		fmt.Fprintln(stderr, domain.Message(err))
		return 1
	}
	return 0
}

func openStore(ctx context.Context, cfg *config.Config) (domain.KeyValueStore, func() error, error) {
	opts := storage.OpenOptions{
		Driver:    cfg.StorageDriver,
		Path:      cfg.StoragePath,
		Secret:    cfg.StorageSecret,
		Namespace: cfg.StorageNamespace,
	}
	if cfg.StorageDriver != storage.DriverPostgres {
		return storage.Open(opts)
	}

	db, err := config.NewPostgresConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	opts.DB = db
	store, closeStore, err := storage.Open(opts)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, func() error {
		err := closeStore()
		if cerr := db.Close(); err == nil {
			err = cerr
		}
		return err
	}, nil
}
