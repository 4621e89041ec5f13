package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/MJE43/fair-go/internal/api"
	"github.com/MJE43/fair-go/internal/config"
	"github.com/MJE43/fair-go/internal/logging"
	"github.com/MJE43/fair-go/internal/scan"
	"github.com/MJE43/fair-go/internal/seedpair"
	"github.com/MJE43/fair-go/internal/seedvault"
	"github.com/MJE43/fair-go/internal/store"
)

const shutdownTimeout = 10 * time.Second

// runServe starts the HTTP API and blocks until ctx is cancelled.
func runServe(ctx context.Context, args []string, stderr io.Writer) (err error) {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	fs := newFlagSet("serve", stderr)
	fs.StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}

	log, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: stderr})
	if err != nil {
		return err
	}

	db, err := store.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, db.Close()) }()

	vault := seedvault.New(cfg.KeyringService, cfg.SeedFallbackPath)
	server := api.NewServer(api.Options{
		DB:        db,
		SeedPairs: seedpair.New(db, vault, log),
		Scanner: scan.NewScanner(scan.Options{
			Workers:       cfg.ScanWorkers,
			MaxRange:      cfg.ScanMaxRange,
			EngineVersion: api.EngineVersion,
			Logger:        log,
		}),
		Chain:          cfg.CrashChain(),
		RequestTimeout: cfg.RequestTimeout,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("db", cfg.DBPath).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
