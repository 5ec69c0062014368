package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"sweeparr/internal/arr"
	"sweeparr/internal/logging"
	"sweeparr/internal/notifications"
	"sweeparr/internal/reconciler"
	"sweeparr/internal/tracker"
)

func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute one reconciliation pass against the remote queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}
			logger = logger.With("pass", uuid.NewString())

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Passes against the same store must not overlap; the external
			// scheduler is expected to serialize them, and the lock refuses
			// the pass outright when it does not.
			lock := flock.New(cfg.LockPath())
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire store lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another pass holds %s; refusing to run concurrently", cfg.LockPath())
			}
			defer func() { _ = lock.Unlock() }()

			store, err := tracker.Open(cfg)
			if err != nil {
				return fmt.Errorf("open tracking store: %w", err)
			}
			defer store.Close()

			kind, err := arr.ParseKind(cfg.Arr.Kind)
			if err != nil {
				return err
			}
			client, err := arr.New(kind, cfg.Arr.BaseURL, cfg.Arr.APIKey, arr.WithLogger(logger))
			if err != nil {
				return err
			}

			// A fetch failure aborts before any store write so the store
			// stays consistent with the last successful pass.
			snapshot, err := client.FetchActive(ctx)
			if err != nil {
				return fmt.Errorf("fetch queue: %w", err)
			}
			logger.Info("queue snapshot fetched", "kind", kind, "active", len(snapshot))

			rec := reconciler.New(store, client, cfg.StallThreshold(), cfg.GracePeriod(), logger)
			summary, err := rec.Run(ctx, snapshot, time.Now().UTC())
			if err != nil {
				return fmt.Errorf("reconcile: %w", err)
			}

			if err := notifications.NewService(cfg).NotifyPassCompleted(ctx, summary); err != nil {
				logger.Warn("pass notification failed", "error", err)
			}

			logger.Info("pass completed",
				"active", summary.Snapshot,
				"new", summary.Inserted,
				"progressed", summary.Progressed,
				"refreshed", summary.Refreshed,
				"evicted_stalled", summary.StalledEvicted,
				"evicted_vanished", summary.VanishedEvicted,
				"delete_failures", summary.DeleteFailures)
			return nil
		},
	}
}
