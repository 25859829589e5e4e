package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vitalflow/analytics/internal/config"
	"github.com/vitalflow/analytics/internal/logger"
	"github.com/vitalflow/analytics/internal/metrics"
	"github.com/vitalflow/analytics/internal/publisher"
	"github.com/vitalflow/analytics/internal/service"
	"github.com/vitalflow/analytics/internal/stream"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume record lifecycle events",
	Long: `Consume newline-delimited JSON record lifecycle events from a file or
stdin and apply them to the daily rollups. Queue transports plug in behind
the same source interface.`,
	RunE: runWorker,
}

var workerInput string

func init() {
	workerCmd.Flags().StringVarP(&workerInput, "input", "i", "-", "Event input file (- for stdin)")
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewSlogLogger(logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
	})
	logger.SetDefault(log)

	rollupRepo, counterRepo, closeStorage, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	collector := metrics.NewCollector()
	pub := publisher.NewLogPublisher(log)
	applier := service.NewApplier(rollupRepo, counterRepo, pub, collector, log)

	input := os.Stdin
	if workerInput != "-" {
		f, err := os.Open(workerInput)
		if err != nil {
			return fmt.Errorf("failed to open event input: %w", err)
		}
		defer f.Close()
		input = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source := stream.NewReaderSource(input, log)
	log.Info("worker consuming events", logger.String("input", workerInput))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consume(ctx, source, applier, log)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// consume applies envelopes in arrival order. Per-key ordering is therefore
// the transport's delivery order, as required; cross-key concurrency comes
// from running multiple workers or the HTTP ingestion path, both safe under
// the applier's per-key locks.
func consume(ctx context.Context, source stream.Source, applier service.Applier, log logger.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env, ok := <-source.Events():
			if !ok {
				return nil
			}

			event, err := stream.Decode(env, time.Now().UTC())
			if err != nil {
				if errors.Is(err, stream.ErrMissingTimestamp) {
					// No safe default date exists for compensation.
					log.Debug("dropping undatable event",
						logger.String("kind", env.Kind),
						logger.String("username", env.Username),
					)
					continue
				}
				log.Warn("skipping undecodable event", logger.Err(err))
				continue
			}

			if _, err := applier.Apply(ctx, event); err != nil {
				// Store failures surface here so the transport can decide
				// on redelivery; with a file source we log and move on.
				log.Error("failed to apply event",
					logger.String("kind", string(event.Kind)),
					logger.String("username", event.Username),
					logger.Err(err),
				)
			}
		}
	}
}
