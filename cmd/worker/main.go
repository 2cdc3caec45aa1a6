// Package main is the entry point for the procura background worker.
// It relays the transactional outbox and expires idempotency keys.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"procura/internal/config"
	"procura/internal/infrastructure/messaging"
	"procura/internal/infrastructure/messaging/kafka"
	"procura/internal/infrastructure/storage/postgres"
	"procura/pkg/logger"
)

const cleanupInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting procura worker")

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = 5
	poolCfg.MinConns = 1
	poolCfg.ApplicationName = "procura-worker"
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool).WithStatementTimeout(cfg.StatementTimeout)

	var handler postgres.OutboxHandler = messaging.LogHandler{}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicStock, cfg.KafkaClientID)
		if err != nil {
			log.Fatalw("failed to create kafka producer", "error", err, "brokers", cfg.KafkaBrokers)
		}
		defer producer.Close()
		handler = producer
		log.Infow("relaying outbox to kafka", "topic", cfg.KafkaTopicStock)
	} else {
		log.Warn("KAFKA_BROKERS not set, outbox events are logged only")
	}

	w := &worker{
		relay:        postgres.NewOutboxRelay(txManager, cfg.OutboxBatchSize, handler),
		idempotency:  postgres.NewIdempotencyStore(txManager, cfg.IdempotencyTTL),
		log:          log.WithComponent("worker"),
		pollInterval: cfg.OutboxPollInterval,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

type worker struct {
	relay        *postgres.OutboxRelay
	idempotency  *postgres.IdempotencyStore
	log          *logger.Logger
	pollInterval time.Duration
}

// Run polls the outbox until ctx is canceled.
func (w *worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	cleanupTicker := time.NewTicker(cleanupInterval)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processOutbox(ctx)
		case <-cleanupTicker.C:
			w.cleanup(ctx)
		}
	}
}

func (w *worker) processOutbox(ctx context.Context) {
	// Drain while full batches keep coming.
	for ctx.Err() == nil {
		n, err := w.relay.ProcessBatch(ctx)
		if err != nil {
			w.log.Errorw("outbox batch failed", "error", err)
			return
		}
		if n > 0 {
			w.log.Debugw("processed outbox batch", "count", n)
		}
		if n == 0 || n < w.relay.BatchSize() {
			return
		}
	}
}

func (w *worker) cleanup(ctx context.Context) {
	if moved, err := w.relay.MoveToDLQ(ctx); err != nil {
		w.log.Errorw("move outbox to dlq failed", "error", err)
	} else if moved > 0 {
		w.log.Warnw("moved failed outbox messages to dlq", "count", moved)
	}

	if removed, err := w.idempotency.CleanupExpired(ctx); err != nil {
		w.log.Errorw("cleanup idempotency keys failed", "error", err)
	} else if removed > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", removed)
	}
}
