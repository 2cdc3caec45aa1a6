// Package main is the entry point for the procura API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"procura/internal/config"
	"procura/internal/domain/auth"
	"procura/internal/domain/catalogs/item"
	"procura/internal/domain/documents/receiving"
	"procura/internal/domain/documents/srequest"
	"procura/internal/domain/ledger"
	v1 "procura/internal/infrastructure/http/v1"
	"procura/internal/infrastructure/storage/postgres"
	"procura/internal/infrastructure/storage/postgres/catalog_repo"
	"procura/internal/infrastructure/storage/postgres/document_repo"
	"procura/internal/infrastructure/storage/postgres/register_repo"
	"procura/pkg/logger"
)

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

	ctx := context.Background()
	log.Infow("starting procura server", "env", cfg.Environment)

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = int32(cfg.DBMaxConns)
	poolCfg.MinConns = int32(cfg.DBMinConns)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool).WithStatementTimeout(cfg.StatementTimeout)

	// --- Storage ---
	itemRepo := catalog_repo.NewItemRepo(txManager)
	receivingRepo := document_repo.NewReceivingRepo(txManager)
	requestRepo := document_repo.NewServiceRequestRepo(txManager)
	movementRepo := register_repo.NewMovementRepo(txManager)
	outbox := postgres.NewOutboxPublisher(txManager)
	idempotency := postgres.NewIdempotencyStore(txManager, cfg.IdempotencyTTL)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- Domain ---
	adjuster := ledger.NewAdjuster(itemRepo, movementRepo, outbox)
	itemService := item.NewService(itemRepo, txManager)
	receivingService := receiving.NewService(receivingRepo, adjuster, txManager, auditService)
	requestService := srequest.NewService(requestRepo, adjuster, txManager, auditService)

	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret, cfg.JWTIssuer))

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := v1.NewRouter(v1.RouterConfig{
		Logger:       log,
		JWTValidator: jwtService,
		DB:           pool,
		Items:        itemService,
		Movements:    adjuster,
		Receivings:   receivingService,
		SRequests:    requestService,
		History:      auditService,
		Idempotency:  idempotency,
		WriteRoles:   cfg.WriteRoles,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.StatementTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}
	log.Info("server stopped")
}
