// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"payment-relay/internal/config"
	"payment-relay/internal/domain/ports/adapter"
	payAdapters "payment-relay/internal/infra/adapters/payment"
	"payment-relay/internal/infra/api"
	"payment-relay/internal/infra/catalog"
	pg "payment-relay/internal/infra/db/postgres"
	"payment-relay/internal/infra/events"
	"payment-relay/internal/infra/logging"
	"payment-relay/internal/infra/metrics"
	"payment-relay/internal/infra/payment"
	red "payment-relay/internal/infra/redis"
	"payment-relay/internal/infra/sched"
	"payment-relay/internal/infra/worker"
	"payment-relay/internal/usecase"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop gateway, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)
	logger.Info().Str("version", version).Str("commit", commit).Bool("dev", cfg.Runtime.Dev).Msg("starting payment relay")

	// ---- Postgres (optional) ----
	var pool *pgxpool.Pool
	var poolStats sched.PoolStatsFunc
	if cfg.Database.Enabled() {
		pool, err = pg.NewPgxPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres")
		}
		defer pool.Close()
		poolStats = pg.PoolStats(pool)
	} else {
		logger.Warn().Msg("database not configured; payments will not be persisted")
	}
	txManager := pg.NewTxManager(pool)
	paymentRepo := pg.NewPaymentRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	profileRepo := pg.NewProfileRepo(pool)

	// ---- Redis rate limiter (optional) ----
	var limiter api.Limiter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		limiter = red.NewRateLimiter(redisClient)
	}

	// ---- Plans ----
	plans, err := catalog.New(cfg.Plans)
	if err != nil {
		logger.Fatal().Err(err).Msg("plan catalog")
	}

	// ---- Gateway ----
	var gateway adapter.PaymentGateway
	rz := cfg.Payment.Razorpay
	if cfg.UsesNoopGateway() {
		logger.Warn().Str("signature_secret", config.DevKeySecret).
			Msg("[DEV MODE] razorpay credentials missing; using noop gateway")
		gateway = payAdapters.NewNoopPaymentGateway()
	} else {
		gateway, err = payAdapters.NewRazorpayGateway(rz.KeyID, rz.KeySecret, rz.BaseURL, rz.Timeout)
		if err != nil {
			logger.Fatal().Err(err).Msg("razorpay gateway")
		}
	}
	verifier := payment.NewSignatureVerifier(cfg.SignatureSecret())

	// ---- Events ----
	eventPool := worker.NewPool(cfg.Kafka.Workers, logger)
	eventPool.Start(ctx)
	var publisher adapter.EventPublisher = events.NewNoopPublisher(logger)
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := events.NewKafkaProducer(cfg.Kafka.Brokers)
		if err != nil {
			logger.Fatal().Err(err).Strs("brokers", cfg.Kafka.Brokers).Msg("kafka producer")
		}
		kp := events.NewKafkaPublisher(producer, cfg.Kafka.Topic, logger)
		defer kp.Close()
		publisher = kp
	}
	publisher = events.NewAsyncPublisher(publisher, eventPool, logger)

	// ---- Use cases ----
	opts := []usecase.Option{
		usecase.WithStoreTimeout(cfg.Database.Timeout),
		usecase.WithTransactional(cfg.Reconcile.Transactional),
	}
	planUC := usecase.NewPlanUseCase(plans)
	orderUC := usecase.NewOrderUseCase(plans, gateway, paymentRepo, logger, opts...)
	paymentUC := usecase.NewPaymentUseCase(plans, verifier, paymentRepo, subRepo, profileRepo, txManager, publisher, gateway.Name(), logger, opts...)

	// ---- Stale payment monitor ----
	if cfg.Database.Enabled() {
		monitor := sched.NewStalePaymentMonitor(paymentUC, poolStats, cfg.Monitor.Interval, cfg.Monitor.StaleAfter, logger)
		go func() {
			if err := monitor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("stale payment monitor stopped")
			}
		}()
	}

	// ---- HTTP ----
	auth := api.NewAuthManager(cfg.Admin.JWTSecret, cfg.Admin.TokenTTL)
	srv := api.NewServer(orderUC, paymentUC, planUC, auth, limiter, cfg.HTTP, cfg.RateLimit, logger)
	go func() {
		if err := srv.Start(cfg.HTTP.Port); err != nil {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
	case <-ctx.Done():
	}
	logger.Info().Msg("shutdown requested")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	eventPool.Stop()
	cancel()
}
