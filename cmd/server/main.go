package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/phuslu/log"

	"github.com/stockview/stock-analysis-system/internal/api"
	"github.com/stockview/stock-analysis-system/internal/cache"
	"github.com/stockview/stock-analysis-system/internal/config"
	"github.com/stockview/stock-analysis-system/internal/database"
	"github.com/stockview/stock-analysis-system/internal/feed"
	"github.com/stockview/stock-analysis-system/internal/kafka"
	"github.com/stockview/stock-analysis-system/internal/scheduler"
	"github.com/stockview/stock-analysis-system/internal/service"
)

func main() {
	log.DefaultLogger = log.Logger{
		Level:      log.InfoLevel,
		TimeFormat: "15:04:05",
		Writer:     &log.ConsoleWriter{ColorOutput: false},
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Msg("database ready")

	// Cache: Redis when configured, in-process otherwise
	var store cache.Store
	var memory *cache.Memory
	if cfg.Redis.Addr != "" {
		redisStore, err := cache.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("failed to connect to redis")
		}
		defer redisStore.Close()
		store = redisStore
		log.Info().Str("addr", cfg.Redis.Addr).Msg("using redis cache")
	} else {
		memory = cache.NewMemory()
		store = memory
		log.Info().Msg("using in-process cache")
	}

	// Market data feed
	fetcher := feed.NewYahooClient(cfg.Feed.BaseURL, cfg.Feed.Timeout, cfg.Feed.RequestsPerSecond)

	// Kafka producer
	var opts []service.Option
	opts = append(opts, service.WithRepository(db), service.WithBatchParallelism(cfg.Scheduler.BatchParallel))

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.AnalysisTopic)
		defer producer.Close()
		opts = append(opts, service.WithPublisher(producer))
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.AnalysisTopic).Msg("kafka producer ready")
	}

	svc := service.New(fetcher, store, opts...)

	// Kafka bar-event consumer
	if cfg.Kafka.Enabled && cfg.Kafka.ConsumerEnable {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.BarTopic, cfg.Kafka.ConsumerGroup, db)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				log.Error().Err(err).Msg("kafka consumer stopped")
			}
		}()
	}

	// Background jobs
	if cfg.Scheduler.Enabled {
		var sweeper scheduler.Sweeper
		if memory != nil {
			sweeper = memory
		}
		sched := scheduler.New(svc, sweeper)
		if err := sched.Register(cfg.Scheduler.PrewarmCron, cfg.Scheduler.SweepCron); err != nil {
			log.Fatal().Err(err).Msg("failed to register scheduled jobs")
		}
		sched.Start()
		defer sched.Stop()
	}

	// HTTP server
	router := api.SetupRoutes(api.NewHandler(svc))
	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
	log.Info().Msg("server stopped")
}
