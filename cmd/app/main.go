package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/aircargo/api"
	"github.com/Domenick1991/aircargo/config"
	"github.com/Domenick1991/aircargo/internal/bootstrap"
	"github.com/Domenick1991/aircargo/internal/cache"
	"github.com/Domenick1991/aircargo/internal/kafka"
	"github.com/Domenick1991/aircargo/internal/logger"
	"github.com/Domenick1991/aircargo/internal/repository"
	"github.com/Domenick1991/aircargo/internal/service/booking"
	"github.com/Domenick1991/aircargo/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		slog.Error("load config", "path", cfgPath, "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	checks := map[string]api.HealthCheck{}

	var (
		flightRepo  repository.FlightRepository
		bookingRepo repository.BookingRepository
	)
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("ping postgres: %w", err)
		}
		if cfg.Database.Migrate {
			if err := repository.Migrate(ctx, pool); err != nil {
				return err
			}
		}
		checks["postgres"] = pool.Ping
		flightRepo = repository.NewFlightRepository(pool)
		bookingRepo = repository.NewBookingRepository(pool)
	default:
		log.Warn("using in-memory storage, data is lost on restart")
		flightRepo = repository.NewMemoryFlightRepository()
		bookingRepo = repository.NewMemoryBookingRepository()
	}

	var flightCache flights.FlightCache
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Search.FlightsCacheTTL(), cfg.Search.RoutesCacheTTL())
		defer redisCache.Close()

		if err := redisCache.Ping(ctx); err != nil {
			log.Warn("redis unavailable, continuing without a warm cache", "addr", cfg.Redis.Addr, "error", err)
		}
		checks["redis"] = redisCache.Ping
		flightCache = redisCache
	}

	var producer booking.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer kafkaProducer.Close()

		if err := kafkaProducer.CheckConnection(ctx); err != nil {
			log.Warn("kafka unavailable, booking events may be dropped", "brokers", cfg.Kafka.Brokers, "error", err)
		}
		producer = kafkaProducer
	}

	flightService := flights.NewFlightService(flightRepo, flightCache)
	bookingService := booking.NewBookingService(
		bookingRepo,
		flightRepo,
		producer,
		cfg.Kafka.BookingEventsTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithLogger(log),
	)

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(flightService, bookingService, api.RouterOptions{
		SwaggerDir: cfg.HTTP.SwaggerDir,
		Checks:     checks,
	})

	return bootstrap.Run(ctx, cfg, router)
}
