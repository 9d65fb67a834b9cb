package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"ms-raffle/internal/config"
	"ms-raffle/internal/draw"
	"ms-raffle/internal/draw/api"
	"ms-raffle/internal/draw/db"
	"ms-raffle/internal/draw/kafka"
	rediswrap "ms-raffle/internal/draw/redis"
	"ms-raffle/internal/logger"
	"ms-raffle/internal/raffle"
)

func main() {
	ctx := context.Background()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Close()

	// --- PostgreSQL ---
	connector := pgdriver.NewConnector(pgdriver.WithDSN(cfg.Database.DSN()))
	sqldb := sql.OpenDB(connector)
	defer sqldb.Close()

	if err := sqldb.Ping(); err != nil {
		log.Fatal("DATABASE", "Failed to connect to Postgres: "+err.Error())
	}
	bunDB := bun.NewDB(sqldb, pgdialect.New())

	if err := db.Migrate(ctx, bunDB); err != nil {
		log.Fatal("DATABASE", "Migration failed: "+err.Error())
	}
	log.Info("DATABASE", "Connected and migrated")

	// --- Redis ---
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("REDIS", "Failed to connect to Redis: "+err.Error())
	}
	log.Info("REDIS", "Connected to "+cfg.Redis.Addr)

	// --- Kafka ---
	var producer draw.KafkaPublisher
	if cfg.Kafka.Enabled {
		kafkaProd := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaProd.Close()
		producer = kafkaProd
		log.Info("KAFKA", "Producer ready on topic "+cfg.Kafka.Topic)
	} else {
		log.Warn("KAFKA", "Disabled; draw events will not be published")
	}

	// --- Draw service ---
	service := draw.NewService(
		&db.DB{Bun: bunDB},
		rediswrap.NewRedis(redisClient),
		producer,
		log,
		raffle.DrawPolicy{AllowRepeatWinners: cfg.Draw.AllowRepeatWinners},
		raffle.NewWheelMapper(cfg.Draw.WheelSegmentThreshold),
	)
	handler := &api.Handler{DrawService: service}

	// --- Router ---
	r := chi.NewRouter()
	r.Post("/api/v1/raffles/{raffleId}/draw", handler.RunDraw)
	r.Get("/api/v1/raffles/{raffleId}/winners", handler.GetWinners)
	r.Get("/api/v1/raffles/{raffleId}/wheel", handler.GetWheel)
	r.Get("/api/v1/raffles/{raffleId}/replay", handler.GetReplay)
	r.Post("/api/v1/raffles/{raffleId}/verify", handler.VerifyDraw)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("API", "Raffle service running on "+cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("API", "HTTP server error: "+err.Error())
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("API", "Shutdown signal received")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal("API", "Server forced to shutdown: "+err.Error())
	}
	log.Info("API", "Server exited gracefully")
}
