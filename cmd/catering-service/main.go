package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-catering/internal/auth"
	"ms-catering/internal/catering/badge"
	"ms-catering/internal/catering/catering_api"
	catering_db "ms-catering/internal/catering/db"
	rediswrap "ms-catering/internal/catering/redis"
	"ms-catering/internal/catering/service"
	"ms-catering/internal/config"
	"ms-catering/internal/database/migrations"
	"ms-catering/internal/kafka"
	"ms-catering/internal/logger"
)

func connectPostgres(cfg *config.Config, log *logger.Logger) *bun.DB {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			log.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	log.Info("DATABASE", "PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func connectRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))
	return client
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Catering Service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	bunDB := connectPostgres(cfg, log)
	defer bunDB.Close()

	if cfg.Catering.AutoMigrate {
		runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
		if err := runner.RunMigrations(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
		}
		log.Info("DATABASE", "Schema migrations applied")
	}

	redisClient := connectRedis(ctx, cfg, log)
	defer redisClient.Close()

	var publisher service.KafkaPublisher
	if cfg.Kafka.Enabled {
		requiredTopics := []string{
			cfg.Kafka.Topics.MealValidated,
			cfg.Kafka.Topics.SlotsReconciled,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			log.Info("KAFKA", "Required topics ensured successfully")
		}

		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.MealValidated, cfg.Kafka.Topics.SlotsReconciled)
		defer producer.Close()
		publisher = producer
		log.Info("KAFKA", "Kafka producer initialized successfully")
	} else {
		log.Warn("KAFKA", "Kafka disabled, validation events will not be streamed")
	}

	statsCache := rediswrap.NewStatsCache(redisClient)
	statsCache.TTL = cfg.Catering.StatsCacheTTL

	cateringService := service.NewCateringService(&catering_db.DB{Bun: bunDB}, publisher, statsCache, log)

	if cfg.Catering.BadgeSecret == "" {
		log.Warn("CONFIG", "BADGE_SECRET_KEY not set, badge encryption uses an empty secret")
	}
	badges := badge.NewGenerator(cfg.Catering.BadgeSecret)

	handler := catering_api.NewHandler(cateringService, badges, log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware())

		r.Route("/catering", func(r chi.Router) {
			r.Get("/volunteers/{volunteerID}/meals", handler.ListVolunteerMeals)
			r.Get("/artists/{artistID}/meals", handler.ListArtistMeals)
			r.Patch("/selections/{kind}/{selectionID}", handler.UpdateSelection)
			r.Get("/entitlements/{kind}/{id}/badge", handler.EntitlementBadge)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireStaff)

				r.Get("/events/{eventID}/meals", handler.ListEventSlots)
				r.Patch("/meals/{mealID}", handler.UpdateSlot)
				r.Post("/validate", handler.ValidateEntitlement)
				r.Post("/validate/badge", handler.ValidateBadge)
				r.Delete("/validate/{kind}/{id}", handler.UnvalidateEntitlement)
				r.Get("/meals/{mealID}/stats", handler.MealStats)
				r.Get("/events/{eventID}/report/{date}", handler.DayReport)
			})
		})
	})
	log.Info("ROUTER", "Catering routes registered under /catering")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Catering Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "Catering Service shutdown complete")
	}
}
