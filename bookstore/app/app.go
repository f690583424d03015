package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Astemirdum/bookstore/bookstore/config"
	"github.com/Astemirdum/bookstore/bookstore/internal/handler"
	"github.com/Astemirdum/bookstore/bookstore/internal/repository"
	"github.com/Astemirdum/bookstore/bookstore/internal/server"
	"github.com/Astemirdum/bookstore/bookstore/internal/service"
	"github.com/Astemirdum/bookstore/bookstore/internal/storage"
	"github.com/Astemirdum/bookstore/bookstore/migrations"
	"github.com/Astemirdum/bookstore/pkg/auth"
	"github.com/Astemirdum/bookstore/pkg/kafka"
	"github.com/Astemirdum/bookstore/pkg/logger"
	"github.com/Astemirdum/bookstore/pkg/postgres"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "bookstore")
	defer log.Sync() //nolint:errcheck

	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		log.Fatal("repo", zap.Error(err))
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err = rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("redis unavailable, catalog reads go to postgres", zap.Error(err))
		}
		cancel()
		repo = repository.WithCache(repo, repository.NewGuardedCache(repository.NewRedisCache(rdb), cfg.Redis.Breaker), cfg.Redis.TTL, log)
	}

	var (
		events   service.EventPublisher = kafka.NopPublisher{}
		producer *kafka.Publisher
	)
	if cfg.Kafka.Enabled() {
		p, err := kafka.NewAsyncProducer(cfg.Kafka)
		if err != nil {
			log.Fatal("kafka.NewAsyncProducer", zap.Error(err))
		}
		producer = kafka.NewPublisher(p, kafka.ActivityTopic, log)
		events = producer
	}

	images, err := storage.NewImageStore(cfg.Storage.Dir, cfg.Storage.MaxUploadSize, log)
	if err != nil {
		log.Fatal("storage.NewImageStore", zap.Error(err))
	}
	tokens := auth.NewTokenManager(cfg.Auth)

	h := handler.New(handler.Services{
		Auth:       service.NewAuthService(repo.Users, tokens, events, log),
		Books:      service.NewBookService(repo, images, events, log),
		Authors:    service.NewAuthorService(repo.Authors, log),
		Categories: service.NewCategoryService(repo.Categories, log),
		Cart:       service.NewCartService(repo, events, log),
	}, tokens, log,
		handler.WithDevelopment(cfg.IsDevelopment()),
		handler.WithStaticDir(cfg.Storage.Dir),
		handler.WithMaxUploadSize(cfg.Storage.MaxUploadSize),
	)

	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	if producer != nil {
		if err = producer.Close(); err != nil {
			log.Error("kafka producer close", zap.Error(err))
		}
	}
	if rdb != nil {
		if err = rdb.Close(); err != nil {
			log.Error("redis close", zap.Error(err))
		}
	}
	db.Close()
	log.Info("Graceful shutdown finished")
}
