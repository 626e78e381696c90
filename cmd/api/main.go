package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Werneck0live/pipeline-crm/internal/admin"
	"github.com/Werneck0live/pipeline-crm/internal/broker"
	"github.com/Werneck0live/pipeline-crm/internal/config"
	"github.com/Werneck0live/pipeline-crm/internal/db"
	"github.com/Werneck0live/pipeline-crm/internal/handlers"
	"github.com/Werneck0live/pipeline-crm/internal/repository"
)

type store interface {
	handlers.PartnerDirectory
	handlers.ClientStore
}

type mongoStore struct {
	*repository.PartnerRepository
	*repository.ClientRepository
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	_ = config.InitLogger(cfg.LogLevel)
	slog.Info("starting", "port", cfg.Port, "store", cfg.StoreDriver, "mongo_db", cfg.MongoDB)

	// admin job (one-off)
	task := flag.String("task", "", "admin task: seed")
	flag.Parse()

	st, closeStore, err := openStore(cfg)
	if err != nil {
		slog.Error("store_open_error", "err", err)
		os.Exit(1)
	}
	defer closeStore()

	if *task != "" {
		switch *task {
		case "seed":
			if _, err := admin.SeedPartners(context.Background(), st, slog.Default()); err != nil {
				slog.Error("seed_failed", "err", err)
				os.Exit(1)
			}
			slog.Info("seed_done")
			return
		default:
			slog.Error("unknown_admin_task", "task", *task)
			os.Exit(2)
		}
	}

	h := handlers.New(st, st, nil)
	h.Timeout = cfg.RequestTimeout
	if cfg.RabbitURI != "" {
		pub, err := broker.NewPublisher(cfg.RabbitURI, cfg.RabbitQueue)
		if err != nil {
			slog.Error("rabbitmq_connect_error", "err", err)
			os.Exit(1)
		}
		defer pub.Close()
		h.Pub = pub
		slog.Info("events_enabled", "queue", cfg.RabbitQueue)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.RequestLog(handlers.CORS(handlers.LimitBody(cfg.MaxBodyBytes, h.Routes()))),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server_error", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("graceful_shutdown_error", "err", err)
	}
	slog.Info("stopped")
}

func openStore(cfg *config.Config) (store, func(), error) {
	if cfg.StoreDriver == config.StoreMemory {
		slog.Warn("memory_store_in_use")
		return repository.NewMemory(), func() {}, nil
	}

	client, err := db.NewMongoClient(cfg.MongoURI)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() { _ = client.Disconnect(context.Background()) }

	database := client.Database(cfg.MongoDB)
	partners := repository.NewPartnerRepository(database)
	clients := repository.NewClientRepository(database, partners)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()
	if err := partners.EnsureIndexes(ctx); err != nil {
		closeFn()
		return nil, nil, err
	}
	if err := clients.EnsureIndexes(ctx); err != nil {
		closeFn()
		return nil, nil, err
	}
	return mongoStore{partners, clients}, closeFn, nil
}
