package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Werneck0live/pipeline-crm/internal/broker"
	"github.com/Werneck0live/pipeline-crm/internal/config"
	"github.com/Werneck0live/pipeline-crm/internal/handlers"
	"github.com/Werneck0live/pipeline-crm/internal/ws"
)

func main() {
	_ = godotenv.Load()
	wscfg := config.LoadWSConfig()

	_ = config.InitLogger(wscfg.LogLevel)
	log := slog.Default().With("svc", "ws")
	hub := ws.NewHub(log)
	go hub.Run()

	cons, err := broker.NewConsumer(wscfg.RabbitURI, wscfg.RabbitQueue, "ws-consumer", wscfg.ConsumerPrefetch)
	if err != nil {
		log.Error("rabbit_consumer_start_error", "err", err)
		os.Exit(1)
	}
	defer cons.Close()
	log.Info("rabbit_consumer_started", "queue", wscfg.RabbitQueue, "prefetch", wscfg.ConsumerPrefetch)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// rabbit -> hub, filtered per connection by partner
	go func() {
		err := cons.Run(ctx, func(d amqp.Delivery) { hub.BroadcastEvent(d.Body) })
		if errors.Is(err, broker.ErrDeliveriesClosed) {
			log.Warn("deliveries_channel_closed")
			stop()
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/ws", ws.Handler(hub, log))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	srv := &http.Server{
		Addr:              wscfg.Addr,
		Handler:           handlers.RequestLog(mux),
		ReadHeaderTimeout: wscfg.ReadHeaderTimeout,
	}

	go func() {
		log.Info("ws_listen", "addr", wscfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http_server_error", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), wscfg.ShutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("hub_stopping", "clients", hub.Count())
	hub.Stop()

	log.Info("stopped")
}
