// cmd/callback-relay/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/example/payment-portal/internal/config"
	"github.com/example/payment-portal/pkg/logging"
	"github.com/example/payment-portal/services/callback"
)

func main() {
	cfg := config.Load(os.Getenv)
	log := logging.New(cfg.LogLevel)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	if len(cfg.KafkaBrokers) == 0 {
		log.Error("KAFKA_BROKERS is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaResultTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer r.Close()

	// metrics only; the relay has no API
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server error", "err", err)
		}
	}()

	log.Info("metrics listening", "addr", cfg.MetricsAddr)
	relay := callback.NewRelay(log, r, callback.NewWebhook(cfg.CallbackTimeout), cfg.CallbackAttempts)
	log.Info("consuming", "topic", cfg.KafkaResultTopic, "group", cfg.KafkaGroupID)
	if err := relay.Run(ctx); err != nil {
		log.Error("relay stopped", "err", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("callback relay shutdown complete")
}
