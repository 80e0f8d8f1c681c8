// cmd/portal/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/example/payment-portal/internal/config"
	"github.com/example/payment-portal/internal/grpcserver"
	"github.com/example/payment-portal/internal/session"
	"github.com/example/payment-portal/pkg/logging"
	m "github.com/example/payment-portal/pkg/metrics"
	"github.com/example/payment-portal/pkg/money"
	"github.com/example/payment-portal/services/portal/client"
	"github.com/example/payment-portal/services/portal/handlers"
	"github.com/example/payment-portal/services/portal/queue"
)

const serviceName = "portal"

func main() {
	cfg := config.Load(os.Getenv)
	log := logging.New(cfg.LogLevel)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var lookup session.RecipientLookup = client.NewRecipientClient(cfg.RecipientAPIs, cfg.LookupTimeout)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		lookup = client.NewCachedLookup(log, lookup, rdb, cfg.RecipientCacheTTL)
		log.Info("recipient cache enabled", "addr", cfg.RedisAddr)
	}

	formatter := money.NewFormatter(cfg.Locale)
	registry := session.NewRegistry(log, func() *session.Store {
		return session.NewStore(lookup,
			session.WithLogger(log),
			session.WithFormatter(formatter),
			session.WithRoutes(cfg.CallbackRoutes),
			session.WithMaxPaymentNumber(cfg.MaxPaymentNumber),
			session.WithDefaultTitle(cfg.DefaultTitle),
			session.WithLookupTimeout(cfg.LookupTimeout),
		)
	}, cfg.SessionTTL)
	go registry.Run(ctx, cfg.SweepInterval)

	var pending sync.WaitGroup
	deps := handlers.Deps{Sessions: registry, Log: log, Pending: &pending}
	if len(cfg.KafkaBrokers) > 0 {
		bus := queue.New(cfg.KafkaBrokers, cfg.KafkaResultTopic)
		defer bus.Close()
		deps.Bus = bus
		log.Info("completion events enabled", "topic", bus.Topic())
	}

	r := mux.NewRouter()
	r.Use(metricsMiddleware)

	// metrics & health
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":       true,
			"service":  serviceName,
			"sessions": registry.Len(),
			"ts":       time.Now().UTC(),
		})
	}).Methods(http.MethodGet)

	handlers.Register(r, deps)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      cors.AllowAll().Handler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var hc *grpcserver.Health
	if cfg.GRPCAddr != "" {
		hc = grpcserver.NewHealth()
		go serveGRPC(log, hc, cfg.GRPCAddr, stop)
	}

	go func() {
		log.Info("listening", "service", serviceName, "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	if hc != nil {
		hc.Drain()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "err", err)
	}
	if hc != nil {
		hc.Server.GracefulStop()
	}
	pending.Wait()
	log.Info("portal shutdown complete")
}

func serveGRPC(log *slog.Logger, hc *grpcserver.Health, addr string, stop context.CancelFunc) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Error("grpc listen", "addr", addr, "err", err)
		stop()
		return
	}
	log.Info("grpc health listening", "addr", addr)
	if err := hc.Server.Serve(lis); err != nil {
		log.Error("grpc server error", "err", err)
	}
}

/*************** Metrics middleware ***************/
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		statusLabel := "FAILED"
		if rec.status >= 200 && rec.status < 400 {
			statusLabel = "SUCCESS"
		}
		m.IncRequest(serviceName, statusLabel, r.Method)
		m.ObserveDuration(serviceName, statusLabel, time.Since(start).Seconds())
	})
}
