// Package config reads the portal's settings from the environment.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/example/payment-portal/internal/session"
)

type Config struct {
	HTTPAddr    string
	MetricsAddr string
	GRPCAddr    string
	LogLevel    string

	RecipientAPIs     map[string]string
	LookupTimeout     time.Duration
	RedisAddr         string
	RecipientCacheTTL time.Duration

	KafkaBrokers     []string
	KafkaResultTopic string
	KafkaGroupID     string

	CallbackTimeout  time.Duration
	CallbackAttempts int

	SessionTTL    time.Duration
	SweepInterval time.Duration

	DefaultTitle     string
	MaxPaymentNumber int
	Locale           string
	CallbackRoutes   map[int]session.CallbackRoute
}

// Load reads the environment through getenv, which is os.Getenv in production.
func Load(getenv func(string) string) Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	env := func(k, d string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return d
	}

	routes := make(map[int]session.CallbackRoute, len(session.DefaultCallbackRoutes))
	for n, r := range session.DefaultCallbackRoutes {
		r.URL = env("CALLBACK_URL_"+cast.ToString(n), r.URL)
		routes[n] = r
	}

	return Config{
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9091"),
		GRPCAddr:    env("GRPC_ADDR", ""),
		LogLevel:    env("LOG_LEVEL", "info"),

		RecipientAPIs: map[string]string{
			"prod": env("RECIPIENT_API_PROD", "https://payment.flywire.com/v3"),
			"demo": env("RECIPIENT_API_DEMO", "https://payment.demo.flywire.com/v3"),
		},
		LookupTimeout:     duration(env("LOOKUP_TIMEOUT", "10s"), session.DefaultLookupTimeout),
		RedisAddr:         env("REDIS_ADDR", ""),
		RecipientCacheTTL: duration(env("RECIPIENT_CACHE_TTL", "10m"), 10*time.Minute),

		KafkaBrokers:     splitList(env("KAFKA_BROKERS", "")),
		KafkaResultTopic: env("KAFKA_RESULT_TOPIC", "payment.completed"),
		KafkaGroupID:     env("KAFKA_GROUP_ID", "callback-relay"),

		CallbackTimeout:  duration(env("CALLBACK_TIMEOUT", "10s"), 10*time.Second),
		CallbackAttempts: positiveInt(env("CALLBACK_ATTEMPTS", ""), 3),

		SessionTTL:    duration(env("SESSION_TTL", "1h"), time.Hour),
		SweepInterval: duration(env("SWEEP_INTERVAL", "1m"), time.Minute),

		DefaultTitle:     env("DEFAULT_TITLE", session.DefaultTitle),
		MaxPaymentNumber: positiveInt(env("MAX_PAYMENT_NUMBER", ""), session.DefaultMaxPaymentNumber),
		Locale:           env("LOCALE", "en"),
		CallbackRoutes:   routes,
	}
}

func duration(v string, d time.Duration) time.Duration {
	out, err := cast.ToDurationE(v)
	if err != nil || out <= 0 {
		return d
	}
	return out
}

func positiveInt(v string, d int) int {
	n, err := cast.ToIntE(v)
	if err != nil || n < 1 {
		return d
	}
	return n
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
