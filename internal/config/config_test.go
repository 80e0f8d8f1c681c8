package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/payment-portal/internal/session"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	c := Load(envMap(nil))

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.NotEqual(t, c.HTTPAddr, c.MetricsAddr, "portal and relay must not share a port")
	assert.Equal(t, "", c.GRPCAddr)
	assert.Equal(t, 10*time.Second, c.LookupTimeout)
	assert.Equal(t, time.Hour, c.SessionTTL)
	assert.Equal(t, 1, c.MaxPaymentNumber)
	assert.Equal(t, "Beyond Academy", c.DefaultTitle)
	assert.Nil(t, c.KafkaBrokers)
	assert.Equal(t, "callback-relay", c.KafkaGroupID)
	assert.Equal(t, 3, c.CallbackAttempts)
	assert.Contains(t, c.RecipientAPIs, "prod")
	assert.Contains(t, c.RecipientAPIs, "demo")
	assert.Equal(t, session.DefaultCallbackRoutes, c.CallbackRoutes)
}

func TestLoadOverrides(t *testing.T) {
	c := Load(envMap(map[string]string{
		"HTTP_ADDR":          ":9000",
		"METRICS_ADDR":       ":9100",
		"LOOKUP_TIMEOUT":     "3s",
		"SESSION_TTL":        "90m",
		"MAX_PAYMENT_NUMBER": "3",
		"KAFKA_BROKERS":      "k1:9092, k2:9092,",
		"RECIPIENT_API_DEMO": "http://localhost:7000",
		"CALLBACK_URL_2":     "https://hooks.example/contact",
		"CALLBACK_ATTEMPTS":  "5",
	}))

	assert.Equal(t, ":9000", c.HTTPAddr)
	assert.Equal(t, ":9100", c.MetricsAddr)
	assert.Equal(t, 3*time.Second, c.LookupTimeout)
	assert.Equal(t, 90*time.Minute, c.SessionTTL)
	assert.Equal(t, 3, c.MaxPaymentNumber)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.KafkaBrokers)
	assert.Equal(t, "http://localhost:7000", c.RecipientAPIs["demo"])
	assert.Equal(t, session.CallbackRoute{EntityType: "Contact", URL: "https://hooks.example/contact"}, c.CallbackRoutes[2])
	assert.Equal(t, session.DefaultCallbackRoutes[1], c.CallbackRoutes[1])
	assert.Equal(t, 5, c.CallbackAttempts)
}

func TestLoadRejectsBadValues(t *testing.T) {
	c := Load(envMap(map[string]string{
		"LOOKUP_TIMEOUT":     "soon",
		"MAX_PAYMENT_NUMBER": "0",
	}))

	assert.Equal(t, 10*time.Second, c.LookupTimeout)
	assert.Equal(t, 1, c.MaxPaymentNumber)
}
