package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "storefront-events", cfg.KafkaTopic)
	assert.Equal(t, "https://api.paystack.co", cfg.GatewayBaseURL)
	assert.Empty(t, cfg.AssistantBaseURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092,broker-2:9092")
	t.Setenv("GATEWAY_SECRET_KEY", "sk_test_abc")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "sk_test_abc", cfg.GatewaySecretKey)
}

func TestValidateJWT(t *testing.T) {
	cfg := &Config{JWTSecret: strings.Repeat("a", 32)}
	require.NoError(t, cfg.ValidateJWT())

	cfg.JWTSecret = "short"
	assert.ErrorIs(t, cfg.ValidateJWT(), ErrMissingJWTSecret)

	cfg.JWTSecret = ""
	assert.ErrorIs(t, cfg.ValidateJWT(), ErrMissingJWTSecret)
}
