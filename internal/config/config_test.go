package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("CLIENT_URL", "https://client.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, BrokerLocal, cfg.EventBroker)
	assert.InDelta(t, 0.10, cfg.TaxRate, 1e-9)
	assert.Equal(t, 72*time.Hour, cfg.NotificationTTL)
	assert.Equal(t, time.Hour, cfg.ReservationLead)
	assert.Equal(t, []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"https://client.example",
		"https://a.example",
		"https://b.example",
	}, cfg.AllowedOrigins)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsUnknownBroker(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("EVENT_BROKER", "kafka")
	_, err := Load()
	require.ErrorContains(t, err, "EVENT_BROKER")
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("NOTIFICATION_TTL", "soon")
	_, err := Load()
	require.ErrorContains(t, err, "NOTIFICATION_TTL")
}
