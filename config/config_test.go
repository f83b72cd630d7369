package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hotel")
	t.Setenv("JWT_SECRET", "jwt")
	t.Setenv("PROCESSOR_KEY_ID", "rzp_test_key")
	t.Setenv("PROCESSOR_SECRET_KEY", "secret")
	t.Setenv("PROCESSOR_WEBHOOK_SECRET", "whsec")
}

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		setRequired(t)
		t.Setenv("PORT", "")
		t.Setenv("PROCESSOR_TIMEOUT", "")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "8081", cfg.Port)
		assert.Equal(t, 15*time.Second, cfg.ProcessorTimeout)
		assert.Equal(t, "whsec", cfg.ProcessorWebhookSecret)
		assert.False(t, cfg.MailEnabled())
	})

	t.Run("Overrides", func(t *testing.T) {
		setRequired(t)
		t.Setenv("PORT", "9000")
		t.Setenv("PROCESSOR_TIMEOUT", "3s")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "9000", cfg.Port)
		assert.Equal(t, 3*time.Second, cfg.ProcessorTimeout)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	})

	t.Run("MissingSecrets", func(t *testing.T) {
		setRequired(t)
		t.Setenv("PROCESSOR_WEBHOOK_SECRET", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PROCESSOR_WEBHOOK_SECRET")
	})
}
