package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("CHAT_STORE", "")
	t.Setenv("SHETKARI_STATE_DIR", t.TempDir())
	t.Setenv("SHETKARI_BACKEND_URL", "")
	t.Setenv("SHETKARI_MOCK_DELAY_MS", "")
	t.Setenv("ARK_MODEL", "")
	t.Setenv("SPEECH_APP_ID", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "http://localhost:8080", cfg.Client.BackendURL)
	assert.Equal(t, 1500*time.Millisecond, cfg.Client.MockDelay)
	assert.Equal(t, "hi-IN", cfg.Client.RecognitionLocale)
	assert.False(t, cfg.AI.Enabled())
	assert.False(t, cfg.Speech.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9090")
	t.Setenv("CHAT_STORE", "SQLite")
	t.Setenv("SHETKARI_STATE_DIR", t.TempDir())
	t.Setenv("SHETKARI_BACKEND_URL", "https://advisor.example.org/")
	t.Setenv("SHETKARI_MOCK", "true")
	t.Setenv("SHETKARI_MOCK_DELAY_MS", "0")
	t.Setenv("ARK_MODEL", "doubao-pro")
	t.Setenv("ARK_API_KEY", "key")
	t.Setenv("SPEECH_APP_ID", "app")
	t.Setenv("SPEECH_ACCESS_TOKEN", "token")
	t.Setenv("SPEECH_TIMEOUT", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "https://advisor.example.org", cfg.Client.BackendURL)
	assert.True(t, cfg.Client.MockMode)
	assert.Zero(t, cfg.Client.MockDelay)
	assert.True(t, cfg.AI.Enabled())
	assert.True(t, cfg.Speech.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Speech.Model().Timeout)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("SHETKARI_STATE_DIR", t.TempDir())

	t.Run("store driver", func(t *testing.T) {
		t.Setenv("CHAT_STORE", "mongo")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("port with spaces", func(t *testing.T) {
		t.Setenv("PORT", "80 80")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("mock flag", func(t *testing.T) {
		t.Setenv("SHETKARI_MOCK", "sometimes")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("negative delay", func(t *testing.T) {
		t.Setenv("SHETKARI_MOCK_DELAY_MS", "-1")
		_, err := Load()
		require.Error(t, err)
	})
}
