package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "auto", cfg.Email.Provider)
	assert.Equal(t, 587, cfg.Email.SMTPPort)
	assert.Equal(t, 10*time.Second, cfg.Email.Timeout)
	assert.False(t, cfg.Email.HasAPIKey())
	assert.False(t, cfg.Email.HasSMTPCredentials())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("EMAIL_API_KEY", "re_123")
	t.Setenv("EMAIL_USER", "mailer@example.com")
	t.Setenv("EMAIL_PASSWORD", "secret")
	t.Setenv("EMAIL_PROVIDER", " SMTP ")
	t.Setenv("EMAIL_TIMEOUT", "3s")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "smtp", cfg.Email.Provider)
	assert.Equal(t, 3*time.Second, cfg.Email.Timeout)
	assert.True(t, cfg.Email.HasAPIKey())
	assert.True(t, cfg.Email.HasSMTPCredentials())
}

func TestHasSMTPCredentialsNeedsBothHalves(t *testing.T) {
	assert.False(t, EmailConfig{Username: "user"}.HasSMTPCredentials())
	assert.False(t, EmailConfig{Password: "pw"}.HasSMTPCredentials())
	assert.True(t, EmailConfig{Username: "user", Password: "pw"}.HasSMTPCredentials())
}
