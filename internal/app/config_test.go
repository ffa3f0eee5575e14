package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, 15*time.Minute, cfg.Auth.JWT.TTL)
	require.Equal(t, 24, cfg.Invites.TokenBytes)
	require.Equal(t, "/invites/accept/", cfg.Invites.AcceptPath)
	require.False(t, cfg.Invites.ResendAcceptanceNotice)
	require.False(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, 10*time.Second, cfg.Email.SMTP.Timeout)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
}

func TestLoadConfigReadsYAML(t *testing.T) {
	dir := t.TempDir()
	contents := []byte(`
server:
  port: 9100
  external_url: https://crew.example.com
auth:
  jwt:
    secret: test-secret
    access_token_ttl: 1h
invites:
  token_bytes: 32
  resend_acceptance_notice: true
email:
  smtp:
    enabled: true
    host: smtp.example.com
    from: crew@example.com
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), contents, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, "https://crew.example.com", cfg.Server.ExternalURL)
	require.Equal(t, time.Hour, cfg.Auth.JWT.TTL)
	require.Equal(t, 32, cfg.Invites.TokenBytes)
	require.True(t, cfg.Invites.ResendAcceptanceNotice)
	require.True(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, "smtp.example.com", cfg.Email.SMTP.Host)
	require.NoError(t, cfg.Validate())
}

func TestValidateRequiresJWTSecret(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Error(t, cfg.Validate())

	cfg.Auth.JWT.Secret = "secret"
	require.NoError(t, cfg.Validate())
}

func TestSMTPSettingsConversion(t *testing.T) {
	cfg := EmailConfig{SMTP: SMTPConfig{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    465,
		From:    "crew@example.com",
		UseTLS:  true,
		Timeout: 5 * time.Second,
	}}

	settings := cfg.SMTPSettings()
	require.True(t, settings.Enabled)
	require.Equal(t, "smtp.example.com", settings.Host)
	require.Equal(t, 465, settings.Port)
	require.Equal(t, "crew@example.com", settings.From)
	require.Equal(t, 5*time.Second, settings.Timeout)
}
