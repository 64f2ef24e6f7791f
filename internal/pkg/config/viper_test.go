package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
app:
  name: otpgate
  server:
    cors: "http://a.test, http://b.test,"
modules:
  auth:
    challenge:
      ttl_minutes: 15
      max_attempts: 5
instrument:
  log_mask_fields:
    - password
    - otp
jwt:
  audiences: "web,cli"
  labels: "env:dev,team:auth"
`

func TestNewViperFromBytes(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "otpgate", cfg.GetString("app.name"))
	assert.Equal(t, 15*time.Minute, cfg.GetMinute("modules.auth.challenge.ttl_minutes"))
	assert.Equal(t, 5, cfg.GetInt("modules.auth.challenge.max_attempts"))
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.GetArray("app.server.cors"))
	assert.Equal(t, []string{"password", "otp"}, cfg.GetArray("instrument.log_mask_fields"))
	assert.Equal(t, []string{"web", "cli"}, cfg.GetArray("jwt.audiences"))
	assert.Equal(t, map[string]string{"env": "dev", "team": "auth"}, cfg.GetMap("jwt.labels"))
	assert.Empty(t, cfg.GetArray("missing.key"))
	assert.NoError(t, cfg.Close())
}

func TestNewViperFromBytes_RequiresType(t *testing.T) {
	_, err := NewViperFromBytes(" ", []byte(sample))
	assert.ErrorIs(t, err, ErrConfigTypeRequired)
}

func TestNewViper_EnvOverridesFile(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(sample), 0o600))
	t.Setenv("OTPGATE_APP_NAME", "from-env")

	// Act
	cfg, err := NewViper(file, WithEnvPrefix("OTPGATE"))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.GetString("app.name"))
	assert.Equal(t, 5, cfg.GetInt("modules.auth.challenge.max_attempts"))
}

func TestNewViperEnv_Defaults(t *testing.T) {
	t.Setenv("OTPGATE_CLIENT_SERVER_URL", "http://api.test")

	cfg := NewViperEnv(
		WithDefaults(map[string]any{"server_url": "http://localhost:5000", "cooldown_seconds": 60}),
		WithEnvPrefix("OTPGATE_CLIENT"),
	)

	assert.Equal(t, "http://api.test", cfg.GetString("server_url"))
	assert.Equal(t, time.Minute, cfg.GetSecond("cooldown_seconds"))

	cfg.Set("cooldown_seconds", 5)
	assert.Equal(t, 5*time.Second, cfg.GetSecond("cooldown_seconds"))
}

func TestWithPFlags_FlagBeatsDefault(t *testing.T) {
	// Arrange
	fs := pflag.NewFlagSet("client", pflag.ContinueOnError)
	fs.String("server", "http://localhost:5000", "")
	fs.Int("cooldown", 60, "")
	require.NoError(t, fs.Parse([]string{"--server", "http://api.test"}))

	// Act
	cfg := NewViperEnv(
		WithDefaults(map[string]any{"client.server_url": "http://default.test"}),
		WithPFlags(fs, map[string]string{
			"client.server_url":              "server",
			"client.resend_cooldown_seconds": "cooldown",
		}),
	)

	// Assert
	assert.Equal(t, "http://api.test", cfg.GetString("client.server_url"))
	assert.Equal(t, 60*time.Second, cfg.GetSecond("client.resend_cooldown_seconds"))
}
