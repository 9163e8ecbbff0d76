package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "hr-service", cfg.App.Name)
	assert.Equal(t, 50053, cfg.Server.GRPCPort)
	assert.Equal(t, 8083, cfg.Server.HTTPPort)
	assert.Equal(t, 30*time.Second, cfg.Server.GRPCTimeout)
	assert.Equal(t, "hr_db", cfg.Database.Name)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 0, cfg.AuthRedis.DB)
	assert.Equal(t, EventDriverNone, cfg.Events.Driver)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Events.Kafka.Brokers)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address())
	assert.Contains(t, cfg.Database.ConnectionString(), "dbname=hr_db")
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
app:
  env: staging
database:
  host: db.internal
events:
  driver: rabbitmq
  rabbitmq:
    exchange: people.events
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("DATABASE_HOST", "db.override")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.App.Env)
	assert.Equal(t, "db.override", cfg.Database.Host)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, EventDriverRabbitMQ, cfg.Events.Driver)
	assert.Equal(t, "people.events", cfg.Events.RabbitMQ.Exchange)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	base, err := Load("")
	require.NoError(t, err)

	t.Run("unknown driver", func(t *testing.T) {
		cfg := *base
		cfg.Events.Driver = "nats"
		assert.ErrorContains(t, cfg.Validate(), "events.driver")
	})

	t.Run("kafka without brokers", func(t *testing.T) {
		cfg := *base
		cfg.Events.Driver = EventDriverKafka
		cfg.Events.Kafka.Brokers = nil
		assert.ErrorContains(t, cfg.Validate(), "brokers")
	})

	t.Run("production requires secret", func(t *testing.T) {
		cfg := *base
		cfg.App.Env = "production"
		assert.ErrorContains(t, cfg.Validate(), "access_token_secret")

		cfg.JWT.AccessTokenSecret = "s3cret"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("port clash", func(t *testing.T) {
		cfg := *base
		cfg.Server.HTTPPort = cfg.Server.GRPCPort
		assert.Error(t, cfg.Validate())
	})
}
