package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/procura")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.StatementTimeout)
	assert.Equal(t, 100, cfg.OutboxBatchSize)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/procura")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv("DB_MAX_CONNS", "not-a-number")
	t.Setenv("OUTBOX_POLL_INTERVAL", "250ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 25, cfg.DBMaxConns)
	assert.Equal(t, 250*time.Millisecond, cfg.OutboxPollInterval)
}

func TestLoad_NonPositiveDurationsFallBack(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/procura")
	t.Setenv("JWT_SECRET", "secret")

	for _, v := range []string{"0s", "-5s", "0"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("OUTBOX_POLL_INTERVAL", v)
			t.Setenv("IDEMPOTENCY_TTL", v)

			cfg, err := Load()
			require.NoError(t, err)

			assert.Equal(t, 5*time.Second, cfg.OutboxPollInterval)
			assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
		})
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}
