package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("NOTIFY_KAFKA_BROKERS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, "TKT", cfg.Tickets.KeyPrefix)
	assert.Equal(t, 5, cfg.Tickets.MaxAttachments)
	assert.Equal(t, "blob", cfg.Storage.Driver)
	assert.Empty(t, cfg.Notification.KafkaBrokers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("TICKET_MAX_ATTACHMENTS", "2")
	t.Setenv("TICKET_DEFAULT_PAGE_SIZE", "not-a-number")
	t.Setenv("NOTIFY_KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("STORAGE_DRIVER", "MINIO")
	t.Setenv("STORAGE_PUBLIC_BASE_URL", "https://cdn.example.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 2, cfg.Tickets.MaxAttachments)
	assert.Equal(t, 20, cfg.Tickets.DefaultPageSize)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Notification.KafkaBrokers)
	assert.Equal(t, "minio", cfg.Storage.Driver)
	assert.Equal(t, "https://cdn.example.com", cfg.Storage.PublicBaseURL)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("REDIS_DB", "0")
	t.Setenv("STORAGE_DRIVER", "ftp")
	_, err = Load()
	require.Error(t, err)
}
