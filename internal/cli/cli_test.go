package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casalgastos/internal/adapters"
	"casalgastos/internal/config"
	applog "casalgastos/internal/log"
)

func TestBuildBackendMemory(t *testing.T) {
	cfg := config.Load()
	cfg.DataBackend = "memory"
	cfg.AMQPURL = ""

	b, err := BuildBackend(context.Background(), cfg, applog.Discard())
	require.NoError(t, err)
	defer b.Close()

	_, publishing := b.Backend.(*adapters.PublishingBackend)
	assert.False(t, publishing)
	assert.NoError(t, b.Ping(context.Background()))
}

func TestBuildBackendRejectsUnknownType(t *testing.T) {
	cfg := config.Load()
	cfg.DataBackend = "redis"

	_, err := BuildBackend(context.Background(), cfg, applog.Discard())
	assert.Error(t, err)
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("AUTH_JWT_SECRET", "short")
	_, err := LoadAndValidateConfig()
	assert.ErrorContains(t, err, "AUTH_JWT_SECRET")

	t.Setenv("AUTH_JWT_SECRET", "a-secret-long-enough")
	cfg, err := LoadAndValidateConfig()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.DataBackend)
}

func TestBackendCloseOrder(t *testing.T) {
	var order []int
	b := &Backend{closers: []func() error{
		func() error { order = append(order, 1); return nil },
		func() error { order = append(order, 2); return nil },
	}}
	require.NoError(t, b.Close())
	assert.Equal(t, []int{2, 1}, order)
}
