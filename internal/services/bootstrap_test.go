package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casalgastos/internal/core"
	"casalgastos/internal/memory"
)

func TestBootstrap_ProvisionsOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	b := NewBootstrapper(store, time.Second, nil)

	first, err := b.Bootstrap(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", first.ID)
	assert.NotEmpty(t, first.FamilyID)

	second, err := b.Bootstrap(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	cats, err := store.ListCategories(ctx, first.FamilyID)
	require.NoError(t, err)
	assert.Len(t, cats, len(core.DefaultCategories()))
}

func TestBootstrap_NoSession(t *testing.T) {
	b := NewBootstrapper(memory.NewStore(), time.Second, nil)
	_, err := b.Bootstrap(context.Background(), "  ")
	assert.ErrorIs(t, err, core.ErrSessionMissing)
}

type brokenProvisioner struct {
	*memory.Store
	err error
}

func (b brokenProvisioner) EnsureProfileAndFamily(context.Context, string) error { return b.err }

func TestBootstrap_ProvisioningFailure(t *testing.T) {
	boom := errors.New("db locked")
	b := NewBootstrapper(brokenProvisioner{Store: memory.NewStore(), err: boom}, time.Second, nil)

	_, err := b.Bootstrap(context.Background(), "user-1")
	var pe *core.ProvisioningError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "user-1", pe.UserID)
	assert.ErrorIs(t, err, boom)
}

func TestBootstrap_ProfileMissingAfterProvisioning(t *testing.T) {
	b := NewBootstrapper(brokenProvisioner{Store: memory.NewStore()}, time.Second, nil)

	_, err := b.Bootstrap(context.Background(), "user-1")
	var pe *core.ProvisioningError
	require.True(t, errors.As(err, &pe))
	assert.NotErrorIs(t, err, core.ErrNotFound)
}
