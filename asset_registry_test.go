package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInMemoryAssetRegistry(t *testing.T) {
	ctx := context.Background()

	t.Run("unregistered identifier is free", func(t *testing.T) {
		registry := NewInMemoryAssetRegistry()
		taken, err := registry.IsIdentifierTaken(ctx, "NT123", "")
		require.NoError(t, err)
		require.False(t, taken)
	})

	t.Run("registered identifier is taken", func(t *testing.T) {
		registry := NewInMemoryAssetRegistry()
		require.NoError(t, registry.Register(ctx, "NT123", "asset-1"))

		taken, err := registry.IsIdentifierTaken(ctx, "NT123", "")
		require.NoError(t, err)
		require.True(t, taken)
	})

	t.Run("owner is exempt during re-induction", func(t *testing.T) {
		registry := NewInMemoryAssetRegistry()
		require.NoError(t, registry.Register(ctx, "NT123", "asset-1"))

		taken, err := registry.IsIdentifierTaken(ctx, "NT123", "asset-1")
		require.NoError(t, err)
		require.False(t, taken)

		taken, err = registry.IsIdentifierTaken(ctx, "NT123", "asset-2")
		require.NoError(t, err)
		require.True(t, taken)
	})

	t.Run("register overwrites silently", func(t *testing.T) {
		registry := NewInMemoryAssetRegistry()
		require.NoError(t, registry.Register(ctx, "NT123", "asset-1"))
		require.NoError(t, registry.Register(ctx, "NT123", "asset-2"))

		taken, err := registry.IsIdentifierTaken(ctx, "NT123", "asset-2")
		require.NoError(t, err)
		require.False(t, taken)
	})
}
