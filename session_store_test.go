package main

import (
	"testing"
	"time"

	"go-scan-induction/models"

	"github.com/stretchr/testify/require"
)

func testRecord(identifier string) models.InductionRecord {
	return models.InductionRecord{
		Identifier: identifier,
		Kind:       "truck",
		VerifiedAt: time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestInMemoryRecordStorage(t *testing.T) {
	t.Run("store and retrieve", func(t *testing.T) {
		storage := NewInMemoryRecordStorage()
		require.NoError(t, storage.StoreRecord("s1", testRecord("NT123")))

		got, err := storage.RetrieveRecord("s1")
		require.NoError(t, err)
		require.Equal(t, "NT123", got.Identifier)
		require.Equal(t, "truck", got.Kind)
	})

	t.Run("store overwrites silently", func(t *testing.T) {
		storage := NewInMemoryRecordStorage()
		require.NoError(t, storage.StoreRecord("s1", testRecord("NT123")))
		require.NoError(t, storage.StoreRecord("s1", testRecord("NT456")))

		got, err := storage.RetrieveRecord("s1")
		require.NoError(t, err)
		require.Equal(t, "NT456", got.Identifier)
	})

	t.Run("retrieve missing is an error", func(t *testing.T) {
		storage := NewInMemoryRecordStorage()
		_, err := storage.RetrieveRecord("nope")
		require.Error(t, err)
	})

	t.Run("remove", func(t *testing.T) {
		storage := NewInMemoryRecordStorage()
		require.NoError(t, storage.StoreRecord("s1", testRecord("NT123")))
		require.NoError(t, storage.RemoveRecord("s1"))

		_, err := storage.RetrieveRecord("s1")
		require.Error(t, err)
	})

	t.Run("remove missing is an error", func(t *testing.T) {
		storage := NewInMemoryRecordStorage()
		require.Error(t, storage.RemoveRecord("nope"))
	})
}
