package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// AssetRegistry is the persistence-layer view of which identifiers are
// already assigned. It backs the uniqueness oracle consumed by the
// first-scan validator and records newly verified identifiers.
type AssetRegistry interface {
	// IsIdentifierTaken reports whether candidate is assigned to an
	// asset other than excludingID.
	IsIdentifierTaken(ctx context.Context, candidate string, excludingID string) (bool, error)

	// Register assigns an identifier to an asset. Overwrites silently:
	// uniqueness is enforced before induction, not here.
	Register(ctx context.Context, identifier string, assetID string) error
}

// ------------------------------------------------------------------------------

type InMemoryAssetRegistry struct {
	assets map[string]string
	mutex  sync.Mutex
}

func NewInMemoryAssetRegistry() *InMemoryAssetRegistry {
	return &InMemoryAssetRegistry{
		assets: make(map[string]string),
	}
}

func (r *InMemoryAssetRegistry) IsIdentifierTaken(ctx context.Context, candidate string, excludingID string) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	owner, ok := r.assets[candidate]
	if !ok {
		return false, nil
	}
	if excludingID != "" && owner == excludingID {
		return false, nil
	}
	return true, nil
}

func (r *InMemoryAssetRegistry) Register(ctx context.Context, identifier string, assetID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.assets[identifier] = assetID
	return nil
}

// ------------------------------------------------------------------------------

type RedisAssetRegistry struct {
	client    *redis.Client
	namespace string
}

func NewRedisAssetRegistry(client *redis.Client, namespace string) *RedisAssetRegistry {
	return &RedisAssetRegistry{client: client, namespace: namespace}
}

func createAssetKey(namespace, identifier string) string {
	return fmt.Sprintf("%s:asset:%s", namespace, identifier)
}

func (r *RedisAssetRegistry) IsIdentifierTaken(ctx context.Context, candidate string, excludingID string) (bool, error) {
	owner, err := r.client.Get(ctx, createAssetKey(r.namespace, candidate)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if excludingID != "" && owner == excludingID {
		return false, nil
	}
	return true, nil
}

func (r *RedisAssetRegistry) Register(ctx context.Context, identifier string, assetID string) error {
	return r.client.Set(ctx, createAssetKey(r.namespace, identifier), assetID, 0).Err()
}
