package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go-scan-induction/models"

	"github.com/redis/go-redis/v9"
)

// Should be safe to use in concurrency
type VerifiedRecordStorage interface {
	// Store the verified induction record for the given session.
	// Should not return an error when a record already exists,
	// it should just overwrite in that case.
	StoreRecord(sessionID string, record models.InductionRecord) error

	// Should retrieve the record for the given session
	// and return an error in any case where it fails to do so.
	RetrieveRecord(sessionID string) (models.InductionRecord, error)

	// Should remove the record and return an error if it fails to do so.
	// The record not being there should also be considered an error.
	RemoveRecord(sessionID string) error
}

// ------------------------------------------------------------------------------

type InMemoryRecordStorage struct {
	records map[string]models.InductionRecord
	mutex   sync.Mutex
}

func NewInMemoryRecordStorage() *InMemoryRecordStorage {
	return &InMemoryRecordStorage{
		records: make(map[string]models.InductionRecord),
	}
}

func (s *InMemoryRecordStorage) StoreRecord(sessionID string, record models.InductionRecord) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.records[sessionID] = record
	return nil
}

func (s *InMemoryRecordStorage) RetrieveRecord(sessionID string) (models.InductionRecord, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if record, ok := s.records[sessionID]; ok {
		return record, nil
	}
	return models.InductionRecord{}, fmt.Errorf("failed to find record for %s", sessionID)
}

func (s *InMemoryRecordStorage) RemoveRecord(sessionID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.records[sessionID]; ok {
		delete(s.records, sessionID)
		return nil
	}
	return fmt.Errorf("failed to remove record for %s, because it wasn't there", sessionID)
}

// ------------------------------------------------------------------------------

type RedisRecordStorage struct {
	client    *redis.Client
	namespace string
}

func NewRedisRecordStorage(client *redis.Client, namespace string) *RedisRecordStorage {
	return &RedisRecordStorage{client: client, namespace: namespace}
}

func createRecordKey(namespace, sessionID string) string {
	return fmt.Sprintf("%s:record:%s", namespace, sessionID)
}

const RecordTimeout time.Duration = 24 * time.Hour

func (s *RedisRecordStorage) StoreRecord(sessionID string, record models.InductionRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal induction record: %w", err)
	}

	ctx := context.Background()
	return s.client.Set(ctx, createRecordKey(s.namespace, sessionID), payload, RecordTimeout).Err()
}

func (s *RedisRecordStorage) RetrieveRecord(sessionID string) (models.InductionRecord, error) {
	ctx := context.Background()
	payload, err := s.client.Get(ctx, createRecordKey(s.namespace, sessionID)).Result()
	if err != nil {
		return models.InductionRecord{}, err
	}

	var record models.InductionRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return models.InductionRecord{}, fmt.Errorf("failed to unmarshal induction record: %w", err)
	}
	return record, nil
}

func (s *RedisRecordStorage) RemoveRecord(sessionID string) error {
	ctx := context.Background()
	return s.client.Del(ctx, createRecordKey(s.namespace, sessionID)).Err()
}
