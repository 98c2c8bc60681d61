package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Password  string `json:"password,omitempty"`
	Namespace string `json:"namespace"`
}

type RedisSentinelConfig struct {
	SentinelHost     string `json:"sentinel_host"`
	SentinelPort     int    `json:"sentinel_port"`
	Password         string `json:"password,omitempty"`
	SentinelUsername string `json:"sentinel_username,omitempty"`
	MasterName       string `json:"master_name"`
	Namespace        string `json:"namespace"`
}

// NewRedisClient connects to a single redis instance and pings it
// to make sure the connection is usable before returning.
func NewRedisClient(config *RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
	})

	if err := ping(client); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// NewRedisSentinelClient connects through a sentinel setup.
func NewRedisSentinelClient(config *RedisSentinelConfig) (*redis.Client, error) {
	client := redis.NewFailoverClient(&redis.FailoverOptions{
		MasterName:       config.MasterName,
		SentinelAddrs:    []string{fmt.Sprintf("%s:%d", config.SentinelHost, config.SentinelPort)},
		SentinelUsername: config.SentinelUsername,
		Password:         config.Password,
	})

	if err := ping(client); err != nil {
		return nil, fmt.Errorf("failed to connect to redis sentinel: %w", err)
	}
	return client, nil
}

func ping(client *redis.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return client.Ping(ctx).Err()
}
