package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	log "go-scan-induction/logging"
	redis "go-scan-induction/redis"

	"go-scan-induction/document/sadl"
)

type Config struct {
	ServerConfig ServerConfig `json:"server_config"`

	LogLevel  string `json:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty"`

	SadlServiceUrl        string   `json:"sadl_service_url,omitempty"`
	FacilityPrefixes      []string `json:"facility_prefixes,omitempty"`
	ReceiptPrivateKeyPath string   `json:"receipt_private_key_path,omitempty"`
	ReceiptIssuer         string   `json:"receipt_issuer,omitempty"`

	StorageType         string                    `json:"storage_type"`
	RedisConfig         redis.RedisConfig         `json:"redis_config,omitempty"`
	RedisSentinelConfig redis.RedisSentinelConfig `json:"redis_sentinel_config,omitempty"`
}

func main() {
	configPath := flag.String("config", "", "Path for the config.json to use")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "please provide a config path using the --config flag")
		os.Exit(1)
	}

	config, err := readConfigFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read config file: %v\n", err)
		os.Exit(1)
	}

	log.InitLoggerWithFormat(config.LogLevel, config.LogFormat)
	logger := log.GetLogger()

	logger.Info("using config", "path", *configPath)
	logger.Info("hosting on", "host", config.ServerConfig.Host, "port", config.ServerConfig.Port)

	recordStorage, assetRegistry, err := createStorage(&config)
	if err != nil {
		logger.Error("failed to instantiate storage", "error", err)
		os.Exit(1)
	}

	var receiptCreator ReceiptCreator
	if config.ReceiptPrivateKeyPath != "" {
		receiptCreator, err = NewRsaReceiptCreator(config.ReceiptPrivateKeyPath, config.ReceiptIssuer)
		if err != nil {
			logger.Error("failed to instantiate receipt creator", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("no receipt private key configured, verified records will not be signed")
	}

	var decryptor sadl.Decryptor
	if config.SadlServiceUrl != "" {
		client := sadl.NewClient(config.SadlServiceUrl)
		if err := client.HealthCheck(); err != nil {
			logger.Warn("SADL decrypt service unreachable at startup", "error", err)
		}
		decryptor = client
	} else {
		logger.Warn("no SADL service configured, encrypted driver licences cannot be decoded")
	}

	serverState := ServerState{
		recordStorage:    recordStorage,
		assetRegistry:    assetRegistry,
		receiptCreator:   receiptCreator,
		decryptor:        decryptor,
		facilityPrefixes: config.FacilityPrefixes,
		sessions:         newSessionRegistry(),
	}

	server, err := NewServer(&serverState, config.ServerConfig)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	err = server.ListenAndServe()
	if err != nil {
		logger.Error("failed to listen and serve", "error", err)
		os.Exit(1)
	}
}

func readConfigFile(path string) (Config, error) {
	configBytes, err := os.ReadFile(path)

	if err != nil {
		return Config{}, err
	}

	var config Config
	err = json.Unmarshal(configBytes, &config)

	if err != nil {
		return Config{}, err
	}

	return config, nil
}

func createStorage(config *Config) (VerifiedRecordStorage, AssetRegistry, error) {
	if config.StorageType == "redis" {
		client, err := redis.NewRedisClient(&config.RedisConfig)
		if err != nil {
			return nil, nil, err
		}
		namespace := config.RedisConfig.Namespace
		return NewRedisRecordStorage(client, namespace), NewRedisAssetRegistry(client, namespace), nil
	}
	if config.StorageType == "redis_sentinel" {
		client, err := redis.NewRedisSentinelClient(&config.RedisSentinelConfig)
		if err != nil {
			return nil, nil, err
		}
		namespace := config.RedisSentinelConfig.Namespace
		return NewRedisRecordStorage(client, namespace), NewRedisAssetRegistry(client, namespace), nil
	}
	if config.StorageType == "memory" || config.StorageType == "" {
		return NewInMemoryRecordStorage(), NewInMemoryAssetRegistry(), nil
	}
	return nil, nil, fmt.Errorf("%v is not a valid storage type", config.StorageType)
}
