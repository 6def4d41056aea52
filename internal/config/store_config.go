package config

import (
	"fmt"
	"github.com/spf13/viper"
	"time"
)

type storeBackend string

const (
	BackendMemory storeBackend = "memory"
	BackendSQLite storeBackend = "sqlite"
	BackendRedis  storeBackend = "redis"
)

type StoreConfig struct {
	Backend          storeBackend  `mapstructure:"backend"`
	ConnectionString string        `mapstructure:"connection_string"`
	RedisURL         string        `mapstructure:"redis_url"`
	KeyPrefix        string        `mapstructure:"key_prefix"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
}

func (config *StoreConfig) setDefaults() {
	viper.SetDefault("store.backend", string(BackendSQLite))
	viper.SetDefault("store.connection_string", "./data/agent.db")
	viper.SetDefault("store.key_prefix", "devhunt:")
	viper.SetDefault("store.cache_ttl", time.Minute)
}

func (config *StoreConfig) validate() error {
	switch config.Backend {
	case BackendMemory:
		return nil
	case BackendSQLite:
		if config.ConnectionString == "" {
			return fmt.Errorf("missing variable: connection_string")
		}
		return nil
	case BackendRedis:
		if config.RedisURL == "" {
			return fmt.Errorf("missing variable: redis_url")
		}
		return nil
	default:
		return fmt.Errorf("unknown store backend: %q", config.Backend)
	}
}

func (config *StoreConfig) bindEnvironmentVariables() error {
	return bindAll(map[string]string{
		"store.backend":           "STORE_BACKEND",
		"store.connection_string": "DB_CONNECTION_STRING",
		"store.redis_url":         "REDIS_URL",
	})
}
