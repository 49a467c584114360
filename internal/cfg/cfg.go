// Package cfg loads service configuration from a YAML file (CONFIG_FILE)
// or environment variables, with environment values taking precedence.
package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Settings struct {
	Port      int
	ModelPath string

	// Feature store selection: URL wins over DataPath wins over Redis.
	FeatureStoreURL string
	DataPath        string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	StoreTimeout    time.Duration
}

type ConfigFile struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	ML struct {
		ModelPath string `yaml:"modelPath"`
	} `yaml:"ml"`

	FeatureStore struct {
		URL           string `yaml:"url"`
		DataPath      string `yaml:"dataPath"`
		RedisAddr     string `yaml:"redisAddr"`
		RedisPassword string `yaml:"redisPassword"`
		RedisDB       int    `yaml:"redisDB"`
		Timeout       string `yaml:"timeout"`
	} `yaml:"featureStore"`
}

func Load() (Settings, error) {
	// Try to load from YAML file first
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromYAML(configPath)
	}

	// Fallback to environment variables
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	storeTimeout, err := time.ParseDuration(config.FeatureStore.Timeout)
	if err != nil {
		storeTimeout = 5 * time.Second
	}

	settings := Settings{
		Port:            getIntFromEnvOrConfig("PORT", config.Server.Port),
		ModelPath:       getEnvOrDefault("MODEL_PATH", config.ML.ModelPath),
		FeatureStoreURL: getEnvOrDefault("FEATURE_STORE_URL", config.FeatureStore.URL),
		DataPath:        getEnvOrDefault("DATA_PATH", config.FeatureStore.DataPath),
		RedisAddr:       getEnvOrDefault("REDIS_ADDR", config.FeatureStore.RedisAddr),
		RedisPassword:   getEnvOrDefault("REDIS_PASSWORD", config.FeatureStore.RedisPassword),
		RedisDB:         getIntFromEnvOrConfig("REDIS_DB", config.FeatureStore.RedisDB),
		StoreTimeout:    storeTimeout,
	}
	applyDefaults(&settings)

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		Port:            getIntOrDefault("PORT", 8080),
		ModelPath:       getEnvOrDefault("MODEL_PATH", "artifacts/models/forest.json"),
		FeatureStoreURL: os.Getenv("FEATURE_STORE_URL"), // optional
		DataPath:        os.Getenv("DATA_PATH"),         // optional
		RedisAddr:       getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         getIntOrDefault("REDIS_DB", 0),
		StoreTimeout:    getDurationOrDefault("STORE_TIMEOUT", 5*time.Second),
	}
	applyDefaults(&settings)

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func applyDefaults(s *Settings) {
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ModelPath == "" {
		s.ModelPath = "artifacts/models/forest.json"
	}
	if s.RedisAddr == "" && s.DataPath == "" && s.FeatureStoreURL == "" {
		s.RedisAddr = "localhost:6379"
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	return configValue
}

// validateSettings performs validation of configuration values
func validateSettings(settings *Settings) error {
	if settings.Port < 1024 || settings.Port > 65535 {
		return fmt.Errorf("port must be between 1024 and 65535, got %d", settings.Port)
	}
	if settings.ModelPath == "" {
		return fmt.Errorf("model path cannot be empty")
	}
	if settings.FeatureStoreURL == "" && settings.DataPath == "" && settings.RedisAddr == "" {
		return fmt.Errorf("a feature store must be configured (FEATURE_STORE_URL, DATA_PATH, or REDIS_ADDR)")
	}
	if settings.StoreTimeout < time.Second || settings.StoreTimeout > time.Minute {
		return fmt.Errorf("store timeout must be between 1s and 1m, got %v", settings.StoreTimeout)
	}
	if settings.RedisDB < 0 || settings.RedisDB > 15 {
		return fmt.Errorf("redis DB must be between 0 and 15, got %d", settings.RedisDB)
	}
	return nil
}
