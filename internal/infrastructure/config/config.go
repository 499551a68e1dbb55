package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "clarion/internal/shared/config"
)

type Config struct {
	Server sharedConfig.ServerConfig `mapstructure:"server"`
	Store  sharedConfig.StoreConfig  `mapstructure:"store"`
	Logger sharedConfig.LoggerConfig `mapstructure:"logger"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables
func Load(env string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath("../../configs")

	viper.SetEnvPrefix("CLARION")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults plus env cover everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		viper.Set("server.mode", env)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	// Store defaults
	viper.SetDefault("store.driver", "file")
	viper.SetDefault("store.path", "./data/roles.json")
	viper.SetDefault("store.host", "localhost")
	viper.SetDefault("store.port", 3306)
	viper.SetDefault("store.username", "root")
	viper.SetDefault("store.password", "password")
	viper.SetDefault("store.database", "clarion_dev")
	viper.SetDefault("store.max_idle_conns", 10)
	viper.SetDefault("store.max_open_conns", 100)
	viper.SetDefault("store.conn_max_lifetime", 60)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")
}
