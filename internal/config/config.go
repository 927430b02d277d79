package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// DefaultMaxUploadBytes is the upload size ceiling applied when the
// config does not set one (5 MiB).
const DefaultMaxUploadBytes = 5 * 1024 * 1024

// Config holds the configuration for the application.
type Config struct {
	DB struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"db"`
	Server struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`
	Upload struct {
		MaxBytes int64 `mapstructure:"max_bytes"`
	} `mapstructure:"upload"`
	Distribution struct {
		Strategy string `mapstructure:"strategy"`
	} `mapstructure:"distribution"`
}

// LoadConfig loads the configuration from a file and the environment.
// An empty path uses the default search locations.
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}
	viper.AutomaticEnv()

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", 5432)
	viper.SetDefault("db.sslmode", "disable")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("upload.max_bytes", DefaultMaxUploadBytes)
	viper.SetDefault("distribution.strategy", "round_robin")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if config.Upload.MaxBytes <= 0 {
		config.Upload.MaxBytes = DefaultMaxUploadBytes
	}

	return &config, nil
}

// ConnString builds the pgx connection string for the configured database.
func (c *Config) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Name, c.DB.SSLMode,
	)
}
