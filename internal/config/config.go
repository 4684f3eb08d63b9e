package config

import (
	"github.com/ccotek/cocoti-pool-flow/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Backend  BackendConfig  `mapstructure:"backend"`
	PayDunya PayDunyaConfig `mapstructure:"paydunya"`
	Database DatabaseConfig `mapstructure:"database"`
	Session  SessionConfig  `mapstructure:"session"`
	Media    MediaConfig    `mapstructure:"media"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// BackendConfig core API settings
type BackendConfig struct {
	BaseURL string `mapstructure:"base_url"` // e.g. https://api.cocoti.com
	Timeout int    `mapstructure:"timeout"`  // seconds
}

// PayDunyaConfig checkout provider settings
type PayDunyaConfig struct {
	ScriptURL       string `mapstructure:"script_url"`       // hosted checkout script, probed once
	CheckoutTimeout int    `mapstructure:"checkout_timeout"` // seconds to wait for an outcome
	Workers         int    `mapstructure:"workers"`          // event dispatch pool size
}

// DatabaseConfig token store database; empty host disables postgres
// and falls back to the in-memory store
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// SessionConfig wizard session lifecycle
type SessionConfig struct {
	TTLMinutes    int `mapstructure:"ttl_minutes"`
	SweepInterval int `mapstructure:"sweep_interval"` // seconds
}

// MediaConfig illustration upload settings
type MediaConfig struct {
	Provider            string `mapstructure:"provider"` // cloudinary or backend
	CloudinaryCloudName string `mapstructure:"cloudinary_cloud_name"`
	CloudinaryAPIKey    string `mapstructure:"cloudinary_api_key"`
	CloudinaryAPISecret string `mapstructure:"cloudinary_api_secret"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // stdout, file
	File   string `mapstructure:"file"`   // log file path when output is file
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/cocoti-pool-flow")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("backend.base_url", "http://localhost:8000")
	viper.SetDefault("backend.timeout", 30)
	viper.SetDefault("paydunya.script_url", "https://cdn.paydunya.com/checkout.js")
	viper.SetDefault("paydunya.checkout_timeout", 300)
	viper.SetDefault("paydunya.workers", 8)
	viper.SetDefault("database.host", "")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "cocoti_flow")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("session.ttl_minutes", 30)
	viper.SetDefault("session.sweep_interval", 60)
	viper.SetDefault("media.provider", "backend")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
