package config

import (
	"linecheck/internal/logger"

	"github.com/spf13/viper"
)

type Config struct {
	GeneralVersion      string `mapstructure:"GENERAL_VERSION"`
	Environment         string `mapstructure:"ENVIRONMENT"`
	ServerPort          int    `mapstructure:"SERVER_PORT"`
	CacheAddress        string `mapstructure:"CACHE_ADDRESS"`
	CachePort           int    `mapstructure:"CACHE_PORT"`
	CacheReset          int    `mapstructure:"CACHE_RESET"`
	CorsAllowOrigins    string `mapstructure:"CORS_ALLOW_ORIGINS"`
	OpsAPIURL           string `mapstructure:"OPS_API_URL"`
	OpsAPIToken         string `mapstructure:"OPS_API_TOKEN"`
	PollIntervalSeconds int    `mapstructure:"POLL_INTERVAL_SECONDS"`
	SchedulerEnabled    bool   `mapstructure:"SCHEDULER_ENABLED"`
}

var ConfigInstance Config

func New() (Config, error) {
	log := logger.New("config").Function("New")
	log.Info("Initializing config")

	// Enable automatic environment variable reading first
	viper.AutomaticEnv()

	viper.SetDefault("CACHE_RESET", -1)
	viper.SetDefault("POLL_INTERVAL_SECONDS", 60)
	viper.SetDefault("SCHEDULER_ENABLED", true)

	// Bind environment variables to config keys
	envVars := []string{
		"GENERAL_VERSION", "ENVIRONMENT", "SERVER_PORT",
		"CACHE_ADDRESS", "CACHE_PORT", "CACHE_RESET",
		"CORS_ALLOW_ORIGINS",
		"OPS_API_URL", "OPS_API_TOKEN",
		"POLL_INTERVAL_SECONDS", "SCHEDULER_ENABLED",
	}

	for _, env := range envVars {
		if err := viper.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	// Check if key environment variables are already set
	envVarsSet := viper.IsSet("SERVER_PORT") && viper.IsSet("OPS_API_URL")

	if envVarsSet {
		log.Info("Environment variables detected, skipping file loading")
	} else {
		log.Info("Environment variables not found, attempting to load from files")

		// Load base .env file
		viper.SetConfigFile(".env")
		viper.SetConfigType("env")

		if err := viper.ReadInConfig(); err != nil {
			log.Warn("Could not find .env file", "error", err)
		} else {
			log.Info("Loaded .env file")
		}

		// Load .env.local overrides if it exists
		viper.SetConfigFile(".env.local")
		if err := viper.MergeInConfig(); err != nil {
			log.Debug("No .env.local file found", "error", err)
		} else {
			log.Info("Loaded .env.local overrides")
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, log.Err("Fatal error: could not unmarshal config", err)
	}

	log.Info("Successfully initialized config", "environment", config.Environment)
	if err := validateConfig(config, log); err != nil {
		return Config{}, err
	}
	return ConfigInstance, nil
}

func GetConfig() Config {
	return ConfigInstance
}

func validateConfig(config Config, log logger.Logger) error {
	if config.ServerPort <= 0 {
		return log.Error(
			"Fatal error: invalid server port",
			"port", config.ServerPort,
		)
	}

	if config.OpsAPIURL == "" {
		return log.Error("Fatal error: OPS_API_URL is required")
	}

	if config.PollIntervalSeconds <= 0 {
		return log.Error(
			"Fatal error: invalid poll interval",
			"seconds", config.PollIntervalSeconds,
		)
	}

	ConfigInstance = config
	return nil
}
