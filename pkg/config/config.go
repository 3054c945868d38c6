// Package config provides configuration management for the command loader.
// It loads environment variables and makes them available throughout the application.
package config

import (
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	BotToken   string
	DevGuildID string

	// Commands
	CommandsDir      string
	ReloadStopIfFail bool

	// Locales
	LocalesDir    string
	LocaleAliases string

	// MongoDB
	MongoDBURL string
	DBName     string

	// MQTT
	MQTTHost     string
	MQTTPort     string
	MQTTUser     string
	MQTTPassword string

	// Web Server
	Port string

	// Environment
	Environment string

	// Webhooks
	ErrorWebhook string
	LogsWebhook  string
}

var (
	Version   = "Dev-Local"
	BuildTime = "Hoy"
)

// cfg holds the global configuration instance
var (
	cfg     *Config
	cfgOnce sync.Once
)

// resetForTesting resets the configuration for testing purposes.
// This function should only be called from test code.
func resetForTesting() {
	cfg = nil
	cfgOnce = sync.Once{}
}

// loadConfig performs the actual configuration loading
func loadConfig() {
	// Load .env file if it exists (ignoring error if it doesn't)
	_ = godotenv.Load()

	cfg = &Config{
		// Discord
		BotToken:   getEnv("botToken", ""),
		DevGuildID: getEnv("devGuildId", ""),

		// Commands
		CommandsDir:      getEnv("commandsDir", "commands"),
		ReloadStopIfFail: getEnvBool("reloadStopIfFail", true),

		// Locales
		LocalesDir:    getEnv("localesDir", "locales"),
		LocaleAliases: getEnv("localeAliases", "locales/aliases.toml"),

		// MongoDB
		MongoDBURL: getEnv("mongodbUrl", ""),
		DBName:     getEnv("dbName", "PancyCommands"),

		// MQTT
		MQTTHost:     getEnv("MQTT_Host", ""),
		MQTTPort:     getEnv("MQTT_Port", "1883"),
		MQTTUser:     getEnv("MQTT_User", ""),
		MQTTPassword: getEnv("MQTT_Password", ""),

		// Web Server
		Port: getEnv("PORT", "3000"),

		// Environment
		Environment: getEnv("enviroment", "dev"),

		// Webhooks
		ErrorWebhook: getEnv("errorWebhook", ""),
		LogsWebhook:  getEnv("logsWebhook", ""),
	}
}

// Load initializes the configuration from environment variables
func Load() (*Config, error) {
	cfgOnce.Do(loadConfig)
	return cfg, nil
}

// Get returns the current configuration
func Get() *Config {
	cfgOnce.Do(loadConfig)
	return cfg
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool parses a boolean environment variable, falling back to the default
// when the variable is unset or unparsable.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// IsProd returns true if the environment is production
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}

// HasDatabase reports whether a MongoDB URL was configured
func (c *Config) HasDatabase() bool {
	return c.MongoDBURL != ""
}

// HasMQTT reports whether an MQTT broker was configured
func (c *Config) HasMQTT() bool {
	return c.MQTTHost != ""
}
