package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	os.Setenv("botToken", "test-token")
	os.Setenv("PORT", "3001")
	os.Setenv("commandsDir", "/srv/bot/commands")
	defer func() {
		os.Unsetenv("botToken")
		os.Unsetenv("PORT")
		os.Unsetenv("commandsDir")
	}()

	resetForTesting()

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if config.BotToken != "test-token" {
		t.Errorf("BotToken = %v, want %v", config.BotToken, "test-token")
	}

	if config.Port != "3001" {
		t.Errorf("Port = %v, want %v", config.Port, "3001")
	}

	if config.CommandsDir != "/srv/bot/commands" {
		t.Errorf("CommandsDir = %v, want %v", config.CommandsDir, "/srv/bot/commands")
	}
}

func TestGetEnv(t *testing.T) {
	os.Setenv("TEST_VAR", "test-value")
	defer os.Unsetenv("TEST_VAR")

	if got := getEnv("TEST_VAR", "default"); got != "test-value" {
		t.Errorf("getEnv() = %v, want %v", got, "test-value")
	}

	if got := getEnv("NON_EXISTENT_VAR", "default"); got != "default" {
		t.Errorf("getEnv() = %v, want %v", got, "default")
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		fallback bool
		want     bool
	}{
		{"unset uses default", "", true, true},
		{"false", "false", true, false},
		{"one", "1", false, true},
		{"garbage uses default", "maybe", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value == "" {
				os.Unsetenv("TEST_BOOL")
			} else {
				os.Setenv("TEST_BOOL", tt.value)
			}
			defer os.Unsetenv("TEST_BOOL")

			if got := getEnvBool("TEST_BOOL", tt.fallback); got != tt.want {
				t.Errorf("getEnvBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsProd(t *testing.T) {
	resetForTesting()
	os.Setenv("enviroment", "prod")
	config, _ := Load()

	if !config.IsProd() {
		t.Error("IsProd() should return true when environment is 'prod'")
	}

	resetForTesting()
	os.Setenv("enviroment", "dev")
	config, _ = Load()

	if config.IsProd() {
		t.Error("IsProd() should return false when environment is not 'prod'")
	}

	os.Unsetenv("enviroment")
}

func TestGet(t *testing.T) {
	resetForTesting()

	config := Get()
	if config == nil {
		t.Fatal("Get() returned nil")
	}

	config2 := Get()
	if config != config2 {
		t.Error("Get() should return the same config on subsequent calls")
	}
}

func TestDefaultValues(t *testing.T) {
	for _, key := range []string{"commandsDir", "localesDir", "localeAliases", "mongodbUrl", "dbName", "MQTT_Host", "MQTT_Port", "PORT", "enviroment", "reloadStopIfFail"} {
		os.Unsetenv(key)
	}

	resetForTesting()
	config, _ := Load()

	if config.CommandsDir != "commands" {
		t.Errorf("CommandsDir default = %v, want %v", config.CommandsDir, "commands")
	}

	if config.LocalesDir != "locales" {
		t.Errorf("LocalesDir default = %v, want %v", config.LocalesDir, "locales")
	}

	if config.LocaleAliases != "locales/aliases.toml" {
		t.Errorf("LocaleAliases default = %v, want %v", config.LocaleAliases, "locales/aliases.toml")
	}

	if !config.ReloadStopIfFail {
		t.Error("ReloadStopIfFail default should be true")
	}

	if config.HasDatabase() {
		t.Error("HasDatabase() should be false without mongodbUrl")
	}

	if config.HasMQTT() {
		t.Error("HasMQTT() should be false without MQTT_Host")
	}

	if config.MQTTPort != "1883" {
		t.Errorf("MQTTPort default = %v, want %v", config.MQTTPort, "1883")
	}

	if config.Environment != "dev" {
		t.Errorf("Environment default = %v, want %v", config.Environment, "dev")
	}
}
