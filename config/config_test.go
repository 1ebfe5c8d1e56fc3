package config

import (
	"testing"
	"time"
)

var configKeys = []string{
	"API_URL",
	"ACCESS_KEY",
	"SECRET_KEY",
	"BUCKET_NAME",
	"REGION",
	"STORAGE_PROVIDER",
	"USE_PATH_STYLE",
	"RECURSIVE",
	"OPERATION_TIMEOUT",
	"LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_VAR", "test_value")

	result := getEnv("TEST_VAR", "default_value")
	if result != "test_value" {
		t.Errorf("getEnv() = %s, want %s", result, "test_value")
	}

	result = getEnv("NON_EXISTENT_VAR", "default_value")
	if result != "default_value" {
		t.Errorf("getEnv() = %s, want %s", result, "default_value")
	}

	t.Setenv("EMPTY_VAR", "")

	result = getEnv("EMPTY_VAR", "default_value")
	if result != "default_value" {
		t.Errorf("getEnv() = %s, want %s", result, "default_value")
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"", true, true},
		{"", false, false},
		{"true", false, true},
		{"YES", false, true},
		{"1", false, true},
		{"off", true, false},
		{"0", true, false},
		{"maybe", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("BOOL_VAR", tt.value)
			if got := getEnvBool("BOOL_VAR", tt.def); got != tt.want {
				t.Errorf("getEnvBool(%q, %v) = %v, want %v", tt.value, tt.def, got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("INT_VAR", " 42 ")
	if got := getEnvInt("INT_VAR", 7); got != 42 {
		t.Errorf("getEnvInt() = %d, want 42", got)
	}

	t.Setenv("INT_VAR", "forty-two")
	if got := getEnvInt("INT_VAR", 7); got != 7 {
		t.Errorf("getEnvInt() with invalid value = %d, want 7", got)
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)

	testVars := map[string]string{
		"API_URL":           "https://test-api.example.com",
		"ACCESS_KEY":        "test-access-key",
		"SECRET_KEY":        "test-secret-key",
		"BUCKET_NAME":       "test-bucket",
		"REGION":            "test-region",
		"RECURSIVE":         "true",
		"OPERATION_TIMEOUT": "30",
	}

	for key, value := range testVars {
		t.Setenv(key, value)
	}

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.ApiURL != testVars["API_URL"] {
		t.Errorf("config.ApiURL = %s, want %s", config.ApiURL, testVars["API_URL"])
	}

	if config.AccessKey != testVars["ACCESS_KEY"] {
		t.Errorf("config.AccessKey = %s, want %s", config.AccessKey, testVars["ACCESS_KEY"])
	}

	if config.SecretKey != testVars["SECRET_KEY"] {
		t.Errorf("config.SecretKey = %s, want %s", config.SecretKey, testVars["SECRET_KEY"])
	}

	if config.BucketName != testVars["BUCKET_NAME"] {
		t.Errorf("config.BucketName = %s, want %s", config.BucketName, testVars["BUCKET_NAME"])
	}

	if config.Region != testVars["REGION"] {
		t.Errorf("config.Region = %s, want %s", config.Region, testVars["REGION"])
	}

	if config.Provider != ProviderS3 {
		t.Errorf("config.Provider = %s, want %s", config.Provider, ProviderS3)
	}

	if !config.UsePathStyle {
		t.Errorf("config.UsePathStyle = false, want true when API_URL is set")
	}

	if !config.Recursive {
		t.Errorf("config.Recursive = false, want true")
	}

	if config.OperationTimeout != 30*time.Second {
		t.Errorf("config.OperationTimeout = %s, want 30s", config.OperationTimeout)
	}

	clearEnv(t)

	config, err = Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.ApiURL != "" {
		t.Errorf("config.ApiURL = %s, want %s", config.ApiURL, "")
	}

	if config.UsePathStyle {
		t.Errorf("config.UsePathStyle = true, want false without API_URL")
	}

	if config.Recursive {
		t.Errorf("config.Recursive = true, want false")
	}

	if config.OperationTimeout != 0 {
		t.Errorf("config.OperationTimeout = %s, want 0", config.OperationTimeout)
	}

	if config.LogLevel != "info" {
		t.Errorf("config.LogLevel = %s, want info", config.LogLevel)
	}
}

func TestValidateRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"Unknown provider", map[string]string{"STORAGE_PROVIDER": "ftp"}},
		{"Minio without endpoint", map[string]string{"STORAGE_PROVIDER": "minio"}},
		{"Negative timeout", map[string]string{"OPERATION_TIMEOUT": "-5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			config, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v, want settings loaded unvalidated", err)
			}
			if err := config.Validate(); err == nil {
				t.Errorf("Validate() error = nil, want error")
			}
		})
	}
}

func TestWithCredentials(t *testing.T) {
	base := &Config{AccessKey: "env-key", SecretKey: "env-secret", Region: "eu-west-1"}

	got := base.WithCredentials("arg-key", "arg-secret")

	if got.AccessKey != "arg-key" || got.SecretKey != "arg-secret" {
		t.Errorf("WithCredentials() = %s/%s, want arg-key/arg-secret", got.AccessKey, got.SecretKey)
	}
	if got.Region != "eu-west-1" {
		t.Errorf("WithCredentials() dropped region: %s", got.Region)
	}
	if base.AccessKey != "env-key" {
		t.Errorf("WithCredentials() mutated the receiver")
	}
}
