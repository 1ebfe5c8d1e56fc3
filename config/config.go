package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderS3    = "s3"
	ProviderMinio = "minio"
)

type Config struct {
	ApiURL           string
	AccessKey        string
	SecretKey        string
	BucketName       string
	Region           string
	Provider         string
	UsePathStyle     bool
	Recursive        bool
	OperationTimeout time.Duration
	LogLevel         string
}

// Load reads the configuration. It does not validate it; commands call
// Validate before they need a store, so usage output works with any settings.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env file not found, using environment variables only")
	}

	apiURL := getEnv("API_URL", "")

	config := &Config{
		ApiURL:           apiURL,
		AccessKey:        getEnv("ACCESS_KEY", ""),
		SecretKey:        getEnv("SECRET_KEY", ""),
		BucketName:       getEnv("BUCKET_NAME", ""),
		Region:           getEnv("REGION", ""),
		Provider:         strings.ToLower(getEnv("STORAGE_PROVIDER", ProviderS3)),
		UsePathStyle:     getEnvBool("USE_PATH_STYLE", apiURL != ""),
		Recursive:        getEnvBool("RECURSIVE", false),
		OperationTimeout: time.Duration(getEnvInt("OPERATION_TIMEOUT", 0)) * time.Second,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}

	return config, nil
}

// Validate reports settings that cannot produce a working store.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderS3:
	case ProviderMinio:
		if c.ApiURL == "" {
			return fmt.Errorf("API_URL must be set when STORAGE_PROVIDER is %q", ProviderMinio)
		}
	default:
		return fmt.Errorf("unknown STORAGE_PROVIDER %q (want %q or %q)", c.Provider, ProviderS3, ProviderMinio)
	}
	if c.OperationTimeout < 0 {
		return fmt.Errorf("OPERATION_TIMEOUT must not be negative")
	}
	return nil
}

// WithCredentials returns a copy of the config carrying the given key pair.
func (c *Config) WithCredentials(accessKey, secretKey string) *Config {
	out := *c
	out.AccessKey = accessKey
	out.SecretKey = secretKey
	return &out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvInt(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
		return i
	}
	return defaultValue
}
