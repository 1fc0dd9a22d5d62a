package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds service configuration.
type Config struct {
	ServerName        string
	DatabaseURL       string
	ServerAddr        string
	FederationScheme  string
	FederationTimeout time.Duration
	UseMemoryStore    bool
}

// Load reads configuration from environment.
func Load() (*Config, error) {
	serverName := os.Getenv("SERVER_NAME")
	if serverName == "" {
		return nil, fmt.Errorf("SERVER_NAME is required")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		user := getenv("POSTGRES_USER", "fedroom")
		pass := getenv("POSTGRES_PASSWORD", "fedroom_pass")
		db := getenv("POSTGRES_DB", "fedroom")
		host := getenv("POSTGRES_HOST", "localhost")
		port := getenv("POSTGRES_PORT", "5432")
		sslmode := getenv("DATABASE_SSLMODE", "disable")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, pass, host, port, db, sslmode)
	}
	addr := getenv("SERVER_ADDR", "0.0.0.0:8080")
	scheme := getenv("FEDERATION_SCHEME", "https")
	timeout := parseDuration(getenv("FEDERATION_TIMEOUT", "30s"), 30*time.Second)
	useMemory := parseBool(getenv("USE_MEMORY_STORE", "false"), false)

	return &Config{
		ServerName:        serverName,
		DatabaseURL:       dsn,
		ServerAddr:        addr,
		FederationScheme:  scheme,
		FederationTimeout: timeout,
		UseMemoryStore:    useMemory,
	}, nil
}

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func parseDuration(val string, def time.Duration) time.Duration {
	if val == "" {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return def
	}
	return d
}

func parseBool(val string, def bool) bool {
	if val == "" {
		return def
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return def
	}
	return b
}
