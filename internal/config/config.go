package config

import (
	"os"
	"time"
)

type Config struct {
	DataPath      string
	ListenAddr    string
	AuthUser      string
	AuthPass      string
	AuthFile      string
	DBBusyTimeout time.Duration
	DBLockTimeout time.Duration
}

func Load() Config {
	initEnvFile()
	cfg := Config{
		DataPath:   envOr("NOTES_DATA_PATH", "."),
		ListenAddr: envOr("NOTES_LISTEN_ADDR", "127.0.0.1:8087"),
		AuthUser:   os.Getenv("NOTES_AUTH_USER"),
		AuthPass:   os.Getenv("NOTES_AUTH_PASS"),
		AuthFile:   os.Getenv("NOTES_AUTH_FILE"),
	}
	cfg.DBBusyTimeout = parseDurationOr("NOTES_DB_BUSY_TIMEOUT", 5*time.Second)
	cfg.DBLockTimeout = parseDurationOr("NOTES_DB_LOCK_TIMEOUT", 2*time.Second)
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
