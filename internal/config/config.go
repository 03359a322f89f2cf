package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port         string
	AllowOrigins string
	DBDriver     string // "sqlite" or "postgres"
	DBPath       string // sqlite database file
	DemoUserID   uint   // fallback identity when X-User-Id is missing/malformed; 0 disables the fallback
	MaxUploadMB  int64
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" { return v }
	return def
}

func atoi(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil { return i }
	}
	return def
}

func Load() *Config {
	return &Config{
		Port:         getenv("PORT", "8080"),
		AllowOrigins: getenv("ALLOW_ORIGINS", "*"),
		DBDriver:     getenv("DB_DRIVER", "sqlite"),
		DBPath:       getenv("DB_PATH", "data/contacts.db"),
		DemoUserID:   uint(atoi("DEMO_USER_ID", 1)),
		MaxUploadMB:  int64(atoi("MAX_UPLOAD_MB", 15)),
	}
}
