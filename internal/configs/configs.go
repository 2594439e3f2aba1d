package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
)

type Config struct {
	AppURL                 string
	DatabaseDSN            string
	RateLimit              int
	RedisEnabled           bool
	RedisAddr              string
	RedisRevokedPrefix     string
	JWTSecret              string
	JWTTTLHours            int
	UpcomingHorizonDays    int
	ShutdownTimeoutSeconds int
	SeedPassword           string
}

func Load() Config {
	cfg, err := load()
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

func load() (Config, error) {
	appHost := getEnv("APP_HOST", "127.0.0.1")
	appPort := getEnv("APP_PORT", "8080")
	redisHost := getEnv("REDIS_HOST", "127.0.0.1")
	redisPort := getEnv("REDIS_PORT", "6379")

	ints := map[string]int{}
	for key, def := range map[string]int{
		"RATE_LIMIT_PER_MINUTE":    60,
		"JWT_TTL_HOURS":            24,
		"UPCOMING_HORIZON_DAYS":    7,
		"SHUTDOWN_TIMEOUT_SECONDS": 20,
	} {
		v, err := getEnvAsInt(key, def)
		if err != nil {
			return Config{}, err
		}
		ints[key] = v
	}

	redisEnabled, err := getEnvAsBool("REDIS_ENABLED", false)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppURL:                 fmt.Sprintf("%s:%s", appHost, appPort),
		DatabaseDSN:            getEnv("DATABASE_DSN", "tasks.db"),
		RateLimit:              ints["RATE_LIMIT_PER_MINUTE"],
		RedisEnabled:           redisEnabled,
		RedisAddr:              fmt.Sprintf("%s:%s", redisHost, redisPort),
		RedisRevokedPrefix:     getEnv("REDIS_REVOKED_PREFIX", "task_tracker:revoked:"),
		JWTSecret:              getEnv("JWT_SECRET", ""),
		JWTTTLHours:            ints["JWT_TTL_HOURS"],
		UpcomingHorizonDays:    ints["UPCOMING_HORIZON_DAYS"],
		ShutdownTimeoutSeconds: ints["SHUTDOWN_TIMEOUT_SECONDS"],
		SeedPassword:           getEnv("SEED_PASSWORD", "password123"),
	}

	return cfg, validate(cfg)
}

func validate(cfg Config) error {
	if cfg.AppURL == "" {
		return errors.New("APP_HOST/APP_PORT must not be empty (e.g. 127.0.0.1:8080)")
	}
	if cfg.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN must not be empty")
	}
	if cfg.RateLimit <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
	if len(cfg.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be set to at least 16 characters")
	}
	if cfg.JWTTTLHours <= 0 {
		return errors.New("JWT_TTL_HOURS must be greater than 0")
	}
	if cfg.UpcomingHorizonDays < 0 {
		return errors.New("UPCOMING_HORIZON_DAYS must not be negative")
	}
	if cfg.ShutdownTimeoutSeconds <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT_SECONDS must be greater than 0")
	}
	if cfg.RedisEnabled && cfg.RedisRevokedPrefix == "" {
		return errors.New("REDIS_REVOKED_PREFIX must not be empty when REDIS_ENABLED is set")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) (int, error) {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid integer value for %s", key)
		}
		return i, nil
	}
	return defaultVal, nil
}

func getEnvAsBool(key string, defaultVal bool) (bool, error) {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("invalid boolean value for %s", key)
		}
		return b, nil
	}
	return defaultVal, nil
}
