package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServiceName string

	ServerPort int

	DatabaseURL       string
	DBAutoMigrate     bool
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	JWTAccessSecret []byte

	AuthHTTPURL string

	KafkaBrokers []string

	ESURL          string
	ESUser         string
	ESPassword     string
	ESProductIndex string

	LogLevel string
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", ""),

		ServerPort: EnvIntDefault("SERVER_PORT", 8080),

		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DBAutoMigrate:     EnvBoolDefault("DB_AUTO_MIGRATE", true),
		DBMaxOpenConns:    EnvIntDefault("DB_MAX_OPEN_CONNS", 0),
		DBMaxIdleConns:    EnvIntDefault("DB_MAX_IDLE_CONNS", 0),
		DBConnMaxLifetime: EnvDurationDefault("DB_CONN_MAX_LIFETIME", 0),

		JWTAccessSecret: []byte(os.Getenv("JWT_SECRET")),

		AuthHTTPURL: os.Getenv("AUTH_URL"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:          os.Getenv("ES_URL"),
		ESUser:         os.Getenv("ES_USER"),
		ESPassword:     os.Getenv("ES_PASSWORD"),
		ESProductIndex: EnvDefault("ES_PRODUCT_INDEX", "product"),

		LogLevel: EnvDefault("LOG_LEVEL", "info"),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// EnvDurationDefault parses values like "90s" or "30m".
func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

var requiredEnv = map[string]func(Config) bool{
	"DATABASE_URL":  func(c Config) bool { return c.DatabaseURL != "" },
	"JWT_SECRET":    func(c Config) bool { return len(c.JWTAccessSecret) > 0 },
	"AUTH_URL":      func(c Config) bool { return c.AuthHTTPURL != "" },
	"KAFKA_BROKERS": func(c Config) bool { return len(c.KafkaBrokers) > 0 },
	"ES_URL":        func(c Config) bool { return c.ESURL != "" },
}

// Require reports every listed env variable that is missing from c.
func (c Config) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		check, ok := requiredEnv[name]
		if !ok {
			return fmt.Errorf("unknown required env %s", name)
		}
		if !check(c) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env %s", strings.Join(missing, ", "))
	}
	return nil
}
