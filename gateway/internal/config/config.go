package config

import (
	"fmt"
	"os"
	"strings"

	pkgcfg "github.com/Skotchmaster/cosmetics_shop/pkg/config"
)

type Config struct {
	ListenAddr string
	AuthURL    string
	ShopURL    string
	JWTSecret  []byte
	CSRFSecure bool
	LogLevel   string
}

func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr: pkgcfg.EnvDefault("GATEWAY_ADDR", ":8080"),
		AuthURL:    os.Getenv("AUTH_URL"),
		ShopURL:    os.Getenv("SHOP_URL"),
		JWTSecret:  []byte(os.Getenv("JWT_SECRET")),
		CSRFSecure: pkgcfg.EnvBoolDefault("CSRF_SECURE", true),
		LogLevel:   pkgcfg.EnvDefault("LOG_LEVEL", "info"),
	}

	var missing []string
	if cfg.AuthURL == "" {
		missing = append(missing, "AUTH_URL")
	}
	if cfg.ShopURL == "" {
		missing = append(missing, "SHOP_URL")
	}
	if len(cfg.JWTSecret) == 0 {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required env %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}
