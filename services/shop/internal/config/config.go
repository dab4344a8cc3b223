package config

import (
	pkgcfg "github.com/Skotchmaster/cosmetics_shop/pkg/config"
	pkgdb "github.com/Skotchmaster/cosmetics_shop/pkg/db"
	"github.com/elastic/go-elasticsearch/v9"
)

type Config struct {
	pkgcfg.Config
}

func Load() (Config, error) {
	cfg := Config{Config: pkgcfg.Load()}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "shop"
	}
	if err := cfg.Require("DATABASE_URL", "JWT_SECRET"); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SearchEnabled is false when no Elasticsearch URL is configured; the shop
// then serves catalog reads from Postgres only.
func (c Config) SearchEnabled() bool {
	return c.ESURL != ""
}

func (c Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func (c Config) Elasticsearch() elasticsearch.Config {
	return elasticsearch.Config{
		Addresses: []string{c.ESURL},
		Username:  c.ESUser,
		Password:  c.ESPassword,
	}
}

// DBPool leaves unset sizes at zero so pkgdb applies its defaults.
func (c Config) DBPool() pkgdb.Pool {
	return pkgdb.Pool{
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: c.DBConnMaxLifetime,
	}
}
