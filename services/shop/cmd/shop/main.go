package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/cosmetics_shop/pkg/authclient"
	pkgdb "github.com/Skotchmaster/cosmetics_shop/pkg/db"
	"github.com/Skotchmaster/cosmetics_shop/pkg/events"
	"github.com/Skotchmaster/cosmetics_shop/pkg/logging"
	middleware "github.com/Skotchmaster/cosmetics_shop/pkg/middleware/auth"
	loggingmw "github.com/Skotchmaster/cosmetics_shop/pkg/middleware/logging"

	shopcfg "github.com/Skotchmaster/cosmetics_shop/services/shop/internal/config"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/httpserver"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/repo"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/search"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/service"
)

func main() {
	if err := godotenv.Load("services/shop/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg, err := shopcfg.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL, cfg.DBPool())
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	if cfg.DBAutoMigrate {
		if err := repo.Migrate(db); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("db handle: %v", err)
	}

	var publisher events.Publisher = events.Nop{}
	var producer *events.Producer
	if cfg.EventsEnabled() {
		producer = events.NewProducer(cfg.KafkaBrokers)
		publisher = producer
	} else {
		logger.Warn("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	var indexer service.StockIndexer
	var searcher service.ProductSearcher
	if cfg.SearchEnabled() {
		esCtx, esCancel := context.WithTimeout(context.Background(), 5*time.Second)
		es, err := search.NewClient(esCtx, cfg.Elasticsearch(), cfg.ESProductIndex)
		esCancel()
		if err != nil {
			logger.Warn("elasticsearch_unavailable", "error", err)
		} else {
			indexer, searcher = es, es
		}
	}

	var refresher middleware.Refresher
	if cfg.AuthHTTPURL != "" {
		refresher = authclient.NewClient(cfg.AuthHTTPURL)
	}

	r := &repo.GormRepo{DB: db}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger, loggingmw.Quiet("/health/live", "/health/ready", "/metrics")))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		CartHandler:     &httpserver.CartHTTP{Svc: &service.CartService{Repo: r, Events: publisher}},
		CheckoutHandler: &httpserver.CheckoutHTTP{Svc: &service.CheckoutService{Repo: r, Events: publisher, Indexer: indexer}},
		AddressHandler:  &httpserver.AddressHTTP{Svc: &service.AddressService{Repo: r}},
		OrderHandler:    &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r, Events: publisher, Indexer: indexer}},
		CatalogHandler:  &httpserver.CatalogHTTP{Svc: &service.CatalogService{Repo: r, Searcher: searcher}},
		JWTSecret:       cfg.JWTAccessSecret,
		AuthClient:      refresher,
		DB:              sqlDB,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("shop_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_error", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka_close_error", "error", err)
		}
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db_close_error", "error", err)
	}

	logger.Info("shop_stopped")
}
