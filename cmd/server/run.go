package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/game-rental/internal/config"
	"github.com/iliyamo/game-rental/internal/database"
	"github.com/iliyamo/game-rental/internal/handler"
	"github.com/iliyamo/game-rental/internal/metrics"
	"github.com/iliyamo/game-rental/internal/middleware"
	"github.com/iliyamo/game-rental/internal/queue"
	"github.com/iliyamo/game-rental/internal/repository"
	"github.com/iliyamo/game-rental/internal/router"
	"github.com/iliyamo/game-rental/internal/service"
	"github.com/iliyamo/game-rental/internal/utils"
)

const shutdownTimeout = 10 * time.Second

// run wires the stores, services and HTTP server and blocks until ctx is
// cancelled.
func run(ctx context.Context, cfg config.Config, dsn string) error {
	if err := database.MigrateUp(dsn); err != nil {
		return err
	}
	db, err := database.Open(dsn)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	rec := metrics.NewRecorder()

	brokerCfg := config.LoadBrokerConfig()
	publisher, closePublisher, err := newPublisher(brokerCfg)
	if err != nil {
		return err
	}
	defer closePublisher()

	if brokerCfg.ConsumerEnabled {
		consumer := queue.NewAuditConsumer(brokerCfg.RabbitURL, brokerCfg.Queue, brokerCfg.AuditLogPath)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("audit consumer stopped")
			}
		}()
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb != nil {
		defer rdb.Close()
	}

	tokens := utils.NewTokenService(cfg.JWTSecret, cfg.AccessTTLMin)
	auth := service.NewAuthService(repository.NewUserRepo(db), utils.NewPasswordHasher(cfg.BcryptCost), tokens)
	catalog := service.NewCatalogService(auth, repository.NewGameRepo(db))
	rentals := service.NewRentalService(auth, catalog, repository.NewRentalRepo(db),
		repository.NewTransactor(db), publisher, rec)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Metrics(rec))

	d := router.Deps{
		Auth:      handler.NewAuthHandler(auth),
		Games:     handler.NewGameHandler(catalog),
		Rentals:   handler.NewRentalHandler(rentals),
		Tokens:    tokens,
		DB:        db,
		Metrics:   rec.Handler(),
		Redis:     rdb,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
	}
	router.RegisterRoutes(e, d)
	router.RegisterAPI(e, d)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.WithFields(log.Fields{"addr": addr, "env": cfg.Env, "broker": brokerCfg.Kind}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// newPublisher picks the rental event sink named by EVENT_BROKER. The
// returned func releases it.
func newPublisher(c config.BrokerConfig) (service.EventPublisher, func(), error) {
	switch c.Kind {
	case config.BrokerRabbitMQ:
		return queue.NewAMQPPublisher(c.RabbitURL, c.Queue), func() {}, nil
	case config.BrokerNATS:
		p, err := queue.NewNATSPublisher(c.NATSURL, c.SubjectPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to nats: %w", err)
		}
		return p, p.Close, nil
	default:
		log.Info("rental events disabled")
		return queue.Noop{}, func() {}, nil
	}
}
