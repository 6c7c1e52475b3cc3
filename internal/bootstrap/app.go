package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"finquest-server/internal/config"
	"finquest-server/internal/logging"
	"finquest-server/internal/model"
	"finquest-server/internal/platform/database"
	rabbitmqClient "finquest-server/internal/platform/rabbitmq"
	redisClient "finquest-server/internal/platform/redis"
	"finquest-server/internal/repository"
	"finquest-server/internal/upload"
	"finquest-server/internal/worker"
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	DB            *gorm.DB
	Redis         *redis.Client
	MQConn        *amqp.Connection
	Profiles      *upload.LocalStore
	ProfileWorker *worker.ProfileCleanupWorker

	StartedAt time.Time
}

func New(ctx context.Context) (_ *App, err error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	app := &App{
		Config:    cfg,
		Logger:    logging.New(cfg.Log.Level, cfg.Log.Format),
		StartedAt: time.Now(),
	}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	app.Profiles, err = upload.NewLocalStore(upload.Config{Dir: cfg.Upload.Dir})
	if err != nil {
		return nil, err
	}

	app.DB, err = database.Open(ctx, cfg, app.Logger)
	if err != nil {
		return nil, err
	}
	if err := app.DB.AutoMigrate(&model.User{}, &model.Quest{}, &model.Transaction{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	app.Redis, err = redisClient.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}

	app.MQConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	app.ProfileWorker = worker.NewProfileCleanupWorker(
		app.MQConn,
		app.Profiles,
		repository.NewUserRepository(app.DB),
		cfg.RabbitMQ.EventQueue,
		app.Logger,
	)
	if err := app.ProfileWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start profile cleanup worker failed: %w", err)
	}

	app.Logger.Info("bootstrap complete",
		"env", cfg.App.Env,
		"db_driver", cfg.Database.Driver,
		"upload_dir", cfg.Upload.Dir,
	)
	return app, nil
}

func (a *App) Close() error {
	var errs []error
	if a.ProfileWorker != nil {
		a.ProfileWorker.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.MQConn != nil && !a.MQConn.IsClosed() {
		if err := a.MQConn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close rabbitmq: %w", err))
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close database: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}
