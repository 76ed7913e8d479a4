package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"contextchat/internal/ai"
	appsvc "contextchat/internal/app"
	"contextchat/internal/config"
	"contextchat/internal/model"
	"contextchat/internal/pkg/logger"
	mysqlClient "contextchat/internal/platform/mysql"
	rabbitmqClient "contextchat/internal/platform/rabbitmq"
	redisClient "contextchat/internal/platform/redis"
	"contextchat/internal/platform/storage"
	"contextchat/internal/repository"
	"contextchat/internal/worker"
)

type App struct {
	Config     *config.Config
	Log        *logger.Logger
	MySQL      *gorm.DB
	Redis      *redis.Client
	MQConn     *amqp.Connection
	Storage    *storage.Client
	LLM        *ai.Client
	FileWorker *worker.FileProcessWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("build logger failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(
		&model.Project{},
		&model.Conversation{},
		&model.Message{},
		&model.FileUpload{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	storageCli := storage.NewClient(cfg.Storage.BaseURL, cfg.Storage.Bucket, cfg.Storage.ServiceKey)
	llmCli := ai.NewClient()

	fileRepo := repository.NewFileUploadRepository(mysqlDB)
	fileService := appsvc.NewFileService(fileRepo, storageCli, log)
	fileWorker := worker.NewFileProcessWorker(mqConn, fileService, cfg.RabbitMQ.FileProcessQueue, log)
	if err := fileWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start file worker failed: %w", err)
	}

	return &App{
		Config:     cfg,
		Log:        log,
		MySQL:      mysqlDB,
		Redis:      redisCli,
		MQConn:     mqConn,
		Storage:    storageCli,
		LLM:        llmCli,
		FileWorker: fileWorker,
		StartedAt:  time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.FileWorker != nil {
		a.FileWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
	return closeErr
}
