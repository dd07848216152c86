package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/tourist-safety/config"
	"github.com/nandanugg/tourist-safety/module/core"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := core.Deps{Logger: logger}

	var db *sql.DB
	if cfg.DirectoryBackend == config.BackendPostgres {
		var err error
		db, err = config.NewPostgres(cfg)
		if err != nil {
			fatal(logger, "postgres", err)
		}
		defer func() { _ = db.Close() }()
		deps.DB = db
	}

	if cfg.RabbitMQURL != "" {
		amqpConn, err := config.NewRabbitMQ(cfg)
		if err != nil {
			fatal(logger, "rabbitmq", err)
		}
		defer func() { _ = amqpConn.Close() }()
		deps.AMQP = amqpConn
	}

	if cfg.MQTTBroker != "" {
		mqttClient, err := config.NewMQTT(cfg)
		if err != nil {
			fatal(logger, "mqtt", err)
		}
		defer mqttClient.Disconnect(250)
		deps.MQTT = mqttClient
	}

	rdb, err := config.NewRedis(cfg)
	if err != nil {
		fatal(logger, "redis", err)
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		deps.Redis = rdb
	}

	if cfg.DirectoryBackend == config.BackendDynamoDB || cfg.IncidentBucket != "" {
		awsCfg, err := config.NewAWS(ctx, cfg)
		if err != nil {
			fatal(logger, "aws", err)
		}
		if cfg.DirectoryBackend == config.BackendDynamoDB {
			deps.DynamoDB = config.NewDynamoDB(awsCfg)
		}
		if cfg.IncidentBucket != "" {
			deps.S3 = config.NewS3(awsCfg)
		}
	}

	coreModule, err := core.Build(ctx, cfg, deps)
	if err != nil {
		fatal(logger, "core module", err)
	}
	defer coreModule.Shutdown()

	if err := coreModule.StartSubscribers(); err != nil {
		fatal(logger, "start subscribers", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	health := config.NewHealthChecker(deps.DB, deps.AMQP, deps.MQTT, deps.Redis)
	health.Register(r)

	coreModule.RegisterRoutes(&r.RouterGroup)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr, "directory", cfg.DirectoryBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "err", err)
	}
}

func fatal(logger *slog.Logger, what string, err error) {
	logger.Error(what, "err", err)
	os.Exit(1)
}
