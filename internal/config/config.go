package config

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/corray333/backend-labs/ordering/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func MustInit() {
	if err := godotenv.Load("./.env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic("error while loading .env file: " + err.Error())
	}

	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/order-svc")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic("error while reading config file: " + err.Error())
		}
	}
	SetupLogger()

	if used := viper.ConfigFileUsed(); used != "" {
		slog.Info("Config loaded", "file", used)
	} else {
		slog.Warn("No config file found, running on defaults")
	}
}

func setDefaults() {
	viper.SetDefault("server.http.port", "3000")
	viper.SetDefault("server.http.request_timeout_seconds", 30)
	viper.SetDefault("server.http.cors.allowed_origins", []string{"*"})
	viper.SetDefault("server.http.cors.allowed_methods", []string{"GET", "POST", "PATCH", "OPTIONS"})
	viper.SetDefault("server.http.cors.allowed_headers", []string{"Accept", "Content-Type", "X-Request-Id", "traceparent"})
	viper.SetDefault("server.http.cors.exposed_headers", []string{"X-Request-Id"})
	viper.SetDefault("server.http.cors.allow_credentials", false)
	viper.SetDefault("server.http.cors.max_age", 300)

	viper.SetDefault("postgres.max_conns", 10)
	viper.SetDefault("postgres.migrations_path", "./migrations")

	viper.SetDefault("catalog.base_url", "http://produtos-service:3002")
	viper.SetDefault("catalog.timeout_seconds", 10)
	viper.SetDefault("catalog.lookup_concurrency", 1)

	viper.SetDefault("rabbitmq.orders_queue", "orders")
	viper.SetDefault("rabbitmq.outbox.poll_interval_seconds", 10)
	viper.SetDefault("rabbitmq.outbox.batch_size", 100)
	viper.SetDefault("rabbitmq.outbox.retry_interval_seconds", 30)

	viper.SetDefault("otel.enabled", true)
	viper.SetDefault("otel.service_name", "order-svc")
	viper.SetDefault("otel.jaeger_endpoint", "http://jaeger:14268/api/traces")

	viper.SetDefault("log.level", "info")
}

func SetupLogger() {
	handler := logger.NewHandler(&slog.HandlerOptions{
		Level: logger.ParseLevel(viper.GetString("log.level")),
	})
	log := slog.New(handler)
	slog.SetDefault(log)
}
