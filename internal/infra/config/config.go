package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	BackendPostgres = "postgres"
	BackendDynamoDB = "dynamodb"
)

// AppConfig описывает конфигурацию сервиса отзывов.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`

	HTTP struct {
		Addr            string        `envconfig:"HTTP_ADDR" default:":8080"`
		RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"29s"`
		ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
		WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"35s"`
		ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"5s"`
	} `envconfig:""`

	Metrics struct {
		Enabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
		Addr    string `envconfig:"METRICS_ADDR" default:":9090"`
	} `envconfig:""`

	StoreBackend string `envconfig:"STORE_BACKEND" default:"postgres"`

	Postgres struct {
		DSN      string `envconfig:"PG_DSN"`
		MaxConns int32  `envconfig:"PG_MAX_CONNS" default:"5"`
	} `envconfig:""`

	Dynamo struct {
		Region       string `envconfig:"DYNAMO_REGION" default:"eu-central-1"`
		Endpoint     string `envconfig:"DYNAMO_ENDPOINT"`
		Table        string `envconfig:"DYNAMO_TABLE" default:"feedbacks"`
		IndexPattern string `envconfig:"DYNAMO_INDEX_PATTERN" default:"locationId-%s-index"`
		CountIndex   string `envconfig:"DYNAMO_COUNT_INDEX" default:"locationId-date-index"`
	} `envconfig:""`

	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	CountCacheTTL time.Duration `envconfig:"COUNT_CACHE_TTL" default:"30s"`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}

// Parse читает конфиг из окружения и возвращает ошибку вместо завершения процесса.
func Parse() (AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}
