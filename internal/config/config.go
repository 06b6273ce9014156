package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Feed      FeedConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            string        `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName   string `envconfig:"DB_NAME" default:"stockanalysis"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	MigrationsPath string `envconfig:"DB_MIGRATIONS_PATH" default:"db/migrations"`
}

// RedisConfig holds the analysis/forecast cache configuration.
// When Addr is empty the service falls back to the in-process cache.
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:""`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Enabled        bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	Brokers        []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	BarTopic       string   `envconfig:"KAFKA_BAR_TOPIC" default:"price-bars"`
	AnalysisTopic  string   `envconfig:"KAFKA_ANALYSIS_TOPIC" default:"analysis-events"`
	ConsumerGroup  string   `envconfig:"KAFKA_CONSUMER_GROUP" default:"stock-analysis"`
	ConsumerEnable bool     `envconfig:"KAFKA_CONSUMER_ENABLED" default:"false"`
}

// FeedConfig holds market data feed configuration
type FeedConfig struct {
	BaseURL           string        `envconfig:"FEED_BASE_URL" default:""`
	Timeout           time.Duration `envconfig:"FEED_TIMEOUT" default:"15s"`
	RequestsPerSecond float64       `envconfig:"FEED_RPS" default:"2"`
	DefaultPeriod     string        `envconfig:"FEED_DEFAULT_PERIOD" default:"1y"`
	DefaultInterval   string        `envconfig:"FEED_DEFAULT_INTERVAL" default:"1d"`
}

// SchedulerConfig holds the background job configuration
type SchedulerConfig struct {
	Enabled       bool   `envconfig:"SCHEDULER_ENABLED" default:"true"`
	PrewarmCron   string `envconfig:"SCHEDULER_PREWARM_CRON" default:"0 */30 * * * *"`
	SweepCron     string `envconfig:"SCHEDULER_SWEEP_CRON" default:"0 */5 * * * *"`
	BatchParallel int    `envconfig:"SCHEDULER_BATCH_PARALLEL" default:"4"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	return &cfg, nil
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}
