package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	MongoURI       string
	MongoDB        string
	RedisAddr      string
	UseKafka       bool
	KafkaBrokers   []string
	KafkaTopicUser string
	ClickHouseAddr string
	ClickHouseDB   string
	JWTSecret      string
	TokenTTL       time.Duration
	CacheTTL       time.Duration
	AuditPeriod    time.Duration
	AuditLimit     int
	HTTPPort       string
}

func LoadConfig() *Config {
	getEnv := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}

	getDuration := func(key, fallback string) time.Duration {
		d, err := time.ParseDuration(getEnv(key, fallback))
		if err != nil {
			d, _ = time.ParseDuration(fallback)
		}
		return d
	}

	kafkaBrokers := strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")

	return &Config{
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getEnv("MONGO_DB", "usergraph"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		UseKafka:       getEnv("USE_KAFKA", "false") == "true",
		KafkaBrokers:   kafkaBrokers,
		KafkaTopicUser: getEnv("KAFKA_TOPIC", "user-events"),
		ClickHouseAddr: getEnv("CLICKHOUSE_ADDR", ""),
		ClickHouseDB:   getEnv("CLICKHOUSE_DB", "usergraph"),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:       getDuration("TOKEN_TTL", "24h"),
		CacheTTL:       5 * time.Minute,
		AuditPeriod:    getDuration("AUDIT_PERIOD", "5s"),
		AuditLimit:     100,
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
	}
}
