package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Database DatabaseConfig
	Draw     DrawConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type RedisConfig struct {
	Addr string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	Enabled bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	SSLMode  string
}

// DrawConfig carries the raffle policy knobs. WheelSegmentThreshold is the
// largest ticket count still rendered one segment per ticket; above it the
// wheel aggregates per entry. AllowRepeatWinners relaxes the default
// one-win-per-user rule to one win per entry.
type DrawConfig struct {
	LockTTL               time.Duration
	WheelSegmentThreshold int64
	AllowRepeatWinners    bool
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topic:   getEnv("KAFKA_TOPIC_DRAWS", "raffle-draws"),
			Enabled: getEnvBool("KAFKA_ENABLED", true),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Username: getEnv("DB_USERNAME", "raffle_user"),
			Password: getEnv("DB_PASSWORD", "raffle_pass"),
			Database: getEnv("DB_NAME", "raffle"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Draw: DrawConfig{
			LockTTL:               time.Duration(getEnvInt("DRAW_LOCK_TTL_MINUTES", 2)) * time.Minute,
			WheelSegmentThreshold: getEnvInt64("WHEEL_SEGMENT_THRESHOLD", 2000),
			AllowRepeatWinners:    getEnvBool("ALLOW_REPEAT_WINNERS", false),
		},
	}
}

// DSN builds the postgres connection string for the bun driver.
func (c DatabaseConfig) DSN() string {
	return "postgres://" + c.Username + ":" + c.Password + "@" + c.Host + ":" + c.Port + "/" + c.Database + "?sslmode=" + c.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
