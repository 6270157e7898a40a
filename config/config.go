package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env       string
	Server    ServerConfig
	Matchroom MatchroomConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	JWT       JWTConfig
	Log       LogConfig
}

type ServerConfig struct {
	HTTPPort     int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type MatchroomConfig struct {
	MatchSize     int
	AfkTimeout    time.Duration
	TickInterval  time.Duration
	ForfeitPolicy string
}

type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	MaxRetries   int
	PoolSize     int
	MinIdleConns int
	PresenceTTL  time.Duration
}

type KafkaConfig struct {
	Brokers              []string
	ProducerRetryMax     int
	ProducerRequiredAcks int
	Enabled              bool
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

type LogConfig struct {
	Level    string
	Mode     string
	Encoding string
}

// ForfeitPolicyCoWinners records every non-forfeiting participant as a winner.
// With two players this degenerates to "the other player wins".
const ForfeitPolicyCoWinners = "co-winners"

func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfg := &Config{
		Env: getEnv("ENV", "development"),
		Server: ServerConfig{
			HTTPPort:     getEnvAsInt("SERVER_HTTP_PORT", 8086),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Matchroom: MatchroomConfig{
			MatchSize:     getEnvAsInt("MATCH_SIZE", 2),
			AfkTimeout:    getEnvAsDuration("AFK_TIMEOUT", 30*time.Second),
			TickInterval:  getEnvAsDuration("TICK_INTERVAL", 1*time.Second),
			ForfeitPolicy: getEnv("FORFEIT_POLICY", ForfeitPolicyCoWinners),
		},
		Redis: RedisConfig{
			Addr:         getEnv("REDIS_ADDR", "localhost:6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			MaxRetries:   getEnvAsInt("REDIS_MAX_RETRIES", 3),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
			PresenceTTL:  getEnvAsDuration("REDIS_PRESENCE_TTL", 90*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:              getEnvAsSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			ProducerRetryMax:     getEnvAsInt("KAFKA_PRODUCER_RETRY_MAX", 3),
			ProducerRequiredAcks: getEnvAsInt("KAFKA_PRODUCER_REQUIRED_ACKS", 1),
			Enabled:              getEnvAsBool("KAFKA_ENABLED", true),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "jwt-secret"),
			Expiry: getEnvAsDuration("JWT_EXPIRY", 24*time.Hour),
		},
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Mode:     getEnv("LOG_MODE", "development"),
			Encoding: getEnv("LOG_ENCODING", "console"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.HTTPPort)
	}

	if c.Matchroom.MatchSize < 2 {
		return fmt.Errorf("match size must be at least 2, got %d", c.Matchroom.MatchSize)
	}

	if c.Matchroom.AfkTimeout <= 0 {
		return fmt.Errorf("afk timeout must be positive, got %s", c.Matchroom.AfkTimeout)
	}

	if c.Matchroom.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", c.Matchroom.TickInterval)
	}

	if c.Matchroom.ForfeitPolicy != ForfeitPolicyCoWinners {
		return fmt.Errorf("unknown forfeit policy: %q", c.Matchroom.ForfeitPolicy)
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required")
	}

	if c.JWT.Secret == "" || c.JWT.Secret == "jwt-secret" {
		if c.Env == "production" {
			return fmt.Errorf("JWT secret must be set in production")
		}
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
