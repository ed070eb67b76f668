package config

import (
	"errors"
	"fmt"
	"time"
)

// Chat definition chat_service YAML structure
type Chat struct {
	Port string `mapstructure:"port"`

	MongoSQL   DatabaseConfig  `mapstructure:"mongo"`
	PostgreSQL DatabaseConfig  `mapstructure:"pg"`
	Redis      RedisConfig     `mapstructure:"redis"`
	MinIO      MinIOConfig     `mapstructure:"minio"`
	Kafka      KafkaConfig     `mapstructure:"kafka"`
	JWT        JWTConfig       `mapstructure:"jwt"`
	Websocket  WebsocketConfig `mapstructure:"websocket"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
	Reconnect  ReconnectConfig `mapstructure:"reconnect"`
	Log        LogConfig       `mapstructure:"log"`

	// SystemPassword 建立 System 帳號時使用 (init-global)
	SystemPassword string `mapstructure:"system_password"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	// Addr 單機模式, 未設定時使用 sentinel (.env REDIS_SENTINEL*_IP)
	Addr     string        `mapstructure:"addr"`
	RedisDB  int           `mapstructure:"redis_db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// MinIOConfig definition minio setting, avatar objects
type MinIOConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	User          string        `mapstructure:"user"`
	Password      string        `mapstructure:"password"`
	BucketName    string        `mapstructure:"bucket"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
	RetryCount    int           `mapstructure:"retry_count"`
	RetryInterval int           `mapstructure:"retry_interval"`
}

// KafkaConfig definition kafka setting, activity stream
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// JWTConfig definition jwt setting
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// WebsocketConfig definition websocket setting
type WebsocketConfig struct {
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
}

// RateLimitConfig definition chat api rate limit
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// ReconnectConfig definition chat client reconnect policy
type ReconnectConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Delay       time.Duration `mapstructure:"delay"`
}

// LogConfig definition log rotation
type LogConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	Compress   bool `mapstructure:"compress"`
}

// Validate fill defaults and check the chat config
func (c *Chat) Validate() error {
	if c.Port == "" {
		c.Port = "5000"
	}
	if c.Redis.CacheTTL <= 0 {
		c.Redis.CacheTTL = 10 * time.Minute
	}
	if c.MinIO.PresignExpiry <= 0 {
		c.MinIO.PresignExpiry = time.Hour
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "chat.activity"
	}
	if c.Websocket.PingInterval <= 0 {
		c.Websocket.PingInterval = 30 * time.Second
	}
	if c.Websocket.WriteTimeout <= 0 {
		c.Websocket.WriteTimeout = 10 * time.Second
	}
	if c.Websocket.MaxMessageSize <= 0 {
		c.Websocket.MaxMessageSize = 64 * 1024
	}
	if c.RateLimit.RequestsPerSecond == 0 {
		// 300 requests / 15 minutes
		c.RateLimit.RequestsPerSecond = 300.0 / (15 * 60)
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 30
	}
	if c.Reconnect.MaxAttempts == 0 {
		c.Reconnect.MaxAttempts = 5
	}
	if c.Reconnect.Delay == 0 {
		c.Reconnect.Delay = 3 * time.Second
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 50
	}

	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	if c.MongoSQL.Database == "" {
		errs = append(errs, errors.New("mongo.database is required"))
	}
	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		errs = append(errs, fmt.Errorf("rate_limit must not be negative: %v/%d", c.RateLimit.RequestsPerSecond, c.RateLimit.Burst))
	}
	if c.Reconnect.MaxAttempts < 0 || c.Reconnect.Delay < 0 {
		errs = append(errs, fmt.Errorf("reconnect must not be negative: %d/%s", c.Reconnect.MaxAttempts, c.Reconnect.Delay))
	}
	return errors.Join(errs...)
}

// MongoURI build the mongo connect string
func (c *Chat) MongoURI() string {
	if c.MongoSQL.User == "" {
		return fmt.Sprintf("mongodb://%s:%d", c.MongoSQL.Host, c.MongoSQL.Port)
	}
	return fmt.Sprintf("mongodb://%s:%s@%s:%d", c.MongoSQL.User, c.MongoSQL.Password, c.MongoSQL.Host, c.MongoSQL.Port)
}

// PostgresDSN build the postgres connect string
func (c *Chat) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PostgreSQL.User, c.PostgreSQL.Password, c.PostgreSQL.Host, c.PostgreSQL.Port, c.PostgreSQL.Database)
}
