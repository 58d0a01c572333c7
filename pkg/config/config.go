package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App     AppConfig
	Redis   RedisConfig
	Compay  CompayConfig
	Session SessionConfig
	Cache   CacheConfig
	Chat    ChatConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"COMPAY_APP_ENV" required:"true"`
	Port         string `envconfig:"COMPAY_APP_PORT" required:"true"`
	Name         string `envconfig:"COMPAY_APP_NAME" default:"Compay Market"`
	LogLevel     string `envconfig:"COMPAY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COMPAY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"COMPAY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"COMPAY_REDIS_ADDR"`
	Password     string        `envconfig:"COMPAY_REDIS_PASSWORD"`
	DB           int           `envconfig:"COMPAY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COMPAY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COMPAY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COMPAY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COMPAY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COMPAY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type CompayConfig struct {
	APIBaseURL string        `envconfig:"COMPAY_API_BASE_URL" required:"true"`
	Timeout    time.Duration `envconfig:"COMPAY_API_TIMEOUT" default:"30s"`
}

type SessionConfig struct {
	CookieName string `envconfig:"COMPAY_SESSION_COOKIE" default:"compay_session"`
	Secret     string `envconfig:"COMPAY_SESSION_SECRET" required:"true"`
	TTLHours   int    `envconfig:"COMPAY_SESSION_TTL_HOURS" default:"720"`
	Secure     bool   `envconfig:"COMPAY_SESSION_SECURE" default:"false"`
}

// TTL returns the session lifetime configured in hours.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLHours <= 0 {
		return 0
	}
	return time.Duration(s.TTLHours) * time.Hour
}

type CacheConfig struct {
	DefaultTTL time.Duration `envconfig:"COMPAY_CACHE_DEFAULT_TTL" default:"600s"`
}

type ChatConfig struct {
	WSURL        string        `envconfig:"COMPAY_CHAT_WS_URL"`
	AppKey       string        `envconfig:"COMPAY_CHAT_APP_KEY"`
	AuthEndpoint string        `envconfig:"COMPAY_CHAT_AUTH_ENDPOINT" default:"/broadcasting/auth"`
	PingInterval time.Duration `envconfig:"COMPAY_CHAT_PING_INTERVAL" default:"30s"`
}
