package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"

	"github.com/Astemirdum/bookstore/pkg/auth"
	"github.com/Astemirdum/bookstore/pkg/circuit_breaker"
	"github.com/Astemirdum/bookstore/pkg/kafka"
	"github.com/Astemirdum/bookstore/pkg/logger"
	"github.com/Astemirdum/bookstore/pkg/postgres"
)

const EnvDevelopment = "development"

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"15s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE"`
}

type Redis struct {
	Addr     string        `envconfig:"REDIS_ADDR"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	TTL      time.Duration `envconfig:"REDIS_CACHE_TTL" default:"5m"`
	Breaker  circuit_breaker.Config
}

type Storage struct {
	Dir           string `envconfig:"STORAGE_DIR" default:"wwwroot"`
	MaxUploadSize int64  `envconfig:"STORAGE_MAX_UPLOAD_SIZE" default:"10485760"`
}

type Config struct {
	Server   HTTPServer   `yaml:"server"`
	Database postgres.DB  `yaml:"db"`
	Log      logger.Log   `yaml:"log"`
	Auth     auth.Config  `yaml:"auth"`
	Kafka    kafka.Config `yaml:"kafka"`
	Redis    Redis        `yaml:"redis"`
	Storage  Storage      `yaml:"storage"`
	Env      string       `envconfig:"APP_ENV" default:"development"`
}

func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// NewConfig applies ops as defaults and then overrides them from the environment.
func NewConfig(ops ...Option) (*Config, error) {
	var cfg Config
	for _, op := range ops {
		op(&cfg)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "envconfig.Process")
	}
	if err := cfg.Auth.Validate(); err != nil {
		return nil, errors.Wrap(err, "auth")
	}
	return &cfg, nil
}
