package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port       string `env:"PORT,       default=8080"`
	Env        string `env:"ENV,        default=development"`
	JWTSecret  string `env:"JWT_SECRET, required"`
	LogLevel   string `env:"LOG_LEVEL,  default=info"`
	CORSOrigin string `env:"CORS_ORIGIN, default=*"`

	Mongo  MongoConfig
	Redis  RedisConfig
	SMTP   SMTPConfig
	Upload UploadConfig
	LLM    LLMConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=quickdesk"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST, default=localhost"`
	Port     int    `env:"SMTP_PORT, default=587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM, default=no-reply@quickdesk.local"`
}

type UploadConfig struct {
	Dir   string `env:"UPLOAD_DIR,    default=uploads"`
	MaxMB int    `env:"UPLOAD_MAX_MB, default=10"`
}

type LLMConfig struct {
	BaseURL string `env:"LLM_BASE_URL, default=http://localhost:11434"`
	Model   string `env:"LLM_MODEL,    default=llama3"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
