package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Addr        string        `envconfig:"ADDR" default:":8080"`
	DatabaseURL string        `envconfig:"DATABASE_URL" default:"rentalhub.db"`
	JWTSecret   string        `envconfig:"JWT_SECRET" default:"change-me-jwt-secret"`
	JWTTTL      time.Duration `envconfig:"JWT_TTL" default:"24h"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
	CORSOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

// Load reads .env if present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
