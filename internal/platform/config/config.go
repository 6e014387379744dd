package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type App struct {
	// Database
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:""`
	DBName     string `envconfig:"DB_NAME" default:"gharbhada"`

	// Redis
	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`

	// HTTP
	HTTPAddr       string   `envconfig:"HTTP_ADDR" default:":8080"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173"`

	// Auth
	JWTSecret   string        `envconfig:"JWT_SECRET" required:"true"`
	TokenExpiry time.Duration `envconfig:"TOKEN_EXPIRY" default:"1h"`

	// eSewa
	EsewaGatewayURL  string        `envconfig:"ESEWA_GATEWAY_URL" default:"https://rc-epay.esewa.com.np"`
	EsewaProductCode string        `envconfig:"ESEWA_PRODUCT_CODE" required:"true"`
	EsewaSecretKey   string        `envconfig:"ESEWA_SECRET_KEY" required:"true"`
	EsewaTimeout     time.Duration `envconfig:"ESEWA_TIMEOUT" default:"10s"`

	// Sweeper
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"1m"`
	PendingTTL    time.Duration `envconfig:"PENDING_TTL" default:"24h"`
}

// Load reads .env when present, then parses the environment.
func Load() (App, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var cfg App
	err := envconfig.Process("", &cfg)
	return cfg, err
}
