package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,       default=5000"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	ClientURL string `env:"CLIENT_URL"`
	BodyLimit string `env:"BODY_LIMIT, default=10M"`

	Auth        AuthConfig
	Mongo       MongoConfig
	Redis       RedisConfig
	Media       MediaConfig
	EmailVerify EmailVerifyConfig
	RateLimit   RateLimitConfig
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET, required"`
	JWTExpire time.Duration `env:"JWT_EXPIRE, default=168h"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=atjeh-times"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type MediaConfig struct {
	Bucket        string `env:"S3_BUCKET"`
	Region        string `env:"S3_REGION,       default=us-east-1"`
	Endpoint      string `env:"S3_ENDPOINT"`
	AccessKey     string `env:"S3_ACCESS_KEY"`
	SecretKey     string `env:"S3_SECRET_KEY"`
	PublicURL     string `env:"S3_PUBLIC_URL"`
	Folder        string `env:"UPLOAD_FOLDER,   default=news-site/articles"`
	MaxImageBytes int64  `env:"MAX_IMAGE_BYTES, default=10485760"`
}

type EmailVerifyConfig struct {
	Enabled        bool          `env:"VERIFY_EMAIL_EXISTENCE, default=false"`
	AbstractAPIKey string        `env:"ABSTRACT_API_KEY"`
	Timeout        time.Duration `env:"EMAIL_VERIFY_TIMEOUT,   default=5s"`
}

type RateLimitConfig struct {
	RPS   float64 `env:"AUTH_RATE_LIMIT_RPS,   default=0.2"`
	Burst int     `env:"AUTH_RATE_LIMIT_BURST, default=10"`
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// IsDevelopment reports whether ENV is development. Error details are only
// exposed to clients in development.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// VerifyEmails reports whether registrations go through email verification.
func (c *Config) VerifyEmails() bool {
	return c.IsProduction() || c.EmailVerify.Enabled
}

// Load reads a .env file when present, then configuration from environment
// variables using go-envconfig.
func Load() *Config {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

// LoadMongo reads only the MongoDB settings, for tools that do not serve HTTP.
func LoadMongo() MongoConfig {
	_ = godotenv.Load()

	var cfg MongoConfig
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load mongo configuration: %v", err))
	}
	return cfg
}
