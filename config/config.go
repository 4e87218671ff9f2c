package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	JWT       JWTConfig
	Account   AccountConfig
	Mail      MailConfig
	Media     MediaConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Addr        string
	Environment string
	LogLevel    string
}

type StoreConfig struct {
	Driver        string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string
}

type JWTConfig struct {
	Secret     string
	Issuer     string
	SessionTTL time.Duration
}

type AccountConfig struct {
	SuperAdminEmail string
	CodeTTL         time.Duration
	DeliveryTimeout time.Duration
}

type MailConfig struct {
	ResendAPIKey string
	From         string
}

type MediaConfig struct {
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
	MaxBytes      int64
}

type RateLimitConfig struct {
	AuthRPS    float64
	AuthBurst  int
	LoginRPS   float64
	LoginBurst int
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads .env when present, then the process environment. Environment
// values win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return fromViper(newViper()), nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8000")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("MONGODB_DATABASE", "storefront")
	v.SetDefault("JWT_ISSUER", "storefront")
	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("ACCOUNT_CODE_TTL", "0s")
	v.SetDefault("CODE_DELIVERY_TIMEOUT", "10s")
	v.SetDefault("MAIL_FROM", "Backend Service <no-reply@example.com>")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("MEDIA_MAX_BYTES", 5<<20)
	v.SetDefault("RATE_LIMIT_AUTH_RPS", 5)
	v.SetDefault("RATE_LIMIT_AUTH_BURST", 10)
	v.SetDefault("RATE_LIMIT_LOGIN_RPS", 2)
	v.SetDefault("RATE_LIMIT_LOGIN_BURST", 4)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	return v
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        v.GetString("HTTP_ADDR"),
			Environment: v.GetString("ENVIRONMENT"),
			LogLevel:    v.GetString("LOG_LEVEL"),
		},
		Store: StoreConfig{
			Driver:        strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
			DatabaseURL:   v.GetString("DATABASE_URL"),
			MongoURI:      v.GetString("MONGODB_URI"),
			MongoDatabase: v.GetString("MONGODB_DATABASE"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("JWT_SECRET"),
			Issuer:     v.GetString("JWT_ISSUER"),
			SessionTTL: v.GetDuration("SESSION_TTL"),
		},
		Account: AccountConfig{
			SuperAdminEmail: v.GetString("SUPER_ADMIN_EMAIL"),
			CodeTTL:         v.GetDuration("ACCOUNT_CODE_TTL"),
			DeliveryTimeout: v.GetDuration("CODE_DELIVERY_TIMEOUT"),
		},
		Mail: MailConfig{
			ResendAPIKey: v.GetString("RESEND_API_KEY"),
			From:         v.GetString("MAIL_FROM"),
		},
		Media: MediaConfig{
			Endpoint:      v.GetString("S3_ENDPOINT"),
			Region:        v.GetString("S3_REGION"),
			AccessKey:     v.GetString("S3_ACCESS_KEY"),
			SecretKey:     v.GetString("S3_SECRET_KEY"),
			Bucket:        v.GetString("S3_BUCKET"),
			PublicBaseURL: v.GetString("MEDIA_PUBLIC_URL"),
			MaxBytes:      v.GetInt64("MEDIA_MAX_BYTES"),
		},
		RateLimit: RateLimitConfig{
			AuthRPS:    v.GetFloat64("RATE_LIMIT_AUTH_RPS"),
			AuthBurst:  v.GetInt("RATE_LIMIT_AUTH_BURST"),
			LoginRPS:   v.GetFloat64("RATE_LIMIT_LOGIN_RPS"),
			LoginBurst: v.GetInt("RATE_LIMIT_LOGIN_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
	}
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.Store.Driver {
	case StoreDriverPostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	case StoreDriverMongo:
		if c.Store.MongoURI == "" {
			return errors.New("MONGODB_URI is required for the mongo store")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Account.CodeTTL < 0 {
		return errors.New("ACCOUNT_CODE_TTL must not be negative")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// MediaEnabled reports whether enough S3 settings are present to upload images.
func (c *Config) MediaEnabled() bool {
	return c.Media.Bucket != ""
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
