package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	cfg := fromViper(newViper())

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, 168*time.Hour, cfg.JWT.SessionTTL)
	assert.Zero(t, cfg.Account.CodeTTL)
	assert.Equal(t, 10*time.Second, cfg.Account.DeliveryTimeout)
	assert.Equal(t, int64(5<<20), cfg.Media.MaxBytes)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.MediaEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestFromViper_Environment(t *testing.T) {
	t.Setenv("STORE_DRIVER", " Mongo ")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SUPER_ADMIN_EMAIL", "root@shop.test")
	t.Setenv("ACCOUNT_CODE_TTL", "15m")
	t.Setenv("S3_BUCKET", "media")
	t.Setenv("ENVIRONMENT", "Production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test, ,https://b.test")
	t.Setenv("RATE_LIMIT_LOGIN_RPS", "0.5")

	cfg := fromViper(newViper())
	require.NoError(t, cfg.Validate())

	assert.Equal(t, StoreDriverMongo, cfg.Store.Driver)
	assert.Equal(t, "root@shop.test", cfg.Account.SuperAdminEmail)
	assert.Equal(t, 15*time.Minute, cfg.Account.CodeTTL)
	assert.Equal(t, 0.5, cfg.RateLimit.LoginRPS)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.MediaEnabled())
	assert.True(t, cfg.IsProduction())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			JWT:   JWTConfig{Secret: "secret"},
			Store: StoreConfig{Driver: StoreDriverPostgres, DatabaseURL: "postgres://localhost/shop"},
		}
	}

	require.NoError(t, valid().Validate())

	cases := map[string]func(*Config){
		"missing secret":       func(c *Config) { c.JWT.Secret = " " },
		"missing database url": func(c *Config) { c.Store.DatabaseURL = "" },
		"missing mongo uri":    func(c *Config) { c.Store.Driver = StoreDriverMongo },
		"unknown driver":       func(c *Config) { c.Store.Driver = "sqlite" },
		"negative code ttl":    func(c *Config) { c.Account.CodeTTL = -time.Second },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	memory := &Config{JWT: JWTConfig{Secret: "secret"}, Store: StoreConfig{Driver: StoreDriverMemory}}
	assert.NoError(t, memory.Validate())
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a", "b"}, splitList(" a ,, b "))
}
