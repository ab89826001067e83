package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env      string
		Debug    bool
		TestMode bool
		AppName  string
		Build    string

		// SecretKey signs and verifies session tokens. When empty, token
		// verification degrades to decode-only mode; non-production only.
		SecretKey string

		FrontendBaseURL  string
		DefaultFromEmail string
		SendgridApiKey   string
		RollbarToken     string

		Server   ServerConfig
		Upstream UpstreamConfig
		Tenant   TenantConfig
		State    StateConfig
		Database DatabaseConfig
	}

	ServerConfig struct {
		Host               string
		Port               string
		JWTExpirationDelta time.Duration
		SessionCacheTTL    time.Duration
		SessionCacheSize   int
	}

	UpstreamConfig struct {
		BaseURL     string
		TenantsPath string
		Timeout     time.Duration
	}

	TenantConfig struct {
		CacheTTL time.Duration
	}

	StateConfig struct {
		Backend       string // memory | redis | postgres
		RedisAddr     string
		RedisPassword string
		RedisDB       int
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		DisableTLS    bool
	}
)

func (c ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *Config) FromEmail() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.DefaultFromEmail}
}

// NewConfig loads the app configuration from the environment.
// An optional config/.env.<env> file is loaded first if present.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "SkillForge")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "")
	v.SetDefault("frontendBaseUrl", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("serverHost", "")
	v.SetDefault("serverPort", "8000")
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("sessionCacheTtl", 30*time.Second)
	v.SetDefault("sessionCacheSize", 1024)
	v.SetDefault("upstreamBaseUrl", "http://localhost:9000")
	v.SetDefault("upstreamTenantsPath", "/stores")
	v.SetDefault("upstreamTimeout", 15*time.Second)
	v.SetDefault("tenantCacheTtl", time.Hour)
	v.SetDefault("stateBackend", "memory")
	v.SetDefault("redisAddr", "localhost:6379")
	v.SetDefault("redisDb", 0)
	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbName", "skillforge_gateway")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbDisableTls", true)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:              env,
		Debug:            v.GetBool("debug"),
		TestMode:         env == "TEST",
		AppName:          v.GetString("appName"),
		Build:            v.GetString("build"),
		SecretKey:        v.GetString("secretKey"),
		FrontendBaseURL:  v.GetString("frontendBaseUrl"),
		DefaultFromEmail: v.GetString("defaultFromEmail"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:               v.GetString("serverHost"),
			Port:               v.GetString("serverPort"),
			JWTExpirationDelta: v.GetDuration("jwtExpirationDelta"),
			SessionCacheTTL:    v.GetDuration("sessionCacheTtl"),
			SessionCacheSize:   v.GetInt("sessionCacheSize"),
		},
		Upstream: UpstreamConfig{
			BaseURL:     v.GetString("upstreamBaseUrl"),
			TenantsPath: v.GetString("upstreamTenantsPath"),
			Timeout:     v.GetDuration("upstreamTimeout"),
		},
		Tenant: TenantConfig{
			CacheTTL: v.GetDuration("tenantCacheTtl"),
		},
		State: StateConfig{
			Backend:       v.GetString("stateBackend"),
			RedisAddr:     v.GetString("redisAddr"),
			RedisPassword: v.GetString("redisPassword"),
			RedisDB:       v.GetInt("redisDb"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetString("dbPort"),
			DisableTLS:    v.GetBool("dbDisableTls"),
		},
	}
}
