package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Host           string `mapstructure:"host"`
		Port           int    `mapstructure:"port"`
		User           string `mapstructure:"user"`
		Password       string `mapstructure:"password"`
		Name           string `mapstructure:"name"`
		MigrationsPath string `mapstructure:"migrations_path"`
	} `mapstructure:"database"`
	Redis struct {
		Host     string        `mapstructure:"host"`
		Port     string        `mapstructure:"port"`
		Password string        `mapstructure:"password"`
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"redis"`
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	JWT struct {
		Algorithm         string        `mapstructure:"algorithm"`
		AccessSecretKey   string        `mapstructure:"access_secret_key"`
		RefreshSecretKey  string        `mapstructure:"refresh_secret_key"`
		EmailSecretKey    string        `mapstructure:"email_secret_key"`
		AccessTTL         time.Duration `mapstructure:"access_ttl"`
		RefreshTTL        time.Duration `mapstructure:"refresh_ttl"`
		EmailTTL          time.Duration `mapstructure:"email_ttl"`
		RefreshCookieName string        `mapstructure:"refresh_cookie_name"`
		RefreshCookiePath string        `mapstructure:"refresh_cookie_path"`

		// RefreshCookieSecure restricts the refresh cookie to HTTPS.
		RefreshCookieSecure bool `mapstructure:"refresh_cookie_secure"`
	} `mapstructure:"jwt"`
	Session struct {
		// RotationWindow is the remaining lifetime below which a refresh
		// session is replaced during a token refresh.
		RotationWindow time.Duration `mapstructure:"rotation_window"`
	} `mapstructure:"session"`
	Hashing struct {
		BcryptCost      int    `mapstructure:"bcrypt_cost"`
		Argon2Memory    uint32 `mapstructure:"argon2_memory_kib"`
		Argon2Time      uint32 `mapstructure:"argon2_iterations"`
		Argon2Threads   uint8  `mapstructure:"argon2_parallelism"`
		Argon2KeyLength uint32 `mapstructure:"argon2_key_length"`
	} `mapstructure:"hashing"`
}

var AppConfig Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.migrations_path", "file://db/migrations")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.cache_ttl", time.Hour)
	v.SetDefault("jwt.algorithm", "HS256")
	v.SetDefault("jwt.access_ttl", 15*time.Minute)
	v.SetDefault("jwt.refresh_ttl", 7*24*time.Hour)
	v.SetDefault("jwt.email_ttl", 30*time.Minute)
	v.SetDefault("jwt.refresh_cookie_name", "refresh_token")
	v.SetDefault("jwt.refresh_cookie_path", "/auth")
	v.SetDefault("jwt.refresh_cookie_secure", true)
	v.SetDefault("session.rotation_window", 48*time.Hour)
	v.SetDefault("hashing.bcrypt_cost", 12)
	v.SetDefault("hashing.argon2_memory_kib", 64*1024)
	v.SetDefault("hashing.argon2_iterations", 3)
	v.SetDefault("hashing.argon2_parallelism", 2)
	v.SetDefault("hashing.argon2_key_length", 32)
}

// Load reads config.yml from path, applies defaults and AUTH_* environment
// overrides (e.g. AUTH_JWT_ACCESS_SECRET_KEY) and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetEnvPrefix("auth")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the token authority cannot run without.
func (c *Config) Validate() error {
	switch {
	case c.JWT.AccessSecretKey == "", c.JWT.RefreshSecretKey == "", c.JWT.EmailSecretKey == "":
		return fmt.Errorf("config: jwt secret keys must be set for every token kind")
	case c.JWT.AccessTTL <= 0, c.JWT.RefreshTTL <= 0, c.JWT.EmailTTL <= 0:
		return fmt.Errorf("config: jwt ttls must be positive")
	case c.Session.RotationWindow < 0:
		return fmt.Errorf("config: session rotation window must not be negative")
	}
	return nil
}

func LoadConfig(path string) {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("Unable to load configuration, %v", err)
	}
	AppConfig = *cfg
}
