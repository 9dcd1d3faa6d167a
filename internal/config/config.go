package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port               string        `mapstructure:"PORT"`
	Env                string        `mapstructure:"ENV"`
	LogLevel           string        `mapstructure:"LOG_LEVEL"`
	DatabaseURL        string        `mapstructure:"DATABASE_URL"`
	DBMaxConns         int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns         int32         `mapstructure:"DB_MIN_CONNS"`
	RedisURL           string        `mapstructure:"REDIS_URL"`
	JWTSecret          string        `mapstructure:"JWT_SECRET"`
	JWTIssuer          string        `mapstructure:"JWT_ISSUER"`
	TokenTTL           time.Duration `mapstructure:"TOKEN_TTL"`
	CookieSecure       bool          `mapstructure:"COOKIE_SECURE"`
	CORSOrigins        []string      `mapstructure:"CORS_ORIGINS"`
	BodyLimit          string        `mapstructure:"BODY_LIMIT"`
	UploadLimit        string        `mapstructure:"UPLOAD_LIMIT"`
	UploadDir          string        `mapstructure:"UPLOAD_DIR"`
	RateLimitRequests  int           `mapstructure:"RATE_LIMIT_REQUESTS"`
	RateLimitWindow    time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`
	LoginMaxAttempts   int           `mapstructure:"LOGIN_MAX_ATTEMPTS"`
	LoginLockoutWindow time.Duration `mapstructure:"LOGIN_LOCKOUT_WINDOW"`
	AccessRulesFile    string        `mapstructure:"ACCESS_RULES_FILE"`
	RequestTimeout     time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	// AccessRules overrides the built-in route table when ACCESS_RULES_FILE
	// points at a YAML/JSON document with an access_rules map.
	AccessRules map[string][]string `mapstructure:"-"`
}

// devJWTSecret is only accepted outside production; Validate rejects it there.
const devJWTSecret = "carepoint-development-secret-change-me"

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("JWT_ISSUER", "carepoint")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("UPLOAD_LIMIT", "10M")
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("RATE_LIMIT_REQUESTS", 300)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")
	v.SetDefault("LOGIN_MAX_ATTEMPTS", 5)
	v.SetDefault("LOGIN_LOCKOUT_WINDOW", "15m")
	v.SetDefault("REQUEST_TIMEOUT", "30s")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "LOG_LEVEL", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"REDIS_URL", "JWT_SECRET", "JWT_ISSUER", "TOKEN_TTL", "COOKIE_SECURE",
		"CORS_ORIGINS", "BODY_LIMIT", "UPLOAD_LIMIT", "UPLOAD_DIR",
		"RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW", "LOGIN_MAX_ATTEMPTS",
		"LOGIN_LOCKOUT_WINDOW", "ACCESS_RULES_FILE", "REQUEST_TIMEOUT",
	} {
		_ = v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) == 1 && strings.Contains(cfg.CORSOrigins[0], ",") {
		cfg.CORSOrigins = strings.Split(cfg.CORSOrigins[0], ",")
	}
	for i := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(cfg.CORSOrigins[i])
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" && !cfg.IsProduction() {
		cfg.JWTSecret = devJWTSecret
		log.Println("WARNING: JWT_SECRET is not set; using the built-in development secret.")
	}

	if cfg.AccessRulesFile != "" {
		rules, err := LoadAccessRules(cfg.AccessRulesFile)
		if err != nil {
			return nil, err
		}
		cfg.AccessRules = rules
	}

	return cfg, nil
}

// LoadAccessRules reads the access_rules section of a YAML or JSON file. Keys
// are route prefixes, optionally prefixed by an HTTP method ("POST /api/x");
// values are role names, "public", or "*".
func LoadAccessRules(path string) (map[string][]string, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read access rules %s: %w", path, err)
	}

	raw := v.GetStringMap("access_rules")
	if len(raw) == 0 {
		return nil, fmt.Errorf("access rules %s: access_rules section is empty", path)
	}

	// viper lower-cases keys; the role table normalises methods itself.
	rules := make(map[string][]string, len(raw))
	for key, val := range raw {
		roles := toStrings(val)
		if len(roles) == 0 {
			return nil, fmt.Errorf("access rules %s: %q has no roles", path, key)
		}
		rules[key] = roles
	}
	return rules, nil
}

func toStrings(val interface{}) []string {
	switch t := val.(type) {
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	case []string:
		return t
	case string:
		var out []string
		for _, s := range strings.Split(t, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.RateLimitRequests <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", c.RateLimitRequests)
	}
	if c.RateLimitWindow < time.Millisecond {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1ms, got %s", c.RateLimitWindow)
	}
	if c.LoginMaxAttempts < 0 {
		return fmt.Errorf("LOGIN_MAX_ATTEMPTS must not be negative")
	}

	if c.IsProduction() {
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 bytes in production")
		}
		if c.JWTSecret == devJWTSecret {
			return fmt.Errorf("JWT_SECRET must not be the development secret in production")
		}
		if !c.CookieSecure {
			return fmt.Errorf("COOKIE_SECURE must be true in production")
		}
	}

	return nil
}
