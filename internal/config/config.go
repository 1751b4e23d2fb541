package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type AppConfig struct {
	API       *APIConfig       `mapstructure:"api"`
	Gin       *GinConfig       `mapstructure:"gin"`
	Database  *DatabaseConfig  `mapstructure:"database"`
	Postgres  *PostgresConfig  `mapstructure:"postgres"`
	Redis     *RedisConfig     `mapstructure:"redis"`
	RateLimit *RateLimitConfig `mapstructure:"rate_limit"`
	Draw      *DrawConfig      `mapstructure:"draw"`
	Admin     *AdminConfig     `mapstructure:"admin"`
}

type APIConfig struct {
	Port               string        `mapstructure:"port"`
	Environment        string        `mapstructure:"environment"`
	BaseURL            string        `mapstructure:"base_url"`
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string        `mapstructure:"jwt_signing_key"`
	JWTTTL             time.Duration `mapstructure:"jwt_ttl"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver       string        `mapstructure:"driver"`
	SQLitePath   string        `mapstructure:"sqlite_path"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
	HashCost     int           `mapstructure:"hash_cost"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LimitConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Window      time.Duration `mapstructure:"window"`
}

type RateLimitConfig struct {
	Store         string        `mapstructure:"store"`
	Identifier    LimitConfig   `mapstructure:"identifier"`
	Address       LimitConfig   `mapstructure:"address"`
	Timeout       time.Duration `mapstructure:"timeout"`
	SweepSchedule string        `mapstructure:"sweep_schedule"`
	KeyPrefix     string        `mapstructure:"key_prefix"`
}

type DrawConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type AdminConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

const (
	StoreMemory   = "memory"
	StoreDatabase = "database"
	StoreRedis    = "redis"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.allowed_cors_domains", []string{"http://localhost:3000"})
	v.SetDefault("api.jwt_signing_key", "")
	v.SetDefault("api.jwt_ttl", 12*time.Hour)

	v.SetDefault("gin.mode", "debug")

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.sqlite_path", "contest.db")
	v.SetDefault("database.query_timeout", 5*time.Second)
	v.SetDefault("database.hash_cost", 10)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.dbname", "contest")
	v.SetDefault("postgres.sslmode", "disable")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("rate_limit.store", StoreDatabase)
	v.SetDefault("rate_limit.identifier.max_attempts", 1)
	v.SetDefault("rate_limit.identifier.window", 5*time.Minute)
	v.SetDefault("rate_limit.address.max_attempts", 10)
	v.SetDefault("rate_limit.address.window", time.Hour)
	v.SetDefault("rate_limit.timeout", 2*time.Second)
	v.SetDefault("rate_limit.sweep_schedule", "@every 10m")
	v.SetDefault("rate_limit.key_prefix", "contest:rl:")

	v.SetDefault("draw.max_attempts", 5)
	v.SetDefault("draw.timeout", 5*time.Second)

	v.SetDefault("admin.email", "")
	v.SetDefault("admin.password", "")
	v.SetDefault("admin.name", "Administrator")
}

func newViper(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine, defaults and environment still apply.
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
		}
	}

	return v, nil
}

func decode(v *viper.Viper) (*AppConfig, error) {
	var conf AppConfig
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}

	return &conf, nil
}

func Load(path string) (*AppConfig, error) {
	v, err := newViper(path)
	if err != nil {
		return nil, err
	}

	return decode(v)
}

// Watch reloads the file on every change and hands the new configuration to
// onChange. Invalid edits are logged and ignored.
func Watch(path string, onChange func(*AppConfig)) error {
	v, err := newViper(path)
	if err != nil {
		return err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		conf, err := decode(v)
		if err != nil {
			zap.L().Warn("ignoring invalid config change", zap.String("file", e.Name), zap.Error(err))
			return
		}

		zap.L().Info("config reloaded", zap.String("file", e.Name), zap.String("op", e.Op.String()))
		onChange(conf)
	})
	v.WatchConfig()

	return nil
}

func (c *AppConfig) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}

	switch c.RateLimit.Store {
	case StoreMemory, StoreDatabase, StoreRedis:
	default:
		return fmt.Errorf("unsupported rate_limit.store %q", c.RateLimit.Store)
	}

	for name, l := range map[string]LimitConfig{
		"identifier": c.RateLimit.Identifier,
		"address":    c.RateLimit.Address,
	} {
		if l.MaxAttempts < 0 {
			return fmt.Errorf("rate_limit.%s.max_attempts must not be negative", name)
		}
		if l.Window <= 0 {
			return fmt.Errorf("rate_limit.%s.window must be positive", name)
		}
	}

	if c.Draw.MaxAttempts < 1 {
		return errors.New("draw.max_attempts must be at least 1")
	}

	if c.Admin.Email != "" && c.Admin.Password == "" {
		return errors.New("admin.password is required when admin.email is set")
	}

	return nil
}
