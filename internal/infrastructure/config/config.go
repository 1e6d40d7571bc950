// Package config loads runtime settings from config.toml and PGC_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"pgcledger/internal/domain/payroll"
	"pgcledger/internal/domain/posting"
	"pgcledger/internal/infrastructure/cache"
	"pgcledger/internal/infrastructure/storage/postgres"
	"pgcledger/pkg/logger"
)

// EnvPrefix is prepended to every environment key: database.dsn is read
// from PGC_DATABASE_DSN.
const EnvPrefix = "PGC"

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Redis    RedisConfig
	Posting  PostingConfig
	Payroll  PayrollConfig
}

type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	MigrateOnStart  bool
}

type LogConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// RedisConfig enables the shared rate cache when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	RateTTL  time.Duration
}

// PostingConfig overrides posting-role candidates, e.g.
// bank = "43, 43*, 12*".
type PostingConfig struct {
	Accounts map[string]string
}

type PayrollConfig struct {
	WeeklyHours  int
	EmployeeRate string
	EmployerRate string
	ExemptionCap string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("database.max_conns", 25)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", time.Hour)
	v.SetDefault("database.max_conn_idle_time", 30*time.Minute)
	v.SetDefault("database.migrate_on_start", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.rate_ttl", 24*time.Hour)

	v.SetDefault("payroll.weekly_hours", 44)
	v.SetDefault("payroll.employee_rate", "3")
	v.SetDefault("payroll.employer_rate", "8")
	v.SetDefault("payroll.exemption_cap", "30000")
}

// Load reads config.toml from the working directory or /etc/pgcledger
// (optional), then applies environment overrides.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/pgcledger")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Addr:            v.GetString("server.addr"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			IdleTimeout:     v.GetDuration("server.idle_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Database: DatabaseConfig{
			DSN:             v.GetString("database.dsn"),
			MaxConns:        v.GetInt32("database.max_conns"),
			MinConns:        v.GetInt32("database.min_conns"),
			MaxConnLifetime: v.GetDuration("database.max_conn_lifetime"),
			MaxConnIdleTime: v.GetDuration("database.max_conn_idle_time"),
			MigrateOnStart:  v.GetBool("database.migrate_on_start"),
		},
		Log: LogConfig{
			Level:       v.GetString("log.level"),
			Development: v.GetBool("log.development"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			RateTTL:  v.GetDuration("redis.rate_ttl"),
		},
		Posting: PostingConfig{
			Accounts: v.GetStringMapString("posting.accounts"),
		},
		Payroll: PayrollConfig{
			WeeklyHours:  v.GetInt("payroll.weekly_hours"),
			EmployeeRate: v.GetString("payroll.employee_rate"),
			EmployerRate: v.GetString("payroll.employer_rate"),
			ExemptionCap: v.GetString("payroll.exemption_cap"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted. The DSN is checked by
// the commands that open a database.
func (c *Config) Validate() error {
	if c.Database.MaxConns <= 0 {
		return fmt.Errorf("database.max_conns must be positive")
	}
	if c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns must be between 0 and max_conns")
	}
	if c.Payroll.WeeklyHours <= 0 || c.Payroll.WeeklyHours > 168 {
		return fmt.Errorf("payroll.weekly_hours must be between 1 and 168")
	}
	for key, raw := range map[string]string{
		"payroll.employee_rate": c.Payroll.EmployeeRate,
		"payroll.employer_rate": c.Payroll.EmployerRate,
		"payroll.exemption_cap": c.Payroll.ExemptionCap,
	} {
		d, err := decimal.NewFromString(raw)
		if err != nil || d.IsNegative() {
			return fmt.Errorf("%s must be a non-negative number, got %q", key, raw)
		}
	}
	if _, unknown := posting.DefaultAccountMap().WithOverrides(c.Posting.Accounts); len(unknown) > 0 {
		return fmt.Errorf("unknown posting roles: %s", strings.Join(unknown, ", "))
	}
	return nil
}

// RequireDSN fails when no database is configured.
func (c *Config) RequireDSN() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required (set %s_DATABASE_DSN)", EnvPrefix)
	}
	return nil
}

func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:       c.Log.Level,
		Development: c.Log.Development,
	}
}

func (c *Config) PoolConfig() postgres.PoolConfig {
	pc := postgres.DefaultPoolConfig(c.Database.DSN)
	pc.MaxConns = c.Database.MaxConns
	pc.MinConns = c.Database.MinConns
	pc.MaxConnLifetime = c.Database.MaxConnLifetime
	pc.MaxConnIdleTime = c.Database.MaxConnIdleTime
	return pc
}

func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

func (c *Config) CacheRedisConfig() cache.RedisConfig {
	return cache.RedisConfig{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	}
}

// AccountMap is the default candidate chains with the configured overrides.
func (c *Config) AccountMap() posting.AccountMap {
	m, _ := posting.DefaultAccountMap().WithOverrides(c.Posting.Accounts)
	return m
}

// PayrollSettings converts the payroll section. Values were checked by
// Validate.
func (c *Config) PayrollSettings() payroll.Settings {
	s := payroll.DefaultSettings()
	weekly := decimal.NewFromInt(int64(c.Payroll.WeeklyHours))
	s.HoursPerMonth = weekly.Mul(decimal.NewFromInt(52)).DivRound(decimal.NewFromInt(12), 9)
	s.EmployeeRate = decimal.RequireFromString(c.Payroll.EmployeeRate)
	s.EmployerRate = decimal.RequireFromString(c.Payroll.EmployerRate)
	s.ExemptionCap = decimal.RequireFromString(c.Payroll.ExemptionCap)
	return s
}
