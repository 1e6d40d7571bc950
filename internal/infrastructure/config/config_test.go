package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgcledger/internal/domain/chart"
	"pgcledger/internal/domain/posting"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 24*time.Hour, cfg.Redis.RateTTL)
	assert.False(t, cfg.RedisEnabled())
	assert.Error(t, cfg.RequireDSN())

	s := cfg.PayrollSettings()
	assert.Equal(t, "190.666666667", s.HoursPerMonth.String())
	assert.Equal(t, "3", s.EmployeeRate.String())
	assert.Equal(t, "8", s.EmployerRate.String())
	assert.Equal(t, "30000", s.ExemptionCap.String())

	assert.Equal(t, posting.DefaultAccountMap(), cfg.AccountMap())
}

func TestFromViper_Environment(t *testing.T) {
	t.Setenv("PGC_DATABASE_DSN", "postgres://ledger@localhost/ledger")
	t.Setenv("PGC_REDIS_ADDR", "localhost:6379")
	t.Setenv("PGC_LOG_LEVEL", "debug")
	t.Setenv("PGC_DATABASE_MAX_CONNS", "5")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	require.NoError(t, cfg.RequireDSN())
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, "localhost:6379", cfg.CacheRedisConfig().Addr)
	assert.Equal(t, "debug", cfg.LoggerConfig().Level)

	pc := cfg.PoolConfig()
	assert.Equal(t, "postgres://ledger@localhost/ledger", pc.DSN)
	assert.Equal(t, int32(5), pc.MaxConns)
}

func TestFromViper_PostingOverrides(t *testing.T) {
	v := viper.New()
	v.Set("posting.accounts", map[string]any{"bank": "12.1, 12*"})

	cfg, err := FromViper(v)
	require.NoError(t, err)

	m := cfg.AccountMap()
	assert.Equal(t, []chart.Candidate{chart.Exact("12.1"), chart.Prefix("12")}, m[posting.RoleBank])
	assert.Equal(t, posting.DefaultAccountMap()[posting.RoleCash], m[posting.RoleCash])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]any
	}{
		{"unknown role", map[string]any{"posting.accounts": map[string]any{"petty_cash": "45"}}},
		{"negative rate", map[string]any{"payroll.employee_rate": "-1"}},
		{"bad cap", map[string]any{"payroll.exemption_cap": "lots"}},
		{"weekly hours", map[string]any{"payroll.weekly_hours": 0}},
		{"min above max", map[string]any{"database.min_conns": 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.set {
				v.Set(k, val)
			}
			_, err := FromViper(v)
			assert.Error(t, err)
		})
	}
}
