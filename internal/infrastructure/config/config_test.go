package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "campus-ledger", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "ledger", cfg.Database.DBName)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 10, cfg.Ledger.InvoiceDueDay)
	assert.True(t, cfg.Ledger.AutoIssueInvoices)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "log", cfg.Notification.Provider)
	assert.Equal(t, "15 0 * * *", cfg.Scheduler.OverdueCronSchedule)
	assert.Equal(t, "0 1 1 * *", cfg.Scheduler.MonthlyInvoiceSchedule)
	assert.Equal(t, 36*time.Hour, cfg.Scheduler.RunOnceTTL)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("LEDGER_APP_PORT", "9000")
	t.Setenv("LEDGER_DATABASE_HOST", "db.internal")
	t.Setenv("LEDGER_DATABASE_PASSWORD", "p@ss word")
	t.Setenv("LEDGER_LEDGER_INVOICE_DUE_DAY", "5")
	t.Setenv("LEDGER_REDIS_ENABLED", "true")
	t.Setenv("LEDGER_SCHEDULER_RETRY_DELAY", "30s")

	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5, cfg.Ledger.InvoiceDueDay)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Scheduler.RetryDelay)
	assert.Contains(t, cfg.Database.DSN(), "p%40ss%20word")
}

func TestLoad_TOMLFile(t *testing.T) {
	v := viper.New()
	v.SetConfigType("toml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
[storage]
driver = "s3"
bucket = "vouchers-prod"
region = "eu-west-1"

[notification]
enabled = true
provider = "twilio"
twilio_account_sid = "AC123"
twilio_auth_token = "secret"
from_number = "+15005550006"
`)))

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "vouchers-prod", cfg.Storage.Bucket)
	assert.Equal(t, "twilio", cfg.Notification.Provider)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"idle above open", func(c *Config) { c.Database.MaxIdleConns = 100 }, "max_idle_conns"},
		{"due day out of range", func(c *Config) { c.Ledger.InvoiceDueDay = 31 }, "invoice_due_day"},
		{"s3 without bucket", func(c *Config) { c.Storage.Driver = "s3" }, "storage.bucket"},
		{"unknown storage driver", func(c *Config) { c.Storage.Driver = "ftp" }, "storage.driver"},
		{"twilio without credentials", func(c *Config) {
			c.Notification.Enabled = true
			c.Notification.Provider = "twilio"
		}, "twilio"},
		{"production short secret", func(c *Config) {
			c.App.Env = "production"
			c.JWT.Secret = "short"
		}, "32 characters"},
		{"production open swagger", func(c *Config) {
			c.App.Env = "production"
			c.JWT.Secret = strings.Repeat("k", 32)
			c.Database.Password = "pw"
			c.Database.SSLMode = "require"
			c.Swagger.Enabled = true
		}, "swagger"},
		{"sampling ratio", func(c *Config) { c.Telemetry.SamplingRatio = 1.5 }, "sampling_ratio"},
		{"profiling without server", func(c *Config) { c.Profiling.Enabled = true }, "server_address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
