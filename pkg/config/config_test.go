package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "checkout-coordinator", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, ":8080", cfg.HTTP.Addr()[len(cfg.HTTP.Addr())-5:])
	assert.Equal(t, int64(1000), cfg.Order.DefaultAmount)
	assert.Equal(t, "usd", cfg.Order.DefaultCurrency)
	assert.InDelta(t, 0.05, cfg.Payout.FeeRate, 1e-9)
	assert.Equal(t, 336*time.Hour, cfg.Payout.Delay)
	assert.Equal(t, 5*time.Minute, cfg.Processor.WebhookTolerance)
	assert.False(t, cfg.Simulation.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PLATFORM_FEE_RATE", "0.1")
	t.Setenv("PAYOUT_DELAY", "24h")
	t.Setenv("DEFAULT_ORDER_AMOUNT", "5000")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 0.1, cfg.Payout.FeeRate, 1e-9)
	assert.Equal(t, 24*time.Hour, cfg.Payout.Delay)
	assert.Equal(t, int64(5000), cfg.Order.DefaultAmount)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{
			name: "fee rate вне диапазона",
			env: map[string]string{
				"PLATFORM_FEE_RATE": "1.5",
			},
			wantErr: true,
		},
		{
			name: "отрицательный fee rate",
			env: map[string]string{
				"PLATFORM_FEE_RATE": "-0.1",
			},
			wantErr: true,
		},
		{
			name: "симуляция запрещена в production",
			env: map[string]string{
				"APP_ENV":                  "production",
				"DEV_SIMULATION_ENABLED":   "true",
				"PROCESSOR_WEBHOOK_SECRET": "whsec_x",
			},
			wantErr: true,
		},
		{
			name: "production без webhook секрета",
			env: map[string]string{
				"APP_ENV": "production",
			},
			wantErr: true,
		},
		{
			name: "production без секрета, но с явным разрешением",
			env: map[string]string{
				"APP_ENV":                             "production",
				"PROCESSOR_ALLOW_UNVERIFIED_WEBHOOKS": "true",
			},
			wantErr: false,
		},
		{
			name: "валидный production",
			env: map[string]string{
				"APP_ENV":                  "production",
				"PROCESSOR_WEBHOOK_SECRET": "whsec_x",
			},
			wantErr: false,
		},
		{
			name: "симуляция разрешена в development",
			env: map[string]string{
				"DEV_SIMULATION_ENABLED": "true",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessorConfig_WebhookDegraded(t *testing.T) {
	assert.True(t, ProcessorConfig{}.WebhookDegraded())
	assert.False(t, ProcessorConfig{WebhookSecret: "whsec_x"}.WebhookDegraded())
}

func TestIdentityConfig_Enabled(t *testing.T) {
	assert.False(t, IdentityConfig{}.Enabled())
	assert.True(t, IdentityConfig{JWTSecret: "s"}.Enabled())
}
