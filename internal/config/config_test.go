package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	v.Set("JWT_SECRET", "s3cret")

	cfg, err := FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.AppPort)
	assert.True(t, cfg.IsDevelopment())
	assert.True(t, cfg.UseSQLite)
	assert.False(t, cfg.AllowAdminSignup)
	assert.Equal(t, time.Minute, cfg.AuthRateLimitWindow)
	assert.EqualValues(t, 20, cfg.AuthRateLimitMax)
	assert.False(t, cfg.PaymentsEnabled())
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	v.Set("JWT_SECRET", "s3cret")
	v.Set("APP_ENV", "Production")
	v.Set("APP_PORT", "8080")
	v.Set("USE_SQLITE", false)
	v.Set("DATABASE_DSN", "postgres://localhost/foodstore")
	v.Set("RAZORPAY_KEY_ID", "rzp_test")
	v.Set("RAZORPAY_KEY_SECRET", "secret")
	v.Set("AUTH_RATE_LIMIT_WINDOW", "30s")

	cfg, err := FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 30*time.Second, cfg.AuthRateLimitWindow)
	assert.True(t, cfg.PaymentsEnabled())
}

func TestFromViperValidation(t *testing.T) {
	_, err := FromViper(viper.New())
	assert.ErrorContains(t, err, "JWT_SECRET")

	v := viper.New()
	v.Set("JWT_SECRET", "x")
	v.Set("USE_SQLITE", false)
	_, err = FromViper(v)
	assert.ErrorContains(t, err, "DATABASE_DSN")
}
