package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("EXPOSE_OTP_IN_RESPONSE", "")
	t.Setenv("OTP_TTL_MINUTES", "")
	t.Setenv("OTP_STORE", "")

	cfg := Load()
	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.Empty(t, cfg.OTPStore)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.Equal(t, time.Hour, cfg.ResetTokenTTL)
	assert.False(t, cfg.ExposeOTP)
	assert.False(t, cfg.RevealOTP())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "DYNAMO")
	t.Setenv("OTP_TTL_MINUTES", "30")
	t.Setenv("RATE_LIMIT_PER_SECOND", "2.5")
	t.Setenv("OTP_STORE", "Redis")

	cfg := Load()
	assert.Equal(t, BackendDynamo, cfg.StoreBackend)
	assert.Equal(t, 30*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 2.5, cfg.RateLimitPerSecond)
	assert.Equal(t, BackendRedis, cfg.OTPStore)
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv("OTP_TTL_MINUTES", "ten")
	assert.Equal(t, 10*time.Minute, Load().OTPTTL)
}

func TestRevealOTP_NeverInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "Production")
	t.Setenv("EXPOSE_OTP_IN_RESPONSE", "true")

	cfg := Load()
	assert.True(t, cfg.ExposeOTP)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.RevealOTP())
}

func TestRevealOTP_OptInOutsideProduction(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	t.Setenv("EXPOSE_OTP_IN_RESPONSE", "true")
	assert.True(t, Load().RevealOTP())
}
