package core

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Setenv("ENV", "")

	conf := NewConfig()
	assert.Equal(t, "DEV", conf.Env)
	assert.True(t, conf.Debug)
	assert.False(t, conf.TestMode)
	assert.Equal(t, "SkillForge", conf.AppName)
	assert.Empty(t, conf.SecretKey)
	assert.Equal(t, ":8000", conf.Server.Address())
	assert.Equal(t, 7*24*time.Hour, conf.Server.JWTExpirationDelta)
	assert.Equal(t, "/stores", conf.Upstream.TenantsPath)
	assert.Equal(t, time.Hour, conf.Tenant.CacheTTL)
	assert.Equal(t, "memory", conf.State.Backend)
	assert.Equal(t, "localhost:5432", conf.Database.Address())
}

func TestNewConfigEnvOverrides(t *testing.T) {
	t.Setenv("ENV", "TEST")
	t.Setenv("TEST_SECRETKEY", "s3cret")
	t.Setenv("TEST_UPSTREAMBASEURL", "http://backend:9000")
	t.Setenv("TEST_TENANTCACHETTL", "30m")

	conf := NewConfig()
	assert.Equal(t, "TEST", conf.Env)
	assert.True(t, conf.TestMode)
	assert.Equal(t, "s3cret", conf.SecretKey)
	assert.Equal(t, "http://backend:9000", conf.Upstream.BaseURL)
	assert.Equal(t, 30*time.Minute, conf.Tenant.CacheTTL)
}

func TestFromEmail(t *testing.T) {
	conf := &Config{AppName: "SkillForge", DefaultFromEmail: "noreply@skillforge.test"}
	addr := conf.FromEmail()
	assert.Equal(t, "SkillForge", addr.Name)
	assert.Equal(t, "noreply@skillforge.test", addr.Address)
}

func TestShutdownErrors(t *testing.T) {
	err := NewShutdownError("state store gone")
	assert.True(t, IsShutdown(err))
	assert.True(t, IsShutdown(errors.Wrap(err, "handling request")))
	assert.False(t, IsShutdown(errors.New("boom")))
}
