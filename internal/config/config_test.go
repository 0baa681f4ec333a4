package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"APP_ENV": "test", "APP_PORT": "8080", "DB_USER": "u", "DB_HOST": "localhost",
		"DB_PORT": "3306", "DB_NAME": "projectdesk", "JWT_SECRET": "s3cret",
	} {
		t.Setenv(k, v)
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	cfg := Load()
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, time.Hour, cfg.TokenTTL())
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, uint64(1), cfg.AdminRoleID)
	assert.Equal(t, []int{1, 2}, cfg.SubSubmenuActions)
	assert.False(t, cfg.EventsEnabled)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("TOKEN_TTL_MIN", "15")
	t.Setenv("ADMIN_ROLE_ID", "4")
	t.Setenv("MENU_SUBSUBMENU_ACTIONS", " 3, x,7 ,")
	t.Setenv("EVENTS_ENABLED", "yes")
	t.Setenv("RABBITMQ_URL", "amqp://mq:5672/")

	cfg := Load()
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL())
	assert.Equal(t, uint64(4), cfg.AdminRoleID)
	assert.Equal(t, []int{3, 7}, cfg.SubSubmenuActions)
	assert.True(t, cfg.EventsEnabled)
	assert.Equal(t, "amqp://mq:5672/", cfg.RabbitURL)
}

func TestParseRoleID(t *testing.T) {
	for in, want := range map[string]uint64{"": 1, "1": 1, " 7 ": 7} {
		got, err := parseRoleID(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"0", "-1", "-9223372036854775808", "admin", "1.5"} {
		_, err := parseRoleID(in)
		assert.Error(t, err, in)
	}
}

func TestRateLimitNormalize(t *testing.T) {
	c := RateLimitConfig{Capacity: 0, RefillTokens: -1, TTL: time.Second}.normalize()
	assert.Equal(t, 1, c.Capacity)
	assert.Equal(t, 1, c.RefillTokens)
	assert.Equal(t, time.Second, c.RefillInterval)
	assert.Equal(t, 5*time.Second, c.TTL)
}

func TestCacheConfigMethods(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head ,")
	c := LoadCacheConfig()
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, c.Methods)
	assert.Equal(t, "pd:cache", c.Prefix)
}
