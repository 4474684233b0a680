package config

import (
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse("qcampaign", []string{"-token-secret", "s3cret"}, flag.ContinueOnError)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:80", cfg.Addr)
	assert.Equal(t, "qcampaign.sqlite", cfg.DBUrl)
	assert.Equal(t, 2*time.Minute, cfg.TokenTTL)
	assert.Equal(t, "admin", cfg.AdminUser)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "http://localhost:80", cfg.Url())
}

func TestParseEnvironment(t *testing.T) {
	t.Setenv("QCAMPAIGN_PORT", "8080")
	t.Setenv("QCAMPAIGN_TOKEN_SECRET", "from-env")
	t.Setenv("QCAMPAIGN_TOKEN_TTL", "30")
	t.Setenv("QCAMPAIGN_DEBUG", "true")

	cfg, err := Parse("qcampaign", nil, flag.ContinueOnError)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr)
	assert.Equal(t, "from-env", cfg.TokenSecret)
	assert.Equal(t, 30*time.Second, cfg.TokenTTL)
	assert.True(t, cfg.Debug)

	cfg, err = Parse("qcampaign", []string{"-port", "9000", "-host", "127.0.0.1", "-debug=false"}, flag.ContinueOnError)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.False(t, cfg.Debug)
}

func TestParseRequiresTokenSecret(t *testing.T) {
	_, err := Parse("qcampaign", nil, flag.ContinueOnError)
	assert.EqualError(t, err, "missing parameter -token-secret")

	t.Setenv("QCAMPAIGN_PORT", "not-a-port")
	_, err = Parse("qcampaign", []string{"-token-secret", "x"}, flag.ContinueOnError)
	assert.Error(t, err)
}
