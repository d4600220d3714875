package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTConfig(t *testing.T) {
	tests := []struct {
		name      string
		secret    string
		hours     int
		wantHours int
		wantErr   bool
	}{
		{name: "default expiration", secret: "s", hours: 0, wantHours: 24},
		{name: "custom expiration", secret: "s", hours: 48, wantHours: 48},
		{name: "minimum expiration", secret: "s", hours: 1, wantHours: 1},
		{name: "negative expiration", secret: "s", hours: -1, wantErr: true},
		{name: "missing secret", secret: "", hours: 24, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewJWTConfig(tt.secret, tt.hours)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHours, cfg.ExpirationHours)
		})
	}
}

func TestConfig_JWT(t *testing.T) {
	cfg := &Config{Auth: AuthConfig{JWTSecret: "secret", JWTExpirationHours: 12}}

	jwtCfg, err := cfg.JWT()
	require.NoError(t, err)
	assert.Equal(t, "secret", jwtCfg.Secret)
	assert.Equal(t, 12, jwtCfg.ExpirationHours)
}
