package configs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromLookupDefaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 3001, cfg.Port)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Empty(t, cfg.DatabaseDSN)
	assert.False(t, cfg.StorageEnabled())
}

func TestFromLookupValues(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"ENVIRONMENT":          "production",
		"PORT":                 "8080",
		"ALLOWED_ORIGINS":      " https://a.example , ,https://b.example",
		"JWT_SECRET":           "s3cret",
		"DATABASE_URL":         "postgres://localhost/tracker",
		"S3_BUCKET_NAME":       "reports",
		"S3_ENDPOINT":          "https://s3.example",
		"S3_ACCESS_KEY_ID":     "key",
		"S3_SECRET_ACCESS_KEY": "secret",
	}))
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, "postgres://localhost/tracker", cfg.DatabaseDSN)
	assert.True(t, cfg.StorageEnabled())
}

func TestFromLookupErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "non numeric port", env: map[string]string{"PORT": "abc"}},
		{name: "privileged port", env: map[string]string{"PORT": "80"}},
		{name: "missing secret in production", env: map[string]string{"ENVIRONMENT": "production"}},
		{name: "partial s3", env: map[string]string{"S3_BUCKET_NAME": "reports"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromLookup(lookupFrom(tt.env))
			assert.Error(t, err)
		})
	}
}
