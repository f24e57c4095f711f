package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() ServiceConfig {
	return ServiceConfig{
		S3BucketName:      "reports",
		S3Endpoint:        "http://127.0.0.1:9000",
		S3AccessKeyID:     "test-access",
		S3SecretAccessKey: "test-secret",
	}
}

func TestNewStorageServiceRequiresBucket(t *testing.T) {
	cfg := testConfig()
	cfg.S3BucketName = ""

	_, err := NewStorageService(context.Background(), cfg)
	assert.Error(t, err)
}

func TestPresignDownload(t *testing.T) {
	svc, err := NewStorageService(context.Background(), testConfig())
	require.NoError(t, err)

	raw, err := svc.PresignDownload(context.Background(), "reports/u1/abc.json", 15*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", u.Host)
	assert.Equal(t, "/reports/reports/u1/abc.json", u.Path, "path-style addressing")
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.True(t, strings.HasPrefix(u.Query().Get("X-Amz-Credential"), "test-access/"))
}
