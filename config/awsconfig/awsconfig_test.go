package awsconfig

import (
	"testing"
	"time"

	"github.com/cshum/imgixset/api"
	"github.com/cshum/imgixset/config"
	"github.com/cshum/imgixset/storage/s3storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3Storage(t *testing.T) {
	srv := config.CreateServer([]string{
		"-aws-region", "asdf",
		"-aws-access-key-id", "asdf",
		"-aws-secret-access-key", "asdf",
		"-s3-endpoint", "http://localhost:9999",
		"-s3-force-path-style",
		"-s3-safe-chars", "!",

		"-s3-manifest-bucket", "a",
		"-s3-manifest-base-dir", "foo",
		"-s3-manifest-path-prefix", "abcd",
		"-s3-manifest-acl", "private",
		"-s3-manifest-storage-class", "STANDARD_IA",
		"-s3-manifest-cache-control", "public, max-age=300",
		"-s3-manifest-expiration", "1h",
	}, WithAWS)
	app := srv.App.(*api.API)
	require.Len(t, app.Storages, 1)
	storage := app.Storages[0].(*s3storage.S3Storage)
	assert.Equal(t, "a", storage.Bucket)
	assert.Equal(t, "/foo/", storage.BaseDir)
	assert.Equal(t, "/abcd/", storage.PathPrefix)
	assert.Equal(t, "!", storage.SafeChars)
	assert.Equal(t, "private", storage.ACL)
	assert.Equal(t, "STANDARD_IA", storage.StorageClass)
	assert.Equal(t, "public, max-age=300", storage.CacheControl)
	assert.Equal(t, time.Hour, storage.Expiration)
	assert.Equal(t, "http://localhost:9999", storage.Endpoint)
	assert.True(t, storage.ForcePathStyle)
	assert.Equal(t, "asdf", storage.Client.Options().Region)
}

func TestS3StorageWithFileStorage(t *testing.T) {
	srv := config.CreateServer([]string{
		"-aws-region", "asdf",
		"-s3-manifest-bucket", "b/bar",
		"-file-manifest-base-dir", t.TempDir(),
	}, WithAWS)
	app := srv.App.(*api.API)
	require.Len(t, app.Storages, 2)
	storage := app.Storages[0].(*s3storage.S3Storage)
	assert.Equal(t, "b", storage.Bucket)
	assert.Equal(t, "/bar", storage.BaseDir)
	assert.Equal(t, "public-read", storage.ACL)
	assert.Equal(t, "STANDARD", storage.StorageClass)
}

func TestS3StorageDisabled(t *testing.T) {
	srv := config.CreateServer([]string{
		"-aws-region", "asdf",
	}, WithAWS)
	assert.Empty(t, srv.App.(*api.API).Storages)
}
