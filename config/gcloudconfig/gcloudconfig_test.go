package gcloudconfig

import (
	"testing"
	"time"

	"github.com/cshum/imgixset/api"
	"github.com/cshum/imgixset/config"
	"github.com/cshum/imgixset/storage/gcloudstorage"
	"github.com/fsouza/fake-gcs-server/fakestorage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeGCSServer(t *testing.T) *fakestorage.Server {
	t.Setenv("STORAGE_EMULATOR_HOST", "localhost:12345")
	svr, err := fakestorage.NewServerWithOptions(fakestorage.Options{
		Host: "localhost", Port: 12345,
	})
	require.NoError(t, err)
	return svr
}

func TestGCSStorage(t *testing.T) {
	svr := fakeGCSServer(t)
	defer svr.Stop()

	srv := config.CreateServer([]string{
		"-gcloud-safe-chars", "!",

		"-gcloud-manifest-bucket", "a",
		"-gcloud-manifest-base-dir", "foo",
		"-gcloud-manifest-path-prefix", "abcd",
		"-gcloud-manifest-acl", "publicRead",
		"-gcloud-manifest-cache-control", "no-cache",
		"-gcloud-manifest-expiration", "30m",
	}, WithGCloud)
	app := srv.App.(*api.API)
	require.Len(t, app.Storages, 1)
	storage := app.Storages[0].(*gcloudstorage.GCloudStorage)
	assert.Equal(t, "a", storage.Bucket)
	assert.Equal(t, "foo", storage.BaseDir)
	assert.Equal(t, "/abcd/", storage.PathPrefix)
	assert.Equal(t, "!", storage.SafeChars)
	assert.Equal(t, "publicRead", storage.ACL)
	assert.Equal(t, "no-cache", storage.CacheControl)
	assert.Equal(t, time.Minute*30, storage.Expiration)
}

func TestGCSStorageDisabled(t *testing.T) {
	srv := config.CreateServer([]string{
		"-gcloud-safe-chars", "!",
	}, WithGCloud)
	assert.Empty(t, srv.App.(*api.API).Storages)
}
