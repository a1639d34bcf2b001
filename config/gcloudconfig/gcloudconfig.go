package gcloudconfig

import (
	"context"
	"flag"

	"cloud.google.com/go/storage"
	"github.com/cshum/imgixset/api"
	"github.com/cshum/imgixset/config"
	"github.com/cshum/imgixset/storage/gcloudstorage"
)

// WithGCloud with Google Cloud manifest storage config option
func WithGCloud(fs *flag.FlagSet, cb config.Callback) api.Option {
	var (
		gcloudSafeChars = fs.String("gcloud-safe-chars", "",
			"Google Cloud safe characters to be excluded from key escape")

		gcloudManifestBucket = fs.String("gcloud-manifest-bucket", "",
			"Bucket name for Google Cloud Manifest Storage. Enable Google Cloud Manifest Storage only if this value present")
		gcloudManifestBaseDir = fs.String("gcloud-manifest-base-dir", "",
			"Base directory for Google Cloud Manifest Storage")
		gcloudManifestPathPrefix = fs.String("gcloud-manifest-path-prefix", "",
			"Base path prefix for Google Cloud Manifest Storage")
		gcloudManifestACL = fs.String("gcloud-manifest-acl", "",
			"Upload ACL for Google Cloud Manifest Storage")
		gcloudManifestCacheControl = fs.String("gcloud-manifest-cache-control", "",
			"Cache-Control of objects published to Google Cloud Manifest Storage")
		gcloudManifestExpiration = fs.Duration("gcloud-manifest-expiration", 0,
			"Google Cloud Manifest Storage expiration duration e.g. 24h. Default no expiration")

		_, _ = cb()
	)
	return func(app *api.API) {
		if *gcloudManifestBucket == "" {
			return
		}
		// credentials from GOOGLE_APPLICATION_CREDENTIALS, or STORAGE_EMULATOR_HOST
		client, err := storage.NewClient(context.Background())
		if err != nil {
			panic(err)
		}
		app.Storages = append(app.Storages,
			gcloudstorage.New(client, *gcloudManifestBucket,
				gcloudstorage.WithPathPrefix(*gcloudManifestPathPrefix),
				gcloudstorage.WithBaseDir(*gcloudManifestBaseDir),
				gcloudstorage.WithACL(*gcloudManifestACL),
				gcloudstorage.WithSafeChars(*gcloudSafeChars),
				gcloudstorage.WithCacheControl(*gcloudManifestCacheControl),
				gcloudstorage.WithExpiration(*gcloudManifestExpiration),
			),
		)
	}
}
