package awsconfig

import (
	"context"
	"flag"

	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/cshum/imgixset/api"
	"github.com/cshum/imgixset/config"
	"github.com/cshum/imgixset/storage/s3storage"
)

// WithAWS with AWS S3 manifest storage config option
func WithAWS(fs *flag.FlagSet, cb config.Callback) api.Option {
	var (
		awsRegion = fs.String("aws-region", "",
			"AWS Region. Required if using S3 Manifest Storage")
		awsAccessKeyID = fs.String("aws-access-key-id", "",
			"AWS Access Key ID. Default credential chain if empty")
		awsSecretAccessKey = fs.String("aws-secret-access-key", "",
			"AWS Secret Access Key. Default credential chain if empty")
		awsSessionToken = fs.String("aws-session-token", "",
			"AWS Session Token. Optional temporary credentials token")
		s3Endpoint = fs.String("s3-endpoint", "",
			"Optional S3 Endpoint to override default")
		s3ForcePathStyle = fs.Bool("s3-force-path-style", false,
			"S3 force the request to use path-style addressing s3.amazonaws.com/bucket/key, instead of bucket.s3.amazonaws.com/key")
		s3SafeChars = fs.String("s3-safe-chars", "",
			"S3 safe characters to be excluded from key escape. Set -- for no-op")

		s3ManifestBucket = fs.String("s3-manifest-bucket", "",
			"S3 Bucket for S3 Manifest Storage. Enable S3 Manifest Storage only if this value present")
		s3ManifestBaseDir = fs.String("s3-manifest-base-dir", "",
			"Base directory for S3 Manifest Storage")
		s3ManifestPathPrefix = fs.String("s3-manifest-path-prefix", "",
			"Base path prefix for S3 Manifest Storage")
		s3ManifestACL = fs.String("s3-manifest-acl", "public-read",
			"Upload ACL for S3 Manifest Storage")
		s3ManifestStorageClass = fs.String("s3-manifest-storage-class", "STANDARD",
			"S3 File Storage Class. Available values: REDUCED_REDUNDANCY, STANDARD_IA, ONEZONE_IA, INTELLIGENT_TIERING, GLACIER, DEEP_ARCHIVE. Default: STANDARD")
		s3ManifestCacheControl = fs.String("s3-manifest-cache-control", "",
			"Cache-Control of objects published to S3 Manifest Storage")
		s3ManifestExpiration = fs.Duration("s3-manifest-expiration", 0,
			"S3 Manifest Storage expiration duration e.g. 24h. Default no expiration")

		_, _ = cb()
	)
	return func(app *api.API) {
		if *s3ManifestBucket == "" {
			return
		}
		var opts []func(*awscfg.LoadOptions) error
		if *awsRegion != "" {
			opts = append(opts, awscfg.WithRegion(*awsRegion))
		}
		if *awsAccessKeyID != "" && *awsSecretAccessKey != "" {
			opts = append(opts, awscfg.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(
					*awsAccessKeyID, *awsSecretAccessKey, *awsSessionToken)))
		}
		cfg, err := awscfg.LoadDefaultConfig(context.Background(), opts...)
		if err != nil {
			panic(err)
		}
		app.Storages = append(app.Storages,
			s3storage.New(cfg, *s3ManifestBucket,
				s3storage.WithEndpoint(*s3Endpoint),
				s3storage.WithForcePathStyle(*s3ForcePathStyle),
				s3storage.WithPathPrefix(*s3ManifestPathPrefix),
				s3storage.WithBaseDir(*s3ManifestBaseDir),
				s3storage.WithACL(*s3ManifestACL),
				s3storage.WithSafeChars(*s3SafeChars),
				s3storage.WithStorageClass(*s3ManifestStorageClass),
				s3storage.WithCacheControl(*s3ManifestCacheControl),
				s3storage.WithExpiration(*s3ManifestExpiration),
			),
		)
	}
}
