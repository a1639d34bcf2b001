package config

import (
	"flag"

	"github.com/cshum/imgixset/api"
	"github.com/cshum/imgixset/storage/filestorage"
)

// WithFile with file system manifest storage config option
func WithFile(fs *flag.FlagSet, cb Callback) api.Option {
	var (
		fileSafeChars = fs.String("file-safe-chars", "",
			"File safe characters to be excluded from key escape")
		fileManifestBaseDir = fs.String("file-manifest-base-dir", "",
			"Base directory for File Manifest Storage. Enable File Manifest Storage only if this value present")
		fileManifestPathPrefix = fs.String("file-manifest-path-prefix", "",
			"Base path prefix for File Manifest Storage")
		fileManifestMkdirPermission = fs.String("file-manifest-mkdir-permission", "0755",
			"File Manifest Storage mkdir permission")
		fileManifestWritePermission = fs.String("file-manifest-write-permission", "0666",
			"File Manifest Storage write permission")
		fileManifestSaveErrIfExists = fs.Bool("file-manifest-save-err-if-exists", false,
			"File Manifest Storage refuses to overwrite published manifests")
		fileManifestExpiration = fs.Duration("file-manifest-expiration", 0,
			"File Manifest Storage expiration duration e.g. 24h. Default no expiration")

		_, _ = cb()
	)
	return func(app *api.API) {
		if *fileManifestBaseDir != "" {
			app.Storages = append(app.Storages,
				filestorage.New(
					*fileManifestBaseDir,
					filestorage.WithPathPrefix(*fileManifestPathPrefix),
					filestorage.WithMkdirPermission(*fileManifestMkdirPermission),
					filestorage.WithWritePermission(*fileManifestWritePermission),
					filestorage.WithSafeChars(*fileSafeChars),
					filestorage.WithSaveErrIfExists(*fileManifestSaveErrIfExists),
					filestorage.WithExpiration(*fileManifestExpiration),
				),
			)
		}
	}
}
