package config

import (
	"flag"
	"os"
	"time"

	"github.com/cshum/imgixset"
	"github.com/cshum/imgixset/api"
	"github.com/cshum/imgixset/ixparams"
	"gopkg.in/yaml.v3"
)

// NewAPI creates api.API with builder of imgix flags, applying funcs
func NewAPI(fs *flag.FlagSet, cb Callback, funcs ...Func) *api.API {
	var (
		imgixDomain = fs.String("imgix-domain", "",
			"Default imgix source domain for relative src e.g. assets.imgix.net")
		imgixUseHTTPS = fs.Bool("imgix-use-https", true,
			"Use https scheme for built imgix URLs")
		imgixSecureURLToken = fs.String("imgix-secure-url-token", "",
			"imgix secure URL token for signing built URLs")
		imgixDefaultParams = fs.String("imgix-default-params", "",
			"Default imgix params in query string form e.g. auto=format,compress&q=60")
		imgixProfile = fs.String("imgix-profile", "",
			"YAML file of default props applied under every build")
		imgixDisableLibraryParam = fs.Bool("imgix-disable-library-param", false,
			"Disable ixlib param of built imgix URLs")
		imgixDisablePathEncoding = fs.Bool("imgix-disable-path-encoding", false,
			"Disable path encoding of built imgix URLs")
		imgixDisableQualityByDPR = fs.Bool("imgix-disable-quality-by-dpr", false,
			"Disable variable quality by DPR of fixed size srcset")
		imgixDisableSrcSet = fs.Bool("imgix-disable-srcset", false,
			"Disable srcset, building src only")
		imgixDisableWarnings StringSliceFlag

		cacheSize = fs.Int("cache-size", 0,
			"LRU cache size of built srcset results. Disabled if 0")
		requestTimeout = fs.Duration("request-timeout", time.Second*30,
			"Timeout for manifest requests")
		manifestKey = fs.String("manifest-key", "manifest.json",
			"Default storage key for published manifests")
		manifestBaseDir = fs.String("manifest-base-dir", "",
			"Base directory of image files probed for intrinsic sizes. File probing over HTTP disabled if empty")
		manifestMaxSize = fs.Int64("manifest-max-size", 1<<20,
			"Maximum manifest request body size in bytes")
		manifestConcurrency = fs.Int("manifest-concurrency", 0,
			"Maximum images built concurrently per manifest. Number of CPUs if 0")
	)
	fs.Var(&imgixDisableWarnings, "imgix-disable-warnings",
		"Comma separated warnings to disable e.g. sizesAttribute,fallbackImage")

	var options, logger, isDebug = applyFuncs(fs, cb, funcs...)

	var profile imgixset.Props
	if *imgixProfile != "" {
		var err error
		if profile, err = LoadProfile(*imgixProfile); err != nil {
			panic(err)
		}
	}
	_, defaultParams := ixparams.ExtractQuery("?" + *imgixDefaultParams)

	// profile props take precedence over imgix flags
	builder := imgixset.New(
		imgixset.WithDomain(*imgixDomain),
		imgixset.WithDefaultParams(defaultParams),
		imgixset.WithUseHTTPS(*imgixUseHTTPS),
		imgixset.WithSecureURLToken(*imgixSecureURLToken),
		imgixset.WithDisableLibraryParam(*imgixDisableLibraryParam),
		imgixset.WithDisablePathEncoding(*imgixDisablePathEncoding),
		imgixset.WithDisableQualityByDPR(*imgixDisableQualityByDPR),
		imgixset.WithDisableSrcSet(*imgixDisableSrcSet),
		imgixset.WithDefaults(profile),
		imgixset.WithWarnings(imgixset.NewWarnings()),
		imgixset.WithDisableWarnings(imgixDisableWarnings...),
		imgixset.WithLogger(logger),
		imgixset.WithDebug(isDebug),
	)
	return api.New(builder, append(
		options,
		api.WithCacheSize(*cacheSize),
		api.WithRequestTimeout(*requestTimeout),
		api.WithManifestKey(*manifestKey),
		api.WithManifestBaseDir(*manifestBaseDir),
		api.WithManifestMaxSize(*manifestMaxSize),
		api.WithManifestConcurrency(*manifestConcurrency),
		api.WithLogger(logger),
		api.WithDebug(isDebug),
	)...)
}

// LoadProfile decodes YAML file of default props
func LoadProfile(path string) (p imgixset.Props, err error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return
	}
	err = yaml.Unmarshal(buf, &p)
	return
}
