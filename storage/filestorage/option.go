package filestorage

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Option FileStorage option
type Option func(s *FileStorage)

// WithPathPrefix with path prefix that keys must fall under
func WithPathPrefix(prefix string) Option {
	return func(s *FileStorage) {
		if prefix != "" {
			prefix = "/" + strings.Trim(prefix, "/")
			if prefix != "/" {
				prefix += "/"
			}
			s.PathPrefix = prefix
		}
	}
}

func parseFileMode(perm string) (os.FileMode, bool) {
	if perm == "" {
		return 0, false
	}
	fm, err := strconv.ParseUint(perm, 0, 32)
	return os.FileMode(fm), err == nil
}

// WithMkdirPermission with octal permission of created directories, e.g. "0755"
func WithMkdirPermission(perm string) Option {
	return func(s *FileStorage) {
		if fm, ok := parseFileMode(perm); ok {
			s.MkdirPermission = fm
		}
	}
}

// WithWritePermission with octal permission of written files, e.g. "0666"
func WithWritePermission(perm string) Option {
	return func(s *FileStorage) {
		if fm, ok := parseFileMode(perm); ok {
			s.WritePermission = fm
		}
	}
}

// WithSaveErrIfExists with Put failing on keys already written
func WithSaveErrIfExists(saveErrIfExists bool) Option {
	return func(s *FileStorage) {
		s.SaveErrIfExists = saveErrIfExists
	}
}

func WithSafeChars(chars string) Option {
	return func(s *FileStorage) {
		if chars != "" {
			s.SafeChars = chars
		}
	}
}

// WithExpiration with age after which Get reports blobs expired
func WithExpiration(exp time.Duration) Option {
	return func(s *FileStorage) {
		if exp > 0 {
			s.Expiration = exp
		}
	}
}
