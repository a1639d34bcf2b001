package filestorage

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/cshum/imgixset"
	"github.com/cshum/imgixset/ixurl"
)

var dotFileRegex = regexp.MustCompile("/\\.")

// FileStorage file system Storage of published blobs
type FileStorage struct {
	BaseDir         string
	PathPrefix      string
	Blacklists      []*regexp.Regexp
	MkdirPermission os.FileMode
	WritePermission os.FileMode
	SaveErrIfExists bool
	SafeChars       string
	Expiration      time.Duration

	shouldEscape func(c byte) bool
}

// New creates FileStorage
func New(baseDir string, options ...Option) *FileStorage {
	s := &FileStorage{
		BaseDir:         baseDir,
		PathPrefix:      "/",
		Blacklists:      []*regexp.Regexp{dotFileRegex},
		MkdirPermission: 0755,
		WritePermission: 0666,
	}
	for _, option := range options {
		option(s)
	}
	s.shouldEscape = ixurl.NewSafeChars(s.SafeChars)
	return s
}

// Path transforms and validates key to file path
func (s *FileStorage) Path(key string) (string, bool) {
	key = "/" + ixurl.NormalizeKey(key, s.shouldEscape)
	for _, blacklist := range s.Blacklists {
		if blacklist.MatchString(key) {
			return "", false
		}
	}
	if !strings.HasPrefix(key, s.PathPrefix) {
		return "", false
	}
	return filepath.Join(s.BaseDir, strings.TrimPrefix(key, s.PathPrefix)), true
}

// Get implements imgixset.Storage interface
func (s *FileStorage) Get(_ context.Context, key string) (*imgixset.Blob, error) {
	path, ok := s.Path(key)
	if !ok {
		return nil, imgixset.ErrInvalid
	}
	stats, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, imgixset.ErrNotFound
		}
		return nil, err
	}
	if s.Expiration > 0 && time.Since(stats.ModTime()) > s.Expiration {
		return nil, imgixset.ErrExpired
	}
	return imgixset.NewBlobFromPath(path), nil
}

// Put implements imgixset.Storage interface
func (s *FileStorage) Put(_ context.Context, key string, blob *imgixset.Blob) (err error) {
	path, ok := s.Path(key)
	if !ok {
		return imgixset.ErrInvalid
	}
	if err = os.MkdirAll(filepath.Dir(path), s.MkdirPermission); err != nil {
		return
	}
	buf, err := blob.ReadAll()
	if err != nil {
		return err
	}
	flag := os.O_RDWR | os.O_CREATE | os.O_TRUNC
	if s.SaveErrIfExists {
		flag = os.O_RDWR | os.O_CREATE | os.O_EXCL
	}
	w, err := os.OpenFile(path, flag, s.WritePermission)
	if err != nil {
		if os.IsExist(err) {
			return imgixset.ErrAlreadyExists
		}
		return
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = w.Write(buf)
	return
}

// Delete implements imgixset.Storage interface
func (s *FileStorage) Delete(_ context.Context, key string) error {
	path, ok := s.Path(key)
	if !ok {
		return imgixset.ErrInvalid
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return imgixset.ErrNotFound
		}
		return err
	}
	return nil
}

// Stat implements imgixset.Storage interface
func (s *FileStorage) Stat(_ context.Context, key string) (*imgixset.Stat, error) {
	path, ok := s.Path(key)
	if !ok {
		return nil, imgixset.ErrInvalid
	}
	stats, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, imgixset.ErrNotFound
		}
		return nil, err
	}
	return &imgixset.Stat{
		Size:         stats.Size(),
		ModifiedTime: stats.ModTime(),
	}, nil
}
