package ixurl

import (
	"crypto/md5"
	"encoding/hex"
)

// Signer imgix secure URL signer
type Signer interface {
	Sign(path, query string) string
}

// NewMD5Signer imgix secure URL token signer
func NewMD5Signer(token string) *md5Signer {
	return &md5Signer{token: token}
}

type md5Signer struct {
	token string
}

// Sign digests token, encoded path and query, excluding the signature itself
func (s *md5Signer) Sign(path, query string) string {
	base := s.token + path
	if query != "" {
		base += "?" + query
	}
	sum := md5.Sum([]byte(base))
	return hex.EncodeToString(sum[:])
}
