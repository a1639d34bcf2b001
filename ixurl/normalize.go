package ixurl

import (
	"path"
	"strings"
)

// ShouldEscapeKey escape func for storage keys,
// keeping unreserved characters and "/" separators
func ShouldEscapeKey(c byte) bool {
	if c == '/' {
		return false
	}
	return shouldEscapeUnreserved(c)
}

// NormalizeKey cleans key into a file path friendly form without leading or
// trailing slash. Dot segments are resolved and escape funcs applied in order,
// ShouldEscapeKey if none given.
func NormalizeKey(key string, shouldEscape ...func(c byte) bool) string {
	key = strings.Trim(path.Clean("/"+key), "/")
	if len(shouldEscape) == 0 {
		return Escape(key, ShouldEscapeKey)
	}
	for _, fn := range shouldEscape {
		key = Escape(key, fn)
	}
	return key
}

// NewSafeChars returns a ShouldEscapeKey based escape func that also keeps
// chars unescaped. "--" keeps every character unescaped.
func NewSafeChars(chars string) func(c byte) bool {
	if chars == "--" {
		return func(byte) bool { return false }
	}
	safe := make(map[byte]bool, len(chars))
	for i := 0; i < len(chars); i++ {
		safe[chars[i]] = true
	}
	return func(c byte) bool {
		return !safe[c] && ShouldEscapeKey(c)
	}
}
