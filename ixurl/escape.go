package ixurl

const upperhex = "0123456789ABCDEF"

// shouldEscapeUnreserved reports whether c falls outside the RFC 3986 unreserved set
func shouldEscapeUnreserved(c byte) bool {
	if 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' {
		return false
	}
	switch c {
	case '-', '_', '.', '~':
		return false
	}
	return true
}

// ShouldEscapePath escape func for a path, keeping "/" separators
// and the sub-delims allowed within a path segment
func ShouldEscapePath(c byte) bool {
	switch c {
	case '/', '!', '$', '&', '\'', '(', ')', '*', '+', ',', ';', '=', '@':
		return false
	}
	return shouldEscapeUnreserved(c)
}

// ShouldEscapeComponent escape func matching JavaScript encodeURIComponent
func ShouldEscapeComponent(c byte) bool {
	switch c {
	case '!', '\'', '(', ')', '*':
		return false
	}
	return shouldEscapeUnreserved(c)
}

// Escape percent-encodes bytes of s for which shouldEscape returns true
func Escape(s string, shouldEscape func(c byte) bool) string {
	hexCount := 0
	for i := 0; i < len(s); i++ {
		if shouldEscape(s[i]) {
			hexCount++
		}
	}
	if hexCount == 0 {
		return s
	}

	var buf [64]byte
	var t []byte

	required := len(s) + 2*hexCount
	if required <= len(buf) {
		t = buf[:required]
	} else {
		t = make([]byte, required)
	}

	j := 0
	for i := 0; i < len(s); i++ {
		if c := s[i]; shouldEscape(c) {
			t[j] = '%'
			t[j+1] = upperhex[c>>4]
			t[j+2] = upperhex[c&15]
			j += 3
		} else {
			t[j] = c
			j++
		}
	}
	return string(t)
}
