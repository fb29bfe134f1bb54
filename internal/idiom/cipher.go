package idiom

import (
	"encoding/base64"
	"net/url"
	"strings"
	"unicode/utf16"
)

// Shared with the browser client so quiz links stay interchangeable.
const (
	cipherKey    = "idiom2026"
	cipherMarker = "[这样做是不对的]"
)

// Encrypt turns an idiom into an opaque, URL-safe-ish code used in share
// links and as the input of quiz id derivation. Same input, same output.
func Encrypt(text string) string {
	units := utf16.Encode([]rune(cipherMarker + text))
	xorUnits(units)
	return base64.StdEncoding.EncodeToString([]byte(encodeURIComponent(string(utf16.Decode(units)))))
}

// Decrypt reverses Encrypt.
func Decrypt(code string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(code)
	if err != nil {
		return "", err
	}
	s, err := url.PathUnescape(string(raw))
	if err != nil {
		return "", err
	}
	units := utf16.Encode([]rune(s))
	xorUnits(units)
	return strings.Replace(string(utf16.Decode(units)), cipherMarker, "", 1), nil
}

func xorUnits(units []uint16) {
	for i := range units {
		units[i] ^= uint16(cipherKey[i%len(cipherKey)])
	}
}

// encodeURIComponent percent-encodes every byte outside the set left alone
// by the JavaScript function of the same name.
func encodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isURIUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isURIUnreserved(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
