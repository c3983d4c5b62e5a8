package utils

import (
	"crypto/rand"
	"fmt"
	"regexp"
)

// Short codes are the public tokens embedded in printed QR images. The
// alphabet is URL-safe and excludes look-alike characters (0/O, 1/l/I)
// so codes stay readable when typed from print.
const shortCodeAlphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	ShortCodeMinLength     = 6
	ShortCodeMaxLength     = 20
	ShortCodeDefaultLength = 8
)

var shortCodePattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// IsValidShortCode reports whether s has the shape of a short code.
// Validation runs before any store lookup on the public scan path.
func IsValidShortCode(s string) bool {
	if len(s) < ShortCodeMinLength || len(s) > ShortCodeMaxLength {
		return false
	}
	return shortCodePattern.MatchString(s)
}

// GenerateShortCode returns a random short code of the given length.
func GenerateShortCode(length int) (string, error) {
	if length < ShortCodeMinLength || length > ShortCodeMaxLength {
		length = ShortCodeDefaultLength
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate short code: %w", err)
	}
	for i, b := range buf {
		buf[i] = shortCodeAlphabet[int(b)%len(shortCodeAlphabet)]
	}
	return string(buf), nil
}
