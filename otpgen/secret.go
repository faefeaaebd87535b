package otpgen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/creachadair/otp/otpauth"
)

// ParseSecret interprets s as either a raw secret or an otpauth:// URL of
// the kind encoded in provisioning QR codes, and returns the normalized
// secret.  Raw secrets may contain spaces or dashes as group separators; the
// result is folded to upper case with any trailing padding removed.
//
// ParseSecret does not check that the secret is valid Base32; that is the
// code generator's concern, and a bad secret surfaces as a generation
// failure.
func ParseSecret(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("empty secret")
	}
	if strings.HasPrefix(s, "otpauth://") {
		u, err := otpauth.ParseURL(s)
		if err != nil {
			return "", fmt.Errorf("parse otpauth URL: %w", err)
		}
		if u.Type != "totp" {
			return "", fmt.Errorf("unsupported otpauth type %q", u.Type)
		}
		s = u.RawSecret
	}
	clean := strings.ToUpper(strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-':
			return -1
		}
		return r
	}, s))
	clean = strings.TrimRight(clean, "=")
	if clean == "" {
		return "", errors.New("empty secret")
	}
	return clean, nil
}
