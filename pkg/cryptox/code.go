package cryptox

import (
	"crypto/rand"
	"errors"
	"strings"
)

// Access codes are 16 Crockford base32 symbols (80 bits) shown in four
// dash-separated groups, e.g. "7K3M-Q9TZ-X2HD-P4VW".
const (
	accessCodeGroups    = 4
	accessCodeGroupSize = 4
	accessCodeLen       = accessCodeGroups * accessCodeGroupSize
	crockfordAlphabet   = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"
)

var ErrMalformedCode = errors.New("cryptox: malformed access code")

// GenerateAccessCode returns a new access code in display form.
func GenerateAccessCode() (string, error) {
	buf := make([]byte, accessCodeLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	var raw strings.Builder
	for _, b := range buf {
		// 256 is a multiple of 32 so masking keeps the distribution uniform.
		raw.WriteByte(crockfordAlphabet[b&31])
	}
	return group(raw.String()), nil
}

// NormalizeAccessCode canonicalises user input: case, whitespace and dashes
// are ignored, and the Crockford aliases O->0 and I/L->1 are applied.
func NormalizeAccessCode(input string) (string, error) {
	var raw strings.Builder
	for _, r := range strings.ToUpper(input) {
		switch {
		case r == '-' || r == ' ' || r == '\t':
			continue
		case r == 'O':
			r = '0'
		case r == 'I' || r == 'L':
			r = '1'
		}
		if r > 127 || !strings.ContainsRune(crockfordAlphabet, r) {
			return "", ErrMalformedCode
		}
		raw.WriteRune(r)
	}
	if raw.Len() != accessCodeLen {
		return "", ErrMalformedCode
	}
	return group(raw.String()), nil
}

// AccessCodePrefix returns the first two groups of a normalised code. The
// prefix is safe to display and to log.
func AccessCodePrefix(code string) string {
	n := 2*accessCodeGroupSize + 1
	if len(code) < n {
		return code
	}
	return code[:n]
}

func group(raw string) string {
	var b strings.Builder
	for i := 0; i < len(raw); i += accessCodeGroupSize {
		if i > 0 {
			b.WriteByte('-')
		}
		b.WriteString(raw[i : i+accessCodeGroupSize])
	}
	return b.String()
}
