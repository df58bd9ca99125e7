package cryptox

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

// GenerateNumericCode returns a fresh numeric one-time code with the given
// number of digits (6 or 8). Each code is derived with HOTP from a new random
// 160-bit key that is discarded afterwards, so codes are independent.
func GenerateNumericCode(digits int) (string, error) {
	var d otp.Digits
	switch digits {
	case 6:
		d = otp.DigitsSix
	case 8:
		d = otp.DigitsEight
	default:
		return "", fmt.Errorf("cryptox: unsupported code length %d", digits)
	}

	key := make([]byte, 20)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	secret := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(key)

	code, err := hotp.GenerateCodeCustom(secret, 0, hotp.ValidateOpts{
		Digits:    d,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("cryptox: generate code: %w", err)
	}
	return code, nil
}
