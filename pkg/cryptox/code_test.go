package cryptox

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

var accessCodeShape = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{4}(-[0-9A-HJKMNP-TV-Z]{4}){3}$`)

func TestGenerateAccessCode(t *testing.T) {
	seen := make(map[string]struct{})
	for range 200 {
		code, err := GenerateAccessCode()
		require.NoError(t, err)
		require.Regexp(t, accessCodeShape, code)
		require.NotContains(t, seen, code)
		seen[code] = struct{}{}

		normalized, err := NormalizeAccessCode(code)
		require.NoError(t, err)
		require.Equal(t, code, normalized)
	}
}

func TestNormalizeAccessCode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		err   bool
	}{
		{"canonical", "AB12-CD34-EF56-GH78", "AB12-CD34-EF56-GH78", false},
		{"lower case without dashes", "ab12cd34ef56gh78", "AB12-CD34-EF56-GH78", false},
		{"spaces", " ab12 cd34 ef56 gh78 ", "AB12-CD34-EF56-GH78", false},
		{"crockford aliases", "oOiL-CD34-EF56-GH78", "0011-CD34-EF56-GH78", false},
		{"too short", "AB12-CD34-EF56", "", true},
		{"too long", "AB12-CD34-EF56-GH78-Z", "", true},
		{"excluded letter", "AB12-CD34-EF56-GH7U", "", true},
		{"non ascii", "AB12-CD34-EF56-GH7é", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAccessCode(tt.input)
			if tt.err {
				require.ErrorIs(t, err, ErrMalformedCode)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestAccessCodePrefix(t *testing.T) {
	require.Equal(t, "AB12-CD34", AccessCodePrefix("AB12-CD34-EF56-GH78"))
	require.Equal(t, "AB12", AccessCodePrefix("AB12"))
}

func TestGenerateNumericCode(t *testing.T) {
	for range 50 {
		code, err := GenerateNumericCode(6)
		require.NoError(t, err)
		require.Regexp(t, `^[0-9]{6}$`, code)
	}

	code, err := GenerateNumericCode(8)
	require.NoError(t, err)
	require.Len(t, code, 8)

	_, err = GenerateNumericCode(5)
	require.Error(t, err)
}
