//go:build e2e

package access_test

import (
	"testing"

	"github.com/aussiebroadwan/careshare/pkg/accesssdk"
	"github.com/stretchr/testify/require"
)

// TestRedeemLockout guesses a code until the guard locks its prefix.
func TestRedeemLockout(t *testing.T) {
	client := setupAccessContainer(t)

	req := accesssdk.RedeemAccessCodeRequest{
		Code:      "7K3M-Q9TZ-X2HD-P4VW",
		FirstName: "Margaret",
		LastName:  "Nguyen",
		BirthDate: "1948-07-14",
	}

	for i := 0; i < 5; i++ {
		_, err := client.RedeemAccessCode(t.Context(), req)
		requireAPIError(t, err, accesssdk.ErrorCodeInvalidOrExpired)
	}

	_, err := client.RedeemAccessCode(t.Context(), req)
	apiErr := requireAPIError(t, err, accesssdk.ErrorCodeLocked)
	require.NotNil(t, apiErr.RetryAfterMinutes)
	require.Equal(t, 15, *apiErr.RetryAfterMinutes)

	// The same prefix stays locked whatever the remaining groups are.
	req.Code = "7K3M-Q9TZ-0000-0000"
	_, err = client.RedeemAccessCode(t.Context(), req)
	requireAPIError(t, err, accesssdk.ErrorCodeLocked)
}

// TestOwnerRoutesWithoutIdentityProvider verifies owner routes reject
// bearer tokens when no identity provider keys are configured.
func TestOwnerRoutesWithoutIdentityProvider(t *testing.T) {
	client := setupAccessContainer(t)

	_, err := client.AsOwner("not-a-token").ListAccessCodes(t.Context())
	requireAPIError(t, err, accesssdk.ErrorCodeInvalidToken)
}

// TestOTPIssue issues a challenge through the log sender.
func TestOTPIssue(t *testing.T) {
	client := setupAccessContainer(t)

	out, err := client.IssueOTP(t.Context(), accesssdk.IssueOTPRequest{
		Target: "alice@example.com", Channel: "email", Purpose: "email_verification",
	})
	require.NoError(t, err)
	require.NotEmpty(t, out.ChallengeID)
	require.True(t, out.Delivered)

	_, err = client.VerifyOTP(t.Context(), accesssdk.VerifyOTPRequest{
		Target: "alice@example.com", Purpose: "email_verification", Code: "000000",
	})
	requireAPIError(t, err, accesssdk.ErrorCodeInvalidOrExpired)
}
