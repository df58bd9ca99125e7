/*
Package accesssdk provides the wire types and a Go client for the careshare
access service.

# Callers

The service has four kinds of callers and the client mirrors them:

  - Anonymous: OTP issue/verify and access code redemption.
  - Owners: manage their access codes and read the audit feed with a bearer
    token from the identity provider.
  - Viewers: browse an owner's shared documents with the grant token returned
    by a successful redemption.
  - Internal services: consult the brute-force guard, assess logins and keep
    the profile and document read models in sync using the shared internal
    token.

	client := accesssdk.NewClient("https://access.example.com")

	grant, err := client.RedeemAccessCode(ctx, accesssdk.RedeemAccessCodeRequest{
		Code:      "ABCD-EFGH-JKMN-PQRS",
		FirstName: "Ada",
		LastName:  "Lovelace",
		BirthDate: "1815-12-10",
	})

	docs, err := client.AsViewer(grant.GrantToken).ListSharedDocuments(ctx)

# Errors

Every non-2xx response is returned as *APIError. Verification failures are
deliberately generic: a wrong code, an expired code and a revoked code all
come back as ErrorCodeInvalidOrExpired. Lockouts carry RetryAfterMinutes.

	var apiErr *accesssdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == accesssdk.ErrorCodeLocked {
		fmt.Println("try again in", *apiErr.RetryAfterMinutes, "minutes")
	}
*/
package accesssdk
