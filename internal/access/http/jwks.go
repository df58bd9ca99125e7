package http

import (
	"net/http"

	"github.com/aussiebroadwan/careshare/pkg/httpx"
	"github.com/aussiebroadwan/careshare/pkg/jwtx"
)

// JWKSHandler publishes the public keys of the grant signer so the document
// service can verify grant tokens itself.
//
//	@Summary		Get JWKS
//	@Description	Returns the JSON Web Key Set used to verify grant tokens.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	jwtx.JWKS	"The JSON Web Key Set"
//	@Router			/.well-known/jwks.json [get].
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, keys.PublicJWKS())
	}
}
