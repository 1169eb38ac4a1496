package shopify

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/EhsanAfzal005/Shopify-Review-App/pkg/errors"
)

// SessionTokenVerifier validates Shopify session tokens presented by the
// embedded admin UI. Tokens are HS256 JWTs signed with the app's API secret,
// with the API key as audience and the shop domain in the dest claim.
type SessionTokenVerifier struct {
	apiKey    string
	apiSecret string
}

// NewSessionTokenVerifier creates a verifier bound to the app's credentials.
func NewSessionTokenVerifier(apiKey, apiSecret string) *SessionTokenVerifier {
	return &SessionTokenVerifier{apiKey: apiKey, apiSecret: apiSecret}
}

// Verify checks the token signature and claims and returns the shop domain
// (e.g. "example.myshopify.com") it was issued for.
func (v *SessionTokenVerifier) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString,
		func(t *jwt.Token) (any, error) {
			return []byte(v.apiSecret), nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithAudience(v.apiKey),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", apperrors.Unauthorized(fmt.Sprintf("invalid session token: %v", err))
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", apperrors.Unauthorized("invalid session token claims")
	}

	dest, _ := claims["dest"].(string)
	shop := strings.TrimPrefix(dest, "https://")
	if shop == "" {
		return "", apperrors.Unauthorized("session token missing dest claim")
	}

	return shop, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
