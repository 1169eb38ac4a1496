package http

import (
	"log/slog"
	"net/http"

	"github.com/EhsanAfzal005/Shopify-Review-App/internal/shopify"
	"github.com/EhsanAfzal005/Shopify-Review-App/pkg/httputil"
	"github.com/EhsanAfzal005/Shopify-Review-App/pkg/logger"
)

// ContentTypeJSON sets the response content type for API routes.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// ProxyAuth verifies the Shopify app proxy signature on storefront requests
// and stores the shop domain in the request context. An empty secret disables
// verification for local development.
func ProxyAuth(apiSecret string, l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query := r.URL.Query()

			if apiSecret != "" && !shopify.VerifyProxySignature(query, apiSecret) {
				l.WarnContext(r.Context(), "rejected proxy request with bad signature",
					slog.String("path", r.URL.Path),
				)
				httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: "Unauthorized"})
				return
			}

			if shop := shopify.ProxyShop(query); shop != "" {
				r = r.WithContext(logger.WithShop(r.Context(), shop))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SessionAuth verifies the Shopify session token on embedded admin requests
// and stores the shop domain in the request context.
func SessionAuth(verifier *shopify.SessionTokenVerifier, l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := shopify.BearerToken(r.Header.Get("Authorization"))
			if !ok {
				httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: "Unauthorized"})
				return
			}

			shop, err := verifier.Verify(token)
			if err != nil {
				l.WarnContext(r.Context(), "rejected admin request with invalid session token",
					slog.String("error", err.Error()),
				)
				httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: "Unauthorized"})
				return
			}

			next.ServeHTTP(w, r.WithContext(logger.WithShop(r.Context(), shop)))
		})
	}
}
