package shopify

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/EhsanAfzal005/Shopify-Review-App/pkg/database"
	apperrors "github.com/EhsanAfzal005/Shopify-Review-App/pkg/errors"
)

// SessionStore reads OAuth sessions persisted during app installation.
// Webhook processing needs the offline access token to call the Admin API on
// behalf of a shop.
type SessionStore struct {
	pool database.DBTX
}

// NewSessionStore creates a PostgreSQL-backed session reader.
func NewSessionStore(pool database.DBTX) *SessionStore {
	return &SessionStore{pool: pool}
}

// OfflineAccessToken returns the offline access token for a shop. A missing
// session means the app is no longer installed on that shop.
func (s *SessionStore) OfflineAccessToken(ctx context.Context, shop string) (string, error) {
	query := `
		SELECT access_token
		FROM sessions
		WHERE shop = $1 AND is_online = FALSE
		ORDER BY created_at DESC
		LIMIT 1`

	var token string
	err := s.pool.QueryRow(ctx, query, shop).Scan(&token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NotFound("session", shop)
		}
		return "", fmt.Errorf("get offline session: %w", err)
	}

	return token, nil
}
