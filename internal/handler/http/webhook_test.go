package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/EhsanAfzal005/Shopify-Review-App/internal/shopify"
	apperrors "github.com/EhsanAfzal005/Shopify-Review-App/pkg/errors"
)

func webhookRequest(body, topic, secret string) *http.Request {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/products/delete", strings.NewReader(body))
	req.Header.Set(shopify.HeaderWebhookHMAC, base64.StdEncoding.EncodeToString(mac.Sum(nil)))
	req.Header.Set(shopify.HeaderWebhookTopic, topic)
	req.Header.Set(shopify.HeaderWebhookShop, testShop)
	return req
}

func TestWebhookProductsDelete(t *testing.T) {
	env := newTestEnv(testAPISecret)

	env.tokens.On("OfflineAccessToken", mock.Anything, testShop).Return("shpat_token", nil)
	env.repo.On("DeleteByProductID", mock.Anything, "123456").Return(int64(3), nil)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, webhookRequest(`{"id":123456}`, "products/delete", testAPISecret))

	require.Equal(t, http.StatusOK, rec.Code)
	env.repo.AssertExpectations(t)
}

func TestWebhookRejectsBadHMAC(t *testing.T) {
	env := newTestEnv(testAPISecret)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, webhookRequest(`{"id":123456}`, "products/delete", "wrong-secret"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
	env.repo.AssertNotCalled(t, "DeleteByProductID", mock.Anything, mock.Anything)
}

func TestWebhookUnhandledTopic(t *testing.T) {
	env := newTestEnv(testAPISecret)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, webhookRequest(`{"id":123456}`, "orders/create", testAPISecret))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env.repo.AssertNotCalled(t, "DeleteByProductID", mock.Anything, mock.Anything)
}

func TestWebhookUninstalledShopStopsRedelivery(t *testing.T) {
	env := newTestEnv(testAPISecret)

	env.tokens.On("OfflineAccessToken", mock.Anything, testShop).
		Return("", apperrors.NotFound("session", testShop))

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, webhookRequest(`{"id":123456}`, "products/delete", testAPISecret))

	assert.Equal(t, http.StatusOK, rec.Code)
	env.repo.AssertNotCalled(t, "DeleteByProductID", mock.Anything, mock.Anything)
}

func TestWebhookPayloadWithoutProductIDStopsRedelivery(t *testing.T) {
	env := newTestEnv(testAPISecret)

	env.tokens.On("OfflineAccessToken", mock.Anything, testShop).Return("shpat_token", nil)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, webhookRequest(`{"title":"gone"}`, "products/delete", testAPISecret))

	assert.Equal(t, http.StatusOK, rec.Code)
	env.repo.AssertNotCalled(t, "DeleteByProductID", mock.Anything, mock.Anything)
}

func TestWebhookMalformedPayload(t *testing.T) {
	env := newTestEnv(testAPISecret)

	env.tokens.On("OfflineAccessToken", mock.Anything, testShop).Return("shpat_token", nil)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, webhookRequest(`{"id":`, "products/delete", testAPISecret))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env.repo.AssertNotCalled(t, "DeleteByProductID", mock.Anything, mock.Anything)
}
