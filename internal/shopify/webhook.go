package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Webhook header names set by Shopify on delivery.
const (
	HeaderWebhookHMAC  = "X-Shopify-Hmac-Sha256"
	HeaderWebhookTopic = "X-Shopify-Topic"
	HeaderWebhookShop  = "X-Shopify-Shop-Domain"
)

// VerifyWebhookHMAC checks the base64 HMAC-SHA256 digest Shopify computes
// over the raw webhook body. The comparison is constant time.
func VerifyWebhookHMAC(body []byte, headerValue, apiSecret string) bool {
	if headerValue == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(apiSecret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(headerValue))
}
