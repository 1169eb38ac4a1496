package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// VerifyProxySignature checks the signature Shopify attaches to app proxy
// requests. The signature is a hex HMAC-SHA256 over the sorted query
// parameters (excluding "signature" itself), each rendered as key=value with
// multi-values joined by commas and pairs concatenated without a separator.
func VerifyProxySignature(query url.Values, apiSecret string) bool {
	signature := query.Get("signature")
	if signature == "" {
		return false
	}

	keys := make([]string, 0, len(query))
	for k := range query {
		if k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(strings.Join(query[k], ","))
	}

	mac := hmac.New(sha256.New, []byte(apiSecret))
	mac.Write([]byte(sb.String()))
	expected := hex.EncodeToString(mac.Sum(nil))

	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

// ProxyShop returns the shop domain Shopify includes on proxy requests.
func ProxyShop(query url.Values) string {
	return query.Get("shop")
}
