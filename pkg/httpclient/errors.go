package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/EhsanAfzal005/Shopify-Review-App/pkg/errors"
)

// apiErrorBody covers the error shapes the Shopify Admin API returns: a
// plain string, an object keyed by field, or a list of error objects.
type apiErrorBody struct {
	Errors json.RawMessage `json:"errors"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an appropriate error. The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	message := string(bodyBytes)
	var body apiErrorBody
	if json.Unmarshal(bodyBytes, &body) == nil && len(body.Errors) > 0 {
		var s string
		if json.Unmarshal(body.Errors, &s) == nil {
			message = s
		} else {
			message = string(body.Errors)
		}
	}

	qualifiedMsg := fmt.Sprintf("%s: %s", serviceName, message)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualifiedMsg)
	case resp.StatusCode == http.StatusForbidden:
		return apperrors.Forbidden(qualifiedMsg)
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NotFound(serviceName, message)
	case resp.StatusCode == http.StatusBadRequest:
		return apperrors.InvalidInput(qualifiedMsg)
	default:
		return fmt.Errorf("%s returned status %d: %s", serviceName, resp.StatusCode, message)
	}
}
