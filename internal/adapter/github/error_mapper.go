package github

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/leynos/frankie/internal/domain"
)

// apiErrorResponse is the body GitHub attaches to error statuses.
type apiErrorResponse struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
}

// mapHTTPError maps a non-2xx forge response to a typed domain error.
// Rate-limit refusals arrive as 403 or 429 and are recognised by their
// message or documentation URL; remaining 401/403 responses are treated as
// authentication failures.
func mapHTTPError(statusCode int, body []byte) *domain.Error {
	errResp := parseErrorBody(body)
	message := errResp.Message
	if message == "" {
		message = fmt.Sprintf("HTTP %d", statusCode)
	}

	if isRateLimitResponse(statusCode, errResp) {
		rateLimitErr := domain.NewRateLimitError(message, nil)
		rateLimitErr.StatusCode = statusCode
		return rateLimitErr
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &domain.Error{Kind: domain.ErrAuthentication, Message: message, StatusCode: statusCode}
	default:
		return &domain.Error{Kind: domain.ErrAPI, Message: message, StatusCode: statusCode}
	}
}

// isRateLimitResponse recognises primary and secondary rate-limit refusals.
func isRateLimitResponse(statusCode int, errResp apiErrorResponse) bool {
	if statusCode != http.StatusForbidden && statusCode != http.StatusTooManyRequests {
		return false
	}
	haystack := strings.ToLower(errResp.Message + " " + errResp.DocumentationURL)
	return strings.Contains(haystack, "rate limit") || strings.Contains(haystack, "rate-limit")
}

func parseErrorBody(body []byte) apiErrorResponse {
	var errResp apiErrorResponse
	if len(body) == 0 {
		return errResp
	}
	if err := json.Unmarshal(body, &errResp); err != nil {
		// Non-JSON bodies still carry signal; keep a trimmed excerpt.
		excerpt := strings.TrimSpace(string(body))
		if len(excerpt) > 200 {
			excerpt = excerpt[:200]
		}
		errResp.Message = excerpt
	}
	return errResp
}
