package github

import (
	"context"
	"net/http"
	"strconv"

	"github.com/leynos/frankie/internal/domain"
)

// rateLimitResponse is the body of the /rate_limit endpoint.
type rateLimitResponse struct {
	Rate struct {
		Limit     int   `json:"limit"`
		Remaining int   `json:"remaining"`
		Reset     int64 `json:"reset"`
	} `json:"rate"`
}

// rateLimitFromHeaders reads the X-RateLimit-* headers when all three are
// present.
func rateLimitFromHeaders(header http.Header) *domain.RateLimitInfo {
	limit, err := strconv.Atoi(header.Get("X-RateLimit-Limit"))
	if err != nil {
		return nil
	}
	remaining, err := strconv.Atoi(header.Get("X-RateLimit-Remaining"))
	if err != nil {
		return nil
	}
	reset, err := strconv.ParseInt(header.Get("X-RateLimit-Reset"), 10, 64)
	if err != nil {
		return nil
	}
	return &domain.RateLimitInfo{Limit: limit, Remaining: remaining, ResetAt: reset}
}

// fetchRateLimit issues a best-effort GET of /rate_limit to enrich a
// rate-limit refusal with current accounting. Failures return nil; the
// original refusal is the error that matters.
func (c *Client) fetchRateLimit(ctx context.Context) *domain.RateLimitInfo {
	resp, err := c.get(ctx, "/rate_limit", nil)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var decoded rateLimitResponse
	if err := decodeJSONBody(resp, &decoded); err != nil {
		return nil
	}
	return &domain.RateLimitInfo{
		Limit:     decoded.Rate.Limit,
		Remaining: decoded.Rate.Remaining,
		ResetAt:   decoded.Rate.Reset,
	}
}
