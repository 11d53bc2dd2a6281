package github

import (
	"context"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/leynos/frankie/internal/domain"
)

// MetadataCache is the persistence port the caching client revalidates
// through. The SQLite adapter implements it.
type MetadataCache interface {
	// Get returns the cached row for the locator, or (nil, nil) on a miss.
	Get(ctx context.Context, locator PullRequestLocator) (*domain.CachedPullRequestMetadata, error)
	// Upsert stores or fully replaces the row for the locator.
	Upsert(ctx context.Context, locator PullRequestLocator, entry domain.CachedPullRequestMetadata) error
	// Touch advances only the expiry bookkeeping of an existing row.
	Touch(ctx context.Context, locator PullRequestLocator, fetchedAtUnix, expiresAtUnix int64) error
}

// Clock supplies the current unix time. Injected so cache-expiry tests can
// run against a fixed instant.
type Clock func() int64

// SystemClock reads the wall clock.
func SystemClock() int64 {
	return time.Now().Unix()
}

// CachingClient wraps a Client with a TTL'd, validator-carrying metadata
// cache. Within the TTL a read is served from the cache without touching
// the network; past it, the stored ETag and Last-Modified validators ride
// along so an unchanged PR costs a 304 instead of a full payload.
// Comment listings are never cached.
type CachingClient struct {
	client     *Client
	cache      MetadataCache
	clock      Clock
	ttlSeconds int64
}

// NewCachingClient builds a caching wrapper around client. A negative TTL
// is clamped to zero, which makes every read revalidate.
func NewCachingClient(client *Client, cache MetadataCache, clock Clock, ttlSeconds int64) *CachingClient {
	if clock == nil {
		clock = SystemClock
	}
	if ttlSeconds < 0 {
		ttlSeconds = 0
	}
	return &CachingClient{client: client, cache: cache, clock: clock, ttlSeconds: ttlSeconds}
}

// PullRequest returns the PR metadata, serving fresh cache entries
// without a request and revalidating stale ones conditionally.
func (c *CachingClient) PullRequest(ctx context.Context, locator PullRequestLocator) (domain.PullRequestMetadata, error) {
	now := c.clock()

	entry, err := c.cache.Get(ctx, locator)
	if err != nil {
		return domain.PullRequestMetadata{}, err
	}
	if entry != nil && !entry.IsExpired(now) {
		return entry.Metadata, nil
	}

	headers := conditionalHeaders(entry)
	resp, err := c.client.get(ctx, locator.PullRequestPath(), headers)
	if err != nil {
		return domain.PullRequestMetadata{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		if entry == nil {
			return domain.PullRequestMetadata{}, domain.NewError(domain.ErrAPI,
				"server returned 304 Not Modified for an uncached pull request")
		}
		if err := c.cache.Touch(ctx, locator, now, saturatingAdd(now, c.ttlSeconds)); err != nil {
			return domain.PullRequestMetadata{}, err
		}
		return entry.Metadata, nil

	case http.StatusOK:
		var wire wirePullRequest
		if err := decodeJSONBody(resp, &wire); err != nil {
			return domain.PullRequestMetadata{}, err
		}
		metadata := wire.toMetadata()

		updated := domain.CachedPullRequestMetadata{
			Metadata:      metadata,
			ETag:          headerValue(resp.Header, "ETag"),
			LastModified:  headerValue(resp.Header, "Last-Modified"),
			FetchedAtUnix: now,
			ExpiresAtUnix: saturatingAdd(now, c.ttlSeconds),
		}
		if err := c.cache.Upsert(ctx, locator, updated); err != nil {
			return domain.PullRequestMetadata{}, err
		}
		return metadata, nil

	default:
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			body = nil
		}
		return domain.PullRequestMetadata{}, mapHTTPError(resp.StatusCode, body)
	}
}

// PullRequestComments is uncached; it delegates to the wrapped client.
func (c *CachingClient) PullRequestComments(ctx context.Context, locator PullRequestLocator) ([]domain.PullRequestComment, error) {
	return c.client.PullRequestComments(ctx, locator)
}

// ListReviewComments is uncached; it delegates to the wrapped client.
func (c *CachingClient) ListReviewComments(ctx context.Context, locator PullRequestLocator) ([]domain.ReviewComment, error) {
	return c.client.ListReviewComments(ctx, locator)
}

func conditionalHeaders(entry *domain.CachedPullRequestMetadata) map[string]string {
	if entry == nil {
		return nil
	}
	headers := make(map[string]string, 2)
	if entry.ETag != nil {
		headers["If-None-Match"] = *entry.ETag
	}
	if entry.LastModified != nil {
		headers["If-Modified-Since"] = *entry.LastModified
	}
	return headers
}

func headerValue(header http.Header, name string) *string {
	value := header.Get(name)
	if value == "" {
		return nil
	}
	return &value
}

func saturatingAdd(now, ttl int64) int64 {
	if ttl > 0 && now > math.MaxInt64-ttl {
		return math.MaxInt64
	}
	return now + ttl
}
