package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/leynos/frankie/internal/domain"
)

const defaultTimeout = 30 * time.Second

// Client is an HTTP client for the GitHub pull-request read APIs. It
// authenticates with a bearer token and speaks to the API base derived
// from a locator, which makes it equally at home against github.com and
// enterprise installations.
type Client struct {
	token      PersonalAccessToken
	apiBase    string
	httpClient *http.Client
}

// NewClient creates a client for the given API base.
func NewClient(token PersonalAccessToken, apiBase string) *Client {
	return &Client{
		token:      token,
		apiBase:    strings.TrimRight(apiBase, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// SetBaseURL overrides the API base (for testing).
// All trailing slashes are trimmed to ensure consistent URL construction.
func (c *Client) SetBaseURL(apiBase string) {
	c.apiBase = strings.TrimRight(apiBase, "/")
}

// SetTimeout sets the per-request HTTP timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// PullRequest fetches the metadata of one pull request.
func (c *Client) PullRequest(ctx context.Context, locator PullRequestLocator) (domain.PullRequestMetadata, error) {
	resp, err := c.get(ctx, locator.PullRequestPath(), nil)
	if err != nil {
		return domain.PullRequestMetadata{}, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(ctx, resp); err != nil {
		return domain.PullRequestMetadata{}, err
	}

	var wire wirePullRequest
	if err := decodeJSONBody(resp, &wire); err != nil {
		return domain.PullRequestMetadata{}, err
	}
	return wire.toMetadata(), nil
}

// PullRequestComments fetches every page of top-level issue comments.
func (c *Client) PullRequestComments(ctx context.Context, locator PullRequestLocator) ([]domain.PullRequestComment, error) {
	var all []domain.PullRequestComment
	err := c.forEachPage(ctx, locator.CommentsPath()+"?per_page=100", func(resp *http.Response) error {
		var page []wireIssueComment
		if err := decodeJSONBody(resp, &page); err != nil {
			return err
		}
		for _, wire := range page {
			all = append(all, wire.toComment())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// ListReviewComments fetches every page of file-anchored review comments.
func (c *Client) ListReviewComments(ctx context.Context, locator PullRequestLocator) ([]domain.ReviewComment, error) {
	var all []domain.ReviewComment
	err := c.forEachPage(ctx, locator.ReviewCommentsPath()+"?per_page=100", func(resp *http.Response) error {
		var page []wireReviewComment
		if err := decodeJSONBody(resp, &page); err != nil {
			return err
		}
		for _, wire := range page {
			all = append(all, wire.toReviewComment())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// ListPullRequests fetches one page of the repository's pull requests.
func (c *Client) ListPullRequests(ctx context.Context, locator RepositoryLocator, params ListPullRequestsParams) (PullRequestPage, error) {
	if err := params.Validate(); err != nil {
		return PullRequestPage{}, err
	}

	query := url.Values{}
	query.Set("state", params.State)
	query.Set("page", fmt.Sprintf("%d", params.Page))
	query.Set("per_page", fmt.Sprintf("%d", params.PerPage))

	resp, err := c.get(ctx, locator.PullsPath()+"?"+query.Encode(), nil)
	if err != nil {
		return PullRequestPage{}, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(ctx, resp); err != nil {
		return PullRequestPage{}, err
	}

	var wire []wirePullRequest
	if err := decodeJSONBody(resp, &wire); err != nil {
		return PullRequestPage{}, err
	}

	items := make([]domain.PullRequestSummary, 0, len(wire))
	for _, w := range wire {
		items = append(items, w.toSummary())
	}

	return PullRequestPage{
		Items:     items,
		PageInfo:  pageInfoFromLink(params, resp.Header.Get("Link")),
		RateLimit: rateLimitFromHeaders(resp.Header),
	}, nil
}

// forEachPage GETs the path and follows rel="next" links until exhausted,
// invoking handle for each successful response.
func (c *Client) forEachPage(ctx context.Context, firstPath string, handle func(*http.Response) error) error {
	nextURL := c.apiBase + firstPath
	for nextURL != "" {
		resp, err := c.getURL(ctx, nextURL, nil)
		if err != nil {
			return err
		}

		if err := c.checkStatus(ctx, resp); err != nil {
			resp.Body.Close()
			return err
		}

		next := parseNextLink(resp.Header.Get("Link"))
		handleErr := handle(resp)
		resp.Body.Close()
		if handleErr != nil {
			return handleErr
		}

		if next != "" {
			resolved, err := c.resolvePaginationURL(next)
			if err != nil {
				return err
			}
			next = resolved
		}
		nextURL = next
	}
	return nil
}

// get issues a GET for an API path relative to the client's base.
func (c *Client) get(ctx context.Context, path string, headers map[string]string) (*http.Response, error) {
	return c.getURL(ctx, c.apiBase+path, headers)
}

func (c *Client) getURL(ctx context.Context, fullURL string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, domain.WrapError(domain.ErrAPI, err, "build request for %s", fullURL)
	}

	req.Header.Set("Authorization", "Bearer "+c.token.Value())
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrNetwork, err, "GET %s", fullURL)
	}
	return resp, nil
}

// checkStatus maps a non-2xx response to a typed error, enriching
// rate-limit refusals with the accounting from /rate_limit.
func (c *Client) checkStatus(ctx context.Context, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		body = nil
	}

	mapped := mapHTTPError(resp.StatusCode, body)
	if mapped.Kind == domain.ErrRateLimitExceeded {
		if info := rateLimitFromHeaders(resp.Header); info != nil {
			mapped.RateLimit = info
		} else {
			mapped.RateLimit = c.fetchRateLimit(ctx)
		}
	}
	return mapped
}

// resolvePaginationURL resolves a Link-header URL against the API base and
// rejects hosts the client was not configured to talk to.
func (c *Client) resolvePaginationURL(rawURL string) (string, error) {
	base, err := url.Parse(c.apiBase)
	if err != nil {
		return "", domain.WrapError(domain.ErrAPI, err, "invalid API base %q", c.apiBase)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", domain.WrapError(domain.ErrAPI, err, "invalid pagination URL %q", rawURL)
	}
	if !parsed.IsAbs() {
		parsed = base.ResolveReference(parsed)
	}

	if base.Scheme == "https" && parsed.Scheme == "http" {
		return "", domain.NewError(domain.ErrAPI, "pagination URL downgrades scheme: %s", rawURL)
	}
	if parsed.Host != base.Host {
		return "", domain.NewError(domain.ErrAPI, "pagination URL points at untrusted host %s", parsed.Host)
	}

	return parsed.String(), nil
}

// decodeJSONBody decodes a JSON response body, mapping failures to API
// errors so malformed payloads surface uniformly.
func decodeJSONBody(resp *http.Response, target any) error {
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return domain.WrapError(domain.ErrAPI, err, "decode response body")
	}
	return nil
}
