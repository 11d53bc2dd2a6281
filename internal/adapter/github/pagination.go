package github

import (
	"net/url"
	"regexp"
	"strconv"

	"github.com/leynos/frankie/internal/domain"
)

// ListPullRequestsParams are the query parameters for the pulls listing.
type ListPullRequestsParams struct {
	// State filters the listing: "open", "closed", or "all".
	State string
	// Page is the 1-based page to fetch.
	Page int
	// PerPage is the page size, 1..=100.
	PerPage int
}

// DefaultListPullRequestsParams returns the listing defaults.
func DefaultListPullRequestsParams() ListPullRequestsParams {
	return ListPullRequestsParams{State: "open", Page: 1, PerPage: 30}
}

// Validate rejects out-of-range parameters before any request is issued.
func (p ListPullRequestsParams) Validate() error {
	switch p.State {
	case "open", "closed", "all":
	default:
		return domain.NewError(domain.ErrInvalidPagination, "state must be open, closed, or all, got %q", p.State)
	}
	if p.Page < 1 {
		return domain.NewError(domain.ErrInvalidPagination, "page must be at least 1, got %d", p.Page)
	}
	if p.PerPage < 1 || p.PerPage > 100 {
		return domain.NewError(domain.ErrInvalidPagination, "per_page must be within 1..=100, got %d", p.PerPage)
	}
	return nil
}

// linkRelPattern matches one `<url>; rel="name"` entry of a Link header.
var linkRelPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="([^"]+)"`)

// parseLinkHeader extracts the rel=next/prev/last URLs from a Link header.
func parseLinkHeader(header string) map[string]string {
	rels := make(map[string]string)
	for _, match := range linkRelPattern.FindAllStringSubmatch(header, -1) {
		rels[match[2]] = match[1]
	}
	return rels
}

// parseNextLink extracts the rel="next" URL, or "" when absent.
func parseNextLink(header string) string {
	return parseLinkHeader(header)["next"]
}

// pageInfoFromLink builds PageInfo for the requested page from the Link
// header of its response. total pages come from rel="last" when present;
// on the final page the current page itself is the total.
func pageInfoFromLink(params ListPullRequestsParams, linkHeader string) domain.PageInfo {
	rels := parseLinkHeader(linkHeader)

	info := domain.PageInfo{
		CurrentPage: params.Page,
		PerPage:     params.PerPage,
		HasNext:     rels["next"] != "",
		HasPrev:     rels["prev"] != "",
	}

	if last, ok := pageNumberOf(rels["last"]); ok {
		info.TotalPages = &last
	} else if !info.HasNext {
		total := params.Page
		info.TotalPages = &total
	}

	return info
}

// pageNumberOf extracts the `page` query parameter from a pagination URL.
func pageNumberOf(rawURL string) (int, bool) {
	if rawURL == "" {
		return 0, false
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return 0, false
	}
	page, err := strconv.Atoi(parsed.Query().Get("page"))
	if err != nil || page < 1 {
		return 0, false
	}
	return page, true
}
