package github

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/leynos/frankie/internal/domain"
)

const publicAPIBase = "https://api.github.com/"

// Origin describes where a repository lives, as discovered from the local
// checkout's remote. It is enough to compose a PR locator from a bare
// number.
type Origin struct {
	// Host is empty for github.com, otherwise the enterprise hostname.
	Host string
	// Port is zero unless the enterprise host uses a non-default port.
	Port int
	// Owner is the repository owner or organisation.
	Owner string
	// Repo is the repository name.
	Repo string
}

// IsEnterprise reports whether the origin points at an enterprise host.
func (o Origin) IsEnterprise() bool {
	return o.Host != ""
}

// apiBase derives the API base URL for the origin, preserving the port for
// enterprise hosts.
func (o Origin) apiBase() string {
	if !o.IsEnterprise() {
		return publicAPIBase
	}
	host := o.Host
	if o.Port != 0 {
		host = fmt.Sprintf("%s:%d", o.Host, o.Port)
	}
	return fmt.Sprintf("https://%s/api/v3", host)
}

// webURL composes the browser-facing PR URL for the origin.
func (o Origin) webURL(number int) string {
	host := "github.com"
	if o.IsEnterprise() {
		host = o.Host
		if o.Port != 0 {
			host = fmt.Sprintf("%s:%d", o.Host, o.Port)
		}
	}
	return fmt.Sprintf("https://%s/%s/%s/pull/%d", host, o.Owner, o.Repo, number)
}

// PullRequestLocator is a parsed, validated pointer to one pull request.
type PullRequestLocator struct {
	APIBase  string
	Owner    string
	Repo     string
	PRNumber int
}

// RepositoryLocator is a parsed, validated pointer to one repository.
type RepositoryLocator struct {
	APIBase string
	Owner   string
	Repo    string
}

// ParsePullRequestURL parses an absolute forge PR URL of the shape
// https://host[:port]/<owner>/<repo>/pull/<number>[/...].
func ParsePullRequestURL(rawURL string) (PullRequestLocator, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return PullRequestLocator{}, domain.NewError(domain.ErrInvalidURL, "cannot parse %q as a pull request URL", rawURL)
	}

	segments := splitPathSegments(parsed.Path)
	if len(segments) < 4 || segments[2] != "pull" {
		return PullRequestLocator{}, domain.NewError(domain.ErrMissingPathSegments,
			"URL path %q does not match /<owner>/<repo>/pull/<number>", parsed.Path)
	}
	owner, repo := segments[0], segments[1]
	if owner == "" || repo == "" {
		return PullRequestLocator{}, domain.NewError(domain.ErrMissingPathSegments,
			"URL path %q has an empty owner or repository segment", parsed.Path)
	}

	number, err := parsePositiveNumber(segments[3])
	if err != nil {
		return PullRequestLocator{}, err
	}

	return PullRequestLocator{
		APIBase:  apiBaseForHost(parsed.Hostname(), parsed.Port()),
		Owner:    owner,
		Repo:     repo,
		PRNumber: number,
	}, nil
}

// FromIdentifier resolves user input that is either a full PR URL or a bare
// PR number combined with the origin of the local repository.
func FromIdentifier(input string, origin Origin) (PullRequestLocator, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return PullRequestLocator{}, domain.NewError(domain.ErrMissingPullRequestURL, "no pull request identifier supplied")
	}
	if strings.Contains(trimmed, "://") {
		return ParsePullRequestURL(trimmed)
	}

	number, err := parsePositiveNumber(trimmed)
	if err != nil {
		return PullRequestLocator{}, err
	}
	return ParsePullRequestURL(origin.webURL(number))
}

// NewRepositoryLocator builds a repository locator from an origin.
func NewRepositoryLocator(origin Origin) (RepositoryLocator, error) {
	if origin.Owner == "" || origin.Repo == "" {
		return RepositoryLocator{}, domain.NewError(domain.ErrMissingPathSegments,
			"origin is missing an owner or repository name")
	}
	return RepositoryLocator{
		APIBase: origin.apiBase(),
		Owner:   origin.Owner,
		Repo:    origin.Repo,
	}, nil
}

// Repository returns the repository locator for the pull request.
func (l PullRequestLocator) Repository() RepositoryLocator {
	return RepositoryLocator{APIBase: l.APIBase, Owner: l.Owner, Repo: l.Repo}
}

// PullRequestPath is the API path for the PR itself.
func (l PullRequestLocator) PullRequestPath() string {
	return fmt.Sprintf("/repos/%s/%s/pulls/%d", url.PathEscape(l.Owner), url.PathEscape(l.Repo), l.PRNumber)
}

// CommentsPath is the API path for top-level issue comments.
func (l PullRequestLocator) CommentsPath() string {
	return fmt.Sprintf("/repos/%s/%s/issues/%d/comments", url.PathEscape(l.Owner), url.PathEscape(l.Repo), l.PRNumber)
}

// ReviewCommentsPath is the API path for file-anchored review comments.
func (l PullRequestLocator) ReviewCommentsPath() string {
	return fmt.Sprintf("/repos/%s/%s/pulls/%d/comments", url.PathEscape(l.Owner), url.PathEscape(l.Repo), l.PRNumber)
}

// PullsPath is the API path for the repository's pull-request listing.
func (l RepositoryLocator) PullsPath() string {
	return fmt.Sprintf("/repos/%s/%s/pulls", url.PathEscape(l.Owner), url.PathEscape(l.Repo))
}

// PersonalAccessToken is an opaque, validated forge credential.
type PersonalAccessToken struct {
	value string
}

// NewPersonalAccessToken trims and validates a raw token string.
func NewPersonalAccessToken(raw string) (PersonalAccessToken, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return PersonalAccessToken{}, domain.NewError(domain.ErrMissingToken, "personal access token is empty")
	}
	return PersonalAccessToken{value: trimmed}, nil
}

// Value returns the token for use in an Authorization header.
func (t PersonalAccessToken) Value() string {
	return t.value
}

// String masks the token so it never leaks through logging.
func (t PersonalAccessToken) String() string {
	return "PersonalAccessToken(****)"
}

func apiBaseForHost(hostname, port string) string {
	if hostname == "github.com" || hostname == "www.github.com" {
		return publicAPIBase
	}
	host := hostname
	if port != "" {
		host = hostname + ":" + port
	}
	return fmt.Sprintf("https://%s/api/v3", host)
}

func splitPathSegments(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func parsePositiveNumber(raw string) (int, error) {
	number, err := strconv.Atoi(raw)
	if err != nil || number <= 0 {
		return 0, domain.NewError(domain.ErrInvalidPullRequestNumber,
			"%q is not a positive pull request number", raw)
	}
	return number, nil
}
