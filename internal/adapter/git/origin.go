package git

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/leynos/frankie/internal/adapter/github"
	"github.com/leynos/frankie/internal/domain"
)

// DiscoverOrigin reads the repository's `origin` remote and parses it
// into a forge origin descriptor. Both HTTPS and SSH remote URLs are
// understood.
func (o *Ops) DiscoverOrigin() (github.Origin, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	remote, err := o.repo.Remote("origin")
	if err != nil {
		return github.Origin{}, domain.WrapError(domain.ErrLocalDiscovery, err, "read origin remote")
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return github.Origin{}, domain.NewError(domain.ErrLocalDiscovery, "origin remote has no URL")
	}
	return parseRemoteURL(urls[0])
}

// HeadSHA returns the commit the repository's HEAD points at.
func (o *Ops) HeadSHA() (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	head, err := o.repo.Head()
	if err != nil {
		return "", domain.WrapError(domain.ErrRepositoryNotAvailable, err, "resolve HEAD")
	}
	return head.Hash().String(), nil
}

// parseRemoteURL understands https://host[:port]/owner/repo[.git] and
// git@host:owner/repo[.git] remote shapes.
func parseRemoteURL(remote string) (github.Origin, error) {
	if strings.Contains(remote, "://") {
		parsed, err := url.Parse(remote)
		if err != nil {
			return github.Origin{}, domain.WrapError(domain.ErrLocalDiscovery, err, "parse remote URL %q", remote)
		}
		owner, repo, ok := splitOwnerRepo(parsed.Path)
		if !ok {
			return github.Origin{}, domain.NewError(domain.ErrLocalDiscovery,
				"remote URL %q has no owner/repo path", remote)
		}
		origin := github.Origin{Owner: owner, Repo: repo}
		if parsed.Hostname() != "github.com" {
			origin.Host = parsed.Hostname()
			if port := parsed.Port(); port != "" {
				if parsedPort, err := strconv.Atoi(port); err == nil {
					origin.Port = parsedPort
				}
			}
		}
		return origin, nil
	}

	// SSH scp-like syntax: git@host:owner/repo.git
	if at := strings.Index(remote, "@"); at >= 0 {
		rest := remote[at+1:]
		colon := strings.Index(rest, ":")
		if colon < 0 {
			return github.Origin{}, domain.NewError(domain.ErrLocalDiscovery,
				"cannot parse SSH remote %q", remote)
		}
		host := rest[:colon]
		owner, repo, ok := splitOwnerRepo(rest[colon+1:])
		if !ok {
			return github.Origin{}, domain.NewError(domain.ErrLocalDiscovery,
				"SSH remote %q has no owner/repo path", remote)
		}
		origin := github.Origin{Owner: owner, Repo: repo}
		if host != "github.com" {
			origin.Host = host
		}
		return origin, nil
	}

	return github.Origin{}, domain.NewError(domain.ErrLocalDiscovery, "unrecognised remote %q", remote)
}

func splitOwnerRepo(path string) (string, string, bool) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 2 || segments[0] == "" || segments[1] == "" {
		return "", "", false
	}
	return segments[0], strings.TrimSuffix(segments[1], ".git"), true
}
