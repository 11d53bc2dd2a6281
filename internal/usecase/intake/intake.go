// Package intake assembles the forge gateway operations the TUI consumes.
package intake

import (
	"context"

	"github.com/leynos/frankie/internal/adapter/github"
	"github.com/leynos/frankie/internal/domain"
)

// PullRequestGateway is the port for single-PR reads. Both the plain and
// the caching client satisfy it.
type PullRequestGateway interface {
	PullRequest(ctx context.Context, locator github.PullRequestLocator) (domain.PullRequestMetadata, error)
	PullRequestComments(ctx context.Context, locator github.PullRequestLocator) ([]domain.PullRequestComment, error)
	ListReviewComments(ctx context.Context, locator github.PullRequestLocator) ([]domain.ReviewComment, error)
}

// RepositoryGateway is the port for repository-level listings.
type RepositoryGateway interface {
	ListPullRequests(ctx context.Context, locator github.RepositoryLocator, params github.ListPullRequestsParams) (github.PullRequestPage, error)
}

// PullRequestIntake loads a pull request's metadata together with its
// top-level conversation. Gateway errors propagate unchanged.
type PullRequestIntake struct {
	gateway PullRequestGateway
}

// NewPullRequestIntake wires a gateway into the intake facade.
func NewPullRequestIntake(gateway PullRequestGateway) *PullRequestIntake {
	return &PullRequestIntake{gateway: gateway}
}

// Load fetches metadata and issue comments and assembles the details.
func (i *PullRequestIntake) Load(ctx context.Context, locator github.PullRequestLocator) (domain.PullRequestDetails, error) {
	metadata, err := i.gateway.PullRequest(ctx, locator)
	if err != nil {
		return domain.PullRequestDetails{}, err
	}

	comments, err := i.gateway.PullRequestComments(ctx, locator)
	if err != nil {
		return domain.PullRequestDetails{}, err
	}

	return domain.PullRequestDetails{Metadata: metadata, Comments: comments}, nil
}

// ReviewComments fetches the full review-comment set for the PR.
func (i *PullRequestIntake) ReviewComments(ctx context.Context, locator github.PullRequestLocator) ([]domain.ReviewComment, error) {
	return i.gateway.ListReviewComments(ctx, locator)
}

// RepositoryIntake lists a repository's pull requests.
type RepositoryIntake struct {
	gateway RepositoryGateway
}

// NewRepositoryIntake wires a repository gateway into the listing facade.
func NewRepositoryIntake(gateway RepositoryGateway) *RepositoryIntake {
	return &RepositoryIntake{gateway: gateway}
}

// ListPullRequests delegates to the repository gateway.
func (i *RepositoryIntake) ListPullRequests(ctx context.Context, locator github.RepositoryLocator, params github.ListPullRequestsParams) (github.PullRequestPage, error) {
	return i.gateway.ListPullRequests(ctx, locator, params)
}
