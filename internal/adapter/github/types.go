package github

import (
	"github.com/leynos/frankie/internal/domain"
)

// wireUser is the `user` object embedded in GitHub API payloads.
type wireUser struct {
	Login string `json:"login"`
}

// wirePullRequest is the REST representation of a pull request.
type wirePullRequest struct {
	Number  int       `json:"number"`
	Title   *string   `json:"title"`
	State   *string   `json:"state"`
	HTMLURL *string   `json:"html_url"`
	User    *wireUser `json:"user"`
}

// wireIssueComment is the REST representation of an issue comment.
type wireIssueComment struct {
	ID   int64     `json:"id"`
	Body *string   `json:"body"`
	User *wireUser `json:"user"`
}

// wireReviewComment is the REST representation of a review comment.
type wireReviewComment struct {
	ID           int64     `json:"id"`
	Body         *string   `json:"body"`
	User         *wireUser `json:"user"`
	Path         *string   `json:"path"`
	Line         *int      `json:"line"`
	OriginalLine *int      `json:"original_line"`
	DiffHunk     *string   `json:"diff_hunk"`
	CommitID     *string   `json:"commit_id"`
	InReplyToID  *int64    `json:"in_reply_to_id"`
	CreatedAt    *string   `json:"created_at"`
	UpdatedAt    *string   `json:"updated_at"`
}

func (u *wireUser) login() *string {
	if u == nil || u.Login == "" {
		return nil
	}
	login := u.Login
	return &login
}

func (w wirePullRequest) toMetadata() domain.PullRequestMetadata {
	return domain.PullRequestMetadata{
		Number:  w.Number,
		Title:   w.Title,
		State:   w.State,
		HTMLURL: w.HTMLURL,
		Author:  w.User.login(),
	}
}

func (w wirePullRequest) toSummary() domain.PullRequestSummary {
	return domain.PullRequestSummary{
		Number:  w.Number,
		Title:   w.Title,
		State:   w.State,
		HTMLURL: w.HTMLURL,
		Author:  w.User.login(),
	}
}

func (w wireIssueComment) toComment() domain.PullRequestComment {
	return domain.PullRequestComment{
		ID:     w.ID,
		Body:   w.Body,
		Author: w.User.login(),
	}
}

func (w wireReviewComment) toReviewComment() domain.ReviewComment {
	return domain.ReviewComment{
		ID:                 w.ID,
		Body:               w.Body,
		Author:             w.User.login(),
		FilePath:           w.Path,
		LineNumber:         w.Line,
		OriginalLineNumber: w.OriginalLine,
		DiffHunk:           w.DiffHunk,
		CommitSHA:          w.CommitID,
		InReplyToID:        w.InReplyToID,
		CreatedAt:          w.CreatedAt,
		UpdatedAt:          w.UpdatedAt,
	}
}

// PullRequestPage is one page of a repository pull-request listing plus
// its pagination position and, when the forge sent the headers, the
// caller's rate-limit accounting.
type PullRequestPage struct {
	Items     []domain.PullRequestSummary
	PageInfo  domain.PageInfo
	RateLimit *domain.RateLimitInfo
}
