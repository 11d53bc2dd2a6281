package domain

import (
	"time"
)

// PullRequestMetadata describes a pull request as returned by the forge.
// All fields other than Number are optional in API responses.
type PullRequestMetadata struct {
	Number  int     `json:"number"`
	Title   *string `json:"title,omitempty"`
	State   *string `json:"state,omitempty"`
	HTMLURL *string `json:"html_url,omitempty"`
	Author  *string `json:"author,omitempty"`
}

// PullRequestComment is a top-level conversation comment on a pull request.
type PullRequestComment struct {
	ID     int64   `json:"id"`
	Body   *string `json:"body,omitempty"`
	Author *string `json:"author,omitempty"`
}

// ReviewComment is a comment attached to a specific file, line, and diff
// hunk of a pull request.
type ReviewComment struct {
	ID                 int64   `json:"id"`
	Body               *string `json:"body,omitempty"`
	Author             *string `json:"author,omitempty"`
	FilePath           *string `json:"file_path,omitempty"`
	LineNumber         *int    `json:"line_number,omitempty"`
	OriginalLineNumber *int    `json:"original_line_number,omitempty"`
	DiffHunk           *string `json:"diff_hunk,omitempty"`
	CommitSHA          *string `json:"commit_sha,omitempty"`
	InReplyToID        *int64  `json:"in_reply_to_id,omitempty"`
	CreatedAt          *string `json:"created_at,omitempty"`
	UpdatedAt          *string `json:"updated_at,omitempty"`
}

// IsReply reports whether the comment replies to another review comment.
func (c ReviewComment) IsReply() bool {
	return c.InReplyToID != nil
}

// PullRequestDetails bundles metadata with the top-level conversation.
type PullRequestDetails struct {
	Metadata PullRequestMetadata
	Comments []PullRequestComment
}

// PullRequestSummary is one row of a repository pull-request listing.
type PullRequestSummary struct {
	Number  int     `json:"number"`
	Title   *string `json:"title,omitempty"`
	State   *string `json:"state,omitempty"`
	HTMLURL *string `json:"html_url,omitempty"`
	Author  *string `json:"author,omitempty"`
}

// PageInfo describes the position of one page within a paginated listing.
type PageInfo struct {
	CurrentPage int
	PerPage     int
	TotalPages  *int
	HasNext     bool
	HasPrev     bool
}

// IsFirstPage reports whether this is the first page of the listing.
func (p PageInfo) IsFirstPage() bool {
	return p.CurrentPage == 1
}

// IsLastPage reports whether this is the final page of the listing.
func (p PageInfo) IsLastPage() bool {
	return !p.HasNext
}

// RateLimitInfo carries the forge's rate-limit accounting for a token.
type RateLimitInfo struct {
	Limit     int
	Remaining int
	ResetAt   int64
}

// IsExhausted reports whether the token has no requests remaining.
func (r RateLimitInfo) IsExhausted() bool {
	return r.Remaining == 0
}

// ResetTime returns the reset instant as a UTC time.
func (r RateLimitInfo) ResetTime() time.Time {
	return time.Unix(r.ResetAt, 0).UTC()
}

// CachedPullRequestMetadata is a cache row: metadata plus the HTTP
// validators and expiry bookkeeping used for conditional revalidation.
type CachedPullRequestMetadata struct {
	Metadata      PullRequestMetadata
	ETag          *string
	LastModified  *string
	FetchedAtUnix int64
	ExpiresAtUnix int64
}

// IsExpired reports whether the row's TTL has elapsed at the given instant.
func (c CachedPullRequestMetadata) IsExpired(nowUnix int64) bool {
	return nowUnix >= c.ExpiresAtUnix
}

// CommitMetadata identifies one commit in the local repository. Message
// holds only the first line of the commit message.
type CommitMetadata struct {
	SHA       string
	Message   string
	Author    string
	Timestamp time.Time
}

// ShortSHA returns the abbreviated commit identifier.
func (c CommitMetadata) ShortSHA() string {
	if len(c.SHA) <= 7 {
		return c.SHA
	}
	return c.SHA[:7]
}

// CommitSnapshot is a commit plus, optionally, the content of one file at
// that commit.
type CommitSnapshot struct {
	Commit      CommitMetadata
	FilePath    *string
	FileContent *string
}

// LineMappingKind discriminates the outcomes of line-mapping verification.
type LineMappingKind int

const (
	// LineMappingExact means the line is unchanged between the commits.
	LineMappingExact LineMappingKind = iota
	// LineMappingMoved means the line survives at a different position.
	LineMappingMoved
	// LineMappingDeleted means the line was removed.
	LineMappingDeleted
	// LineMappingNotFound means the line could not be located at all.
	LineMappingNotFound
)

// LineMapping records where a commented line ended up in a newer commit.
type LineMapping struct {
	Kind     LineMappingKind
	Original int
	Current  int
}

// Offset returns the displacement between the current and original
// position. It is zero unless the line moved.
func (m LineMapping) Offset() int {
	if m.Kind != LineMappingMoved {
		return 0
	}
	return m.Current - m.Original
}

// Exact builds a mapping for a line that did not move.
func Exact(line int) LineMapping {
	return LineMapping{Kind: LineMappingExact, Original: line, Current: line}
}

// Moved builds a mapping for a line that survives at a new position.
func Moved(original, current int) LineMapping {
	return LineMapping{Kind: LineMappingMoved, Original: original, Current: current}
}

// Deleted builds a mapping for a line removed by later commits.
func Deleted(original int) LineMapping {
	return LineMapping{Kind: LineMappingDeleted, Original: original}
}

// NotFound builds a mapping for a line that could not be located.
func NotFound(original int) LineMapping {
	return LineMapping{Kind: LineMappingNotFound, Original: original}
}

// StringValue dereferences an optional string, returning fallback when nil.
func StringValue(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

// StringPtr returns a pointer to s. Convenient for literal construction.
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int {
	return &n
}

// Int64Ptr returns a pointer to n.
func Int64Ptr(n int64) *int64 {
	return &n
}
