// Package export renders review-comment sets as JSONL, Markdown, or
// user-supplied templates, and renders the reply templates the draft
// editor inserts.
package export

import (
	"github.com/leynos/frankie/internal/domain"
)

// CommentRecord is the flattened, serialisation-ready shape of one review
// comment shared by the JSONL and template exporters.
type CommentRecord struct {
	ID        int64   `json:"id"`
	File      *string `json:"file,omitempty"`
	Line      *int    `json:"line,omitempty"`
	Reviewer  *string `json:"reviewer,omitempty"`
	Status    string  `json:"status"`
	Body      *string `json:"body,omitempty"`
	Context   *string `json:"context,omitempty"`
	Commit    *string `json:"commit,omitempty"`
	Timestamp *string `json:"timestamp,omitempty"`
	ReplyTo   *int64  `json:"reply_to,omitempty"`
}

// NewCommentRecord flattens a review comment.
func NewCommentRecord(comment domain.ReviewComment) CommentRecord {
	status := "comment"
	if comment.IsReply() {
		status = "reply"
	}
	return CommentRecord{
		ID:        comment.ID,
		File:      comment.FilePath,
		Line:      comment.LineNumber,
		Reviewer:  comment.Author,
		Status:    status,
		Body:      comment.Body,
		Context:   comment.DiffHunk,
		Commit:    comment.CommitSHA,
		Timestamp: comment.CreatedAt,
		ReplyTo:   comment.InReplyToID,
	}
}

// Records flattens a comment slice in order.
func Records(comments []domain.ReviewComment) []CommentRecord {
	records := make([]CommentRecord, 0, len(comments))
	for _, comment := range comments {
		records = append(records, NewCommentRecord(comment))
	}
	return records
}
