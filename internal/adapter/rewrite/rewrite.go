// Package rewrite defines the AI comment-rewrite capability the reply
// draft editor calls for its non-destructive preview.
package rewrite

import (
	"context"
	"strings"

	"github.com/leynos/frankie/internal/domain"
)

// Mode selects how the draft should be transformed.
type Mode int

const (
	// ModeExpand turns terse text into a fuller response.
	ModeExpand Mode = iota
	// ModeReword rephrases text while preserving intent.
	ModeReword
)

// Label is the human-readable action name used in UI output.
func (m Mode) Label() string {
	if m == ModeExpand {
		return "expand"
	}
	return "reword"
}

// ParseMode parses a mode name, accepting any case.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "expand":
		return ModeExpand, nil
	case "reword":
		return ModeReword, nil
	default:
		return 0, domain.NewError(domain.ErrInvalidArgument,
			"unsupported rewrite mode %q: valid options are expand or reword", value)
	}
}

// Context carries optional review context that guides the rewrite.
type Context struct {
	Reviewer    *string
	FilePath    *string
	LineNumber  *int
	CommentBody *string
}

// ContextFromComment extracts rewrite context from the selected comment.
func ContextFromComment(comment domain.ReviewComment) Context {
	return Context{
		Reviewer:    comment.Author,
		FilePath:    comment.FilePath,
		LineNumber:  comment.LineNumber,
		CommentBody: comment.Body,
	}
}

// Request is one rewrite invocation.
type Request struct {
	Mode       Mode
	SourceText string
	Context    Context
}

// Service is the rewrite capability. The TUI depends only on this
// interface; the OpenAI-compatible HTTP client is one implementation.
type Service interface {
	Rewrite(ctx context.Context, request Request) (string, error)
}
