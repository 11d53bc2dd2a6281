package export

import (
	"fmt"
	"time"

	"github.com/nikolalohinski/gonja"

	"github.com/leynos/frankie/internal/domain"
)

// RenderReplyTemplate renders one reply template against the comment
// being replied to. Templates are Jinja-style; variables render as plain
// text with no HTML escaping.
func RenderReplyTemplate(source string, comment domain.ReviewComment) (string, error) {
	template, err := gonja.FromString(source)
	if err != nil {
		return "", domain.WrapError(domain.ErrTemplateInvalidSyntax, err, "parse reply template")
	}

	rendered, err := template.Execute(replyContext(comment))
	if err != nil {
		return "", domain.WrapError(domain.ErrTemplateRenderFailed, err, "render reply template")
	}
	return rendered, nil
}

// RenderExportTemplate renders a user-supplied export template against the
// full comment set.
func RenderExportTemplate(source, prURL string, comments []domain.ReviewComment, now time.Time) (string, error) {
	template, err := gonja.FromString(source)
	if err != nil {
		return "", domain.WrapError(domain.ErrTemplateInvalidSyntax, err, "parse export template")
	}

	items := make([]map[string]any, 0, len(comments))
	for _, record := range Records(comments) {
		items = append(items, exportItem(record))
	}

	rendered, err := template.Execute(gonja.Context{
		"pr_url":       prURL,
		"generated_at": now.UTC().Format(time.RFC3339),
		"comments":     items,
	})
	if err != nil {
		return "", domain.WrapError(domain.ErrTemplateRenderFailed, err, "render export template")
	}
	return rendered, nil
}

func replyContext(comment domain.ReviewComment) gonja.Context {
	line := ""
	if comment.LineNumber != nil {
		line = fmt.Sprintf("%d", *comment.LineNumber)
	}
	return gonja.Context{
		"comment_id": comment.ID,
		"reviewer":   domain.StringValue(comment.Author, "reviewer"),
		"file":       domain.StringValue(comment.FilePath, "(unknown file)"),
		"line":       line,
		"body":       domain.StringValue(comment.Body, ""),
	}
}

func exportItem(record CommentRecord) map[string]any {
	item := map[string]any{
		"id":        record.ID,
		"file":      stringOr(record.File, ""),
		"reviewer":  stringOr(record.Reviewer, ""),
		"status":    record.Status,
		"body":      stringOr(record.Body, ""),
		"context":   stringOr(record.Context, ""),
		"commit":    stringOr(record.Commit, ""),
		"timestamp": stringOr(record.Timestamp, ""),
	}
	if record.Line != nil {
		item["line"] = *record.Line
	} else {
		item["line"] = ""
	}
	if record.ReplyTo != nil {
		item["reply_to"] = *record.ReplyTo
	} else {
		item["reply_to"] = ""
	}
	return item
}

func stringOr(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return *value
}
