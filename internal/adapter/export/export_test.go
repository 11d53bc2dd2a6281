package export_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leynos/frankie/internal/adapter/export"
	"github.com/leynos/frankie/internal/domain"
)

func sampleComments() []domain.ReviewComment {
	return []domain.ReviewComment{
		{
			ID:         1,
			Body:       domain.StringPtr("please rename this"),
			Author:     domain.StringPtr("alice"),
			FilePath:   domain.StringPtr("src/main.go"),
			LineNumber: domain.IntPtr(14),
			DiffHunk:   domain.StringPtr("@@ -12,3 +12,3 @@\n-old\n+new"),
			CommitSHA:  domain.StringPtr("abc1234def"),
			CreatedAt:  domain.StringPtr("2025-06-01T12:00:00Z"),
		},
		{
			ID:          2,
			Body:        domain.StringPtr("done"),
			Author:      domain.StringPtr("bob"),
			InReplyToID: domain.Int64Ptr(1),
		},
	}
}

func TestJSONL_OneObjectPerLineOmittingAbsentFields(t *testing.T) {
	output, err := export.JSONL(sampleComments())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(output, "\n"), "each line ends with a single newline")

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, float64(1), first["id"])
	assert.Equal(t, "comment", first["status"])
	assert.Equal(t, "src/main.go", first["file"])

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "reply", second["status"])
	assert.Equal(t, float64(1), second["reply_to"])
	_, hasFile := second["file"]
	assert.False(t, hasFile, "absent fields are omitted")
}

func TestMarkdown_Document(t *testing.T) {
	output := export.Markdown("https://github.com/octo/repo/pull/12", sampleComments())

	assert.True(t, strings.HasPrefix(output, "# Review comments for https://github.com/octo/repo/pull/12\n"))
	assert.Contains(t, output, "## src/main.go:14")
	assert.Contains(t, output, "**alice** commented at 2025-06-01T12:00:00Z")
	assert.Contains(t, output, "please rename this")
	assert.Contains(t, output, "```go\n@@ -12,3 +12,3 @@")
	assert.Contains(t, output, "## (unknown location)")
}

func TestMarkdown_FenceOutrunsBacktickRuns(t *testing.T) {
	comment := domain.ReviewComment{
		ID:       1,
		FilePath: domain.StringPtr("README.md"),
		DiffHunk: domain.StringPtr("some text\n````\nnested fence\n````"),
	}

	output := export.Markdown("https://example.com/pr/1", []domain.ReviewComment{comment})
	assert.Contains(t, output, "`````markdown\n", "fence is longer than the longest backtick run")
}

func TestMarkdown_UnknownExtensionFallsBackToDiff(t *testing.T) {
	comment := domain.ReviewComment{
		ID:       1,
		FilePath: domain.StringPtr("strange.xyz"),
		DiffHunk: domain.StringPtr("+added"),
	}

	output := export.Markdown("https://example.com/pr/1", []domain.ReviewComment{comment})
	assert.Contains(t, output, "```diff\n+added")
}

func TestRenderReplyTemplate_Variables(t *testing.T) {
	comment := sampleComments()[0]

	rendered, err := export.RenderReplyTemplate(
		"Thanks {{ reviewer }} for the note on {{ file }}:{{ line }} (comment {{ comment_id }})",
		comment)
	require.NoError(t, err)
	assert.Equal(t, "Thanks alice for the note on src/main.go:14 (comment 1)", rendered)
}

func TestRenderReplyTemplate_Fallbacks(t *testing.T) {
	comment := domain.ReviewComment{ID: 9}

	rendered, err := export.RenderReplyTemplate("{{ reviewer }}|{{ file }}|{{ line }}|{{ body }}", comment)
	require.NoError(t, err)
	assert.Equal(t, "reviewer|(unknown file)||", rendered)
}

func TestRenderReplyTemplate_InvalidSyntax(t *testing.T) {
	_, err := export.RenderReplyTemplate("{{ unterminated", domain.ReviewComment{ID: 1})
	assert.True(t, domain.IsKind(err, domain.ErrTemplateInvalidSyntax), "got %v", err)
}

func TestRenderExportTemplate_DocumentContext(t *testing.T) {
	source := "{{ pr_url }} at {{ generated_at }}\n" +
		"{% for c in comments %}{{ c.id }}:{{ c.status }}:{{ c.reviewer }}\n{% endfor %}" +
		"total {{ comments|length }}"

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rendered, err := export.RenderExportTemplate(source, "https://example.com/pr/12", sampleComments(), now)
	require.NoError(t, err)

	assert.Contains(t, rendered, "https://example.com/pr/12 at 2025-06-01T12:00:00Z")
	assert.Contains(t, rendered, "1:comment:alice")
	assert.Contains(t, rendered, "2:reply:bob")
	assert.Contains(t, rendered, "total 2")
}
