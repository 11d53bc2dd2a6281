package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/leynos/frankie/internal/adapter/export"
	"github.com/leynos/frankie/internal/adapter/rewrite"
	"github.com/leynos/frankie/internal/domain"
)

// handleStartReplyDraft opens an empty draft for the selected comment.
func (m Model) handleStartReplyDraft() (Model, tea.Cmd) {
	comment := m.selectedComment()
	if comment == nil {
		m.errMessage = "no comment selected to reply to"
		return m, nil
	}
	m.draft = NewReplyDraftState(comment.ID, m.maxReplyLength)
	m.errMessage = ""
	return m, nil
}

// handleDraftEdit applies one edit, attaching failures to the draft
// without destroying its text.
func (m Model) handleDraftEdit(edit func(*ReplyDraftState) error) (Model, tea.Cmd) {
	if m.draft == nil {
		return m, nil
	}
	if err := edit(m.draft); err != nil {
		m.draft.Err = err.Error()
	}
	return m, nil
}

// handleInsertTemplate renders the configured template at the index
// against the selected comment and appends the result.
func (m Model) handleInsertTemplate(index int) (Model, tea.Cmd) {
	if m.draft == nil {
		return m, nil
	}
	if index < 0 || index >= len(m.replyTemplates) {
		m.draft.Err = "no reply template at that position"
		return m, nil
	}

	comment := m.commentByID(m.draft.CommentID)
	if comment == nil {
		m.draft.Err = "the comment being replied to is gone"
		return m, nil
	}

	rendered, err := export.RenderReplyTemplate(m.replyTemplates[index], *comment)
	if err != nil {
		m.draft.Err = err.Error()
		return m, nil
	}
	return m.handleDraftEdit(func(d *ReplyDraftState) error { return d.AppendText(rendered) })
}

// handleAiRewriteRequest asks the rewrite capability for a preview of the
// current draft. The draft stays editable while the request is in flight.
func (m Model) handleAiRewriteRequest(mode rewrite.Mode) (Model, tea.Cmd) {
	if m.draft == nil {
		return m, nil
	}
	if m.rewriteService == nil {
		m.draft.Err = "no AI rewrite service configured"
		return m, nil
	}

	request := rewrite.Request{
		Mode:       mode,
		SourceText: m.draft.Text,
	}
	if comment := m.commentByID(m.draft.CommentID); comment != nil {
		request.Context = rewrite.ContextFromComment(*comment)
	}

	service := m.rewriteService
	original := m.draft.Text
	return m, func() tea.Msg {
		rewritten, err := service.Rewrite(context.Background(), request)
		if err != nil {
			return ReplyDraftAiResultMsg{Preview: fallbackPreview(original, err.Error())}
		}
		trimmed := strings.TrimSpace(rewritten)
		if trimmed == "" {
			return ReplyDraftAiResultMsg{Preview: fallbackPreview(original, "the rewrite service returned no text")}
		}
		return ReplyDraftAiResultMsg{Preview: AiPreview{Text: trimmed, Origin: AiPreviewOrigin}}
	}
}

// fallbackPreview preserves the original draft with a readable reason
// when the rewrite failed or came back empty.
func fallbackPreview(original, reason string) AiPreview {
	return AiPreview{
		Text:     original,
		Origin:   AiPreviewOrigin,
		Fallback: true,
		Reason:   reason,
	}
}

// commentByID finds a stored comment by identifier.
func (m *Model) commentByID(id int64) *domain.ReviewComment {
	for i := range m.reviews {
		if m.reviews[i].ID == id {
			return &m.reviews[i]
		}
	}
	return nil
}
