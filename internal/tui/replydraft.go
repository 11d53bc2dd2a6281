package tui

import (
	"strings"
	"unicode/utf8"

	"github.com/leynos/frankie/internal/domain"
)

// AiPreviewOrigin labels where a rewrite preview came from.
const AiPreviewOrigin = "AI-originated"

// AiPreview is a non-destructive candidate rewrite of the draft.
type AiPreview struct {
	Text   string
	Origin string
	// Fallback is set when the rewrite failed and the preview preserves
	// the original draft; Reason then explains why.
	Fallback bool
	Reason   string
}

// ReplyDraftState is the editable reply attached to one comment. Length
// is counted in Unicode scalar values and is enforced on every edit.
type ReplyDraftState struct {
	CommentID   int64
	Text        string
	MaxLength   int
	ReadyToSend bool
	Preview     *AiPreview
	// Err holds the most recent draft-local failure without destroying
	// the text being edited.
	Err string
}

// NewReplyDraftState opens an empty draft for a comment.
func NewReplyDraftState(commentID int64, maxLength int) *ReplyDraftState {
	if maxLength < 1 {
		maxLength = 1
	}
	return &ReplyDraftState{CommentID: commentID, MaxLength: maxLength}
}

// CharCount returns the draft length in Unicode scalar values.
func (d *ReplyDraftState) CharCount() int {
	return utf8.RuneCountInString(d.Text)
}

// PushChar appends one character, rejecting the edit when it would exceed
// the limit.
func (d *ReplyDraftState) PushChar(c rune) error {
	return d.AppendText(string(c))
}

// AppendText appends text, rejecting the whole edit when the resulting
// count would exceed the limit.
func (d *ReplyDraftState) AppendText(text string) error {
	attempted := d.CharCount() + utf8.RuneCountInString(text)
	if attempted > d.MaxLength {
		return domain.NewLengthExceededError(attempted, d.MaxLength)
	}
	d.Text += text
	d.ReadyToSend = false
	d.Err = ""
	return nil
}

// Backspace removes the last scalar value; it does nothing on empty text.
func (d *ReplyDraftState) Backspace() {
	if d.Text == "" {
		return
	}
	_, size := utf8.DecodeLastRuneInString(d.Text)
	d.Text = d.Text[:len(d.Text)-size]
	d.ReadyToSend = false
	d.Err = ""
}

// Clear discards the text but keeps the draft open.
func (d *ReplyDraftState) Clear() {
	d.Text = ""
	d.ReadyToSend = false
	d.Err = ""
}

// RequestSend marks a non-blank, within-limit draft as ready to send.
func (d *ReplyDraftState) RequestSend() error {
	if strings.TrimSpace(d.Text) == "" {
		return domain.NewError(domain.ErrEmptyDraft, "reply draft is empty")
	}
	d.ReadyToSend = true
	return nil
}

// ApplyPreview replaces the draft text with the preview and clears it.
func (d *ReplyDraftState) ApplyPreview() {
	if d.Preview == nil {
		return
	}
	d.Text = d.Preview.Text
	d.Preview = nil
	d.ReadyToSend = false
}

// DiscardPreview clears only the preview, keeping the draft text.
func (d *ReplyDraftState) DiscardPreview() {
	d.Preview = nil
}
