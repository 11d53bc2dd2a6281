package tui_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leynos/frankie/internal/adapter/rewrite"
	"github.com/leynos/frankie/internal/domain"
	"github.com/leynos/frankie/internal/tui"
)

// fakeRewriteService returns a canned response or error.
type fakeRewriteService struct {
	response string
	err      error
	lastReq  rewrite.Request
}

func (s *fakeRewriteService) Rewrite(_ context.Context, request rewrite.Request) (string, error) {
	s.lastReq = request
	return s.response, s.err
}

func draftingModel(t *testing.T, service rewrite.Service) tui.Model {
	t.Helper()

	model := tui.New(tui.Options{
		Reviews: []domain.ReviewComment{{
			ID:     1,
			Author: domain.StringPtr("alice"),
			Body:   domain.StringPtr("please add a test"),
		}},
		RewriteService: service,
		MaxReplyLength: 500,
		Width:          80,
		Height:         24,
	})
	model, _ = apply(t, model, tui.StartReplyDraftMsg{})
	model, _ = apply(t, model, tui.ReplyDraftInsertTextMsg{Text: "ok"})
	return model
}

func TestAiRewrite_SuccessfulPreview(t *testing.T) {
	service := &fakeRewriteService{response: "  Sure — I will add a regression test.  "}
	model := draftingModel(t, service)

	model, cmd := apply(t, model, tui.ReplyDraftRequestAiRewriteMsg{Mode: rewrite.ModeExpand})
	require.NotNil(t, cmd)

	msg := cmd()
	result, ok := msg.(tui.ReplyDraftAiResultMsg)
	require.True(t, ok)
	assert.Equal(t, "Sure — I will add a regression test.", result.Preview.Text)
	assert.Equal(t, tui.AiPreviewOrigin, result.Preview.Origin)
	assert.False(t, result.Preview.Fallback)

	assert.Equal(t, rewrite.ModeExpand, service.lastReq.Mode)
	assert.Equal(t, "ok", service.lastReq.SourceText)
	require.NotNil(t, service.lastReq.Context.Reviewer)
	assert.Equal(t, "alice", *service.lastReq.Context.Reviewer)

	model, _ = apply(t, model, msg)
	require.NotNil(t, model.Draft().Preview)

	model, _ = apply(t, model, tui.ReplyDraftAiApplyMsg{})
	assert.Equal(t, "Sure — I will add a regression test.", model.Draft().Text)
	assert.Nil(t, model.Draft().Preview)
}

func TestAiRewrite_ErrorProducesFallbackPreservingDraft(t *testing.T) {
	service := &fakeRewriteService{err: errors.New("model unavailable")}
	model := draftingModel(t, service)

	_, cmd := apply(t, model, tui.ReplyDraftRequestAiRewriteMsg{Mode: rewrite.ModeReword})
	require.NotNil(t, cmd)

	result, ok := cmd().(tui.ReplyDraftAiResultMsg)
	require.True(t, ok)
	assert.True(t, result.Preview.Fallback)
	assert.Equal(t, "ok", result.Preview.Text, "the fallback preserves the original draft")
	assert.Contains(t, result.Preview.Reason, "model unavailable")
}

func TestAiRewrite_EmptyResponseProducesFallback(t *testing.T) {
	service := &fakeRewriteService{response: "   "}
	model := draftingModel(t, service)

	_, cmd := apply(t, model, tui.ReplyDraftRequestAiRewriteMsg{Mode: rewrite.ModeExpand})
	result, ok := cmd().(tui.ReplyDraftAiResultMsg)
	require.True(t, ok)
	assert.True(t, result.Preview.Fallback)
	assert.Equal(t, "ok", result.Preview.Text)
}

func TestAiRewrite_DiscardKeepsDraft(t *testing.T) {
	service := &fakeRewriteService{response: "rewritten"}
	model := draftingModel(t, service)

	model, _ = apply(t, model, tui.ReplyDraftAiResultMsg{
		Preview: tui.AiPreview{Text: "rewritten", Origin: tui.AiPreviewOrigin},
	})
	model, _ = apply(t, model, tui.ReplyDraftAiDiscardMsg{})

	assert.Equal(t, "ok", model.Draft().Text)
	assert.Nil(t, model.Draft().Preview)
}

func TestAiRewrite_WithoutServiceAttachesDraftError(t *testing.T) {
	model := draftingModel(t, nil)

	model, cmd := apply(t, model, tui.ReplyDraftRequestAiRewriteMsg{Mode: rewrite.ModeExpand})
	assert.Nil(t, cmd)
	assert.NotEmpty(t, model.Draft().Err)
}

func TestParseMode(t *testing.T) {
	mode, err := rewrite.ParseMode(" Expand ")
	require.NoError(t, err)
	assert.Equal(t, rewrite.ModeExpand, mode)

	mode, err = rewrite.ParseMode("reword")
	require.NoError(t, err)
	assert.Equal(t, rewrite.ModeReword, mode)

	_, err = rewrite.ParseMode("louder")
	assert.True(t, domain.IsKind(err, domain.ErrInvalidArgument))
}
