package tui

import (
	"github.com/leynos/frankie/internal/adapter/codex"
	"github.com/leynos/frankie/internal/adapter/rewrite"
	"github.com/leynos/frankie/internal/domain"
)

// Navigation messages. Out-of-range motions clamp silently.
type (
	// CursorUpMsg moves the selection one row up.
	CursorUpMsg struct{}
	// CursorDownMsg moves the selection one row down.
	CursorDownMsg struct{}
	// PageUpMsg moves the selection one viewport page up.
	PageUpMsg struct{}
	// PageDownMsg moves the selection one viewport page down.
	PageDownMsg struct{}
	// HomeMsg jumps to the first filtered comment.
	HomeMsg struct{}
	// EndMsg jumps to the last filtered comment.
	EndMsg struct{}
)

// Filter messages.
type (
	// SetFilterMsg installs a specific filter.
	SetFilterMsg struct{ Filter ReviewFilter }
	// ClearFilterMsg resets to the All filter.
	ClearFilterMsg struct{}
	// CycleFilterMsg toggles All and Unresolved.
	CycleFilterMsg struct{}
)

// Data messages.
type (
	// RefreshRequestedMsg asks for an immediate sync.
	RefreshRequestedMsg struct{}
	// RefreshCompleteMsg replaces the review set wholesale.
	RefreshCompleteMsg struct{ Reviews []domain.ReviewComment }
	// RefreshFailedMsg reports a failed refresh or sync.
	RefreshFailedMsg struct{ Message string }
	// SyncTickMsg fires from the periodic background-sync timer.
	SyncTickMsg struct{}
	// SyncCompleteMsg delivers the result of a background sync.
	SyncCompleteMsg struct {
		Reviews       []domain.ReviewComment
		LatencyMillis int64
	}
)

// Lifecycle messages.
type (
	// InitializedMsg arms the sync timer; deliveries after the first are
	// ignored.
	InitializedMsg struct{}
	// ToggleHelpMsg shows or hides the help overlay.
	ToggleHelpMsg struct{}
)

// Agent messages.
type (
	// StartCodexExecutionMsg launches the agent against the filtered set.
	StartCodexExecutionMsg struct{}
	// CodexPollTickMsg fires from the agent poll timer.
	CodexPollTickMsg struct{}
	// CodexProgressMsg surfaces one progress event.
	CodexProgressMsg struct{ Event codex.ProgressEvent }
	// CodexFinishedMsg surfaces the terminal outcome.
	CodexFinishedMsg struct{ Outcome codex.Outcome }
)

// Time-travel messages.
type (
	// EnterTimeTravelMsg opens time travel on the selected comment.
	EnterTimeTravelMsg struct{}
	// ExitTimeTravelMsg returns to the review list.
	ExitTimeTravelMsg struct{}
	// NextCommitMsg navigates to the adjacent newer commit.
	NextCommitMsg struct{}
	// PreviousCommitMsg navigates to the adjacent older commit.
	PreviousCommitMsg struct{}
	// TimeTravelLoadedMsg delivers the assembled state after entry.
	TimeTravelLoadedMsg struct{ State TimeTravelState }
	// TimeTravelFailedMsg reports a load or navigation failure.
	TimeTravelFailedMsg struct{ Message string }
	// CommitNavigatedMsg delivers the recomputed snapshot after a
	// next/previous navigation.
	CommitNavigatedMsg struct {
		Index       int
		Snapshot    domain.CommitSnapshot
		LineMapping *domain.LineMapping
	}
)

// Diff-context messages.
type (
	// EnterDiffContextMsg opens the full-screen hunk view.
	EnterDiffContextMsg struct{}
	// ExitDiffContextMsg returns to the review list.
	ExitDiffContextMsg struct{}
	// NextHunkMsg moves to the following hunk.
	NextHunkMsg struct{}
	// PreviousHunkMsg moves to the preceding hunk.
	PreviousHunkMsg struct{}
)

// Reply-draft messages.
type (
	// StartReplyDraftMsg opens a draft for the selected comment.
	StartReplyDraftMsg struct{}
	// ReplyDraftInsertCharMsg appends one character.
	ReplyDraftInsertCharMsg struct{ Char rune }
	// ReplyDraftInsertTextMsg appends a text run.
	ReplyDraftInsertTextMsg struct{ Text string }
	// ReplyDraftInsertTemplateMsg renders and appends a reply template.
	ReplyDraftInsertTemplateMsg struct{ Index int }
	// ReplyDraftBackspaceMsg removes the last character.
	ReplyDraftBackspaceMsg struct{}
	// ReplyDraftCancelMsg discards the draft.
	ReplyDraftCancelMsg struct{}
	// ReplyDraftRequestSendMsg marks the draft ready to send.
	ReplyDraftRequestSendMsg struct{}
	// ReplyDraftRequestAiRewriteMsg asks the rewrite capability for a
	// preview.
	ReplyDraftRequestAiRewriteMsg struct{ Mode rewrite.Mode }
	// ReplyDraftAiResultMsg delivers the rewrite preview or fallback.
	ReplyDraftAiResultMsg struct{ Preview AiPreview }
	// ReplyDraftAiApplyMsg replaces the draft with the preview.
	ReplyDraftAiApplyMsg struct{}
	// ReplyDraftAiDiscardMsg clears only the preview.
	ReplyDraftAiDiscardMsg struct{}
)
