package tui_test

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leynos/frankie/internal/adapter/telemetry"
	"github.com/leynos/frankie/internal/domain"
	"github.com/leynos/frankie/internal/tui"
)

// recordingSink captures telemetry events for assertions.
type recordingSink struct {
	events []telemetry.SyncLatencyEvent
}

func (s *recordingSink) RecordSyncLatency(event telemetry.SyncLatencyEvent) {
	s.events = append(s.events, event)
}

func newTestModel(reviews []domain.ReviewComment) tui.Model {
	return tui.New(tui.Options{
		Reviews: reviews,
		Width:   120,
		Height:  40,
	})
}

func apply(t *testing.T, model tui.Model, msg tea.Msg) (tui.Model, tea.Cmd) {
	t.Helper()
	updated, cmd := model.Update(msg)
	next, ok := updated.(tui.Model)
	require.True(t, ok)
	return next, cmd
}

func review(id int64, body string) domain.ReviewComment {
	return domain.ReviewComment{ID: id, Body: domain.StringPtr(body)}
}

func TestMergeReviews_Counts(t *testing.T) {
	existing := []domain.ReviewComment{review(1, "old")}
	incoming := []domain.ReviewComment{review(1, "new"), review(2, "x")}

	merged, stats := tui.MergeReviews(existing, incoming)

	assert.Equal(t, 1, stats.Added)
	assert.Equal(t, 1, stats.Updated)
	assert.Equal(t, 0, stats.Removed)
	require.Len(t, merged, 2)
	assert.Equal(t, "new", *merged[0].Body, "fresh fields win")
	assert.Equal(t, int64(2), merged[1].ID)
}

func TestMergeReviews_CountInvariants(t *testing.T) {
	existing := []domain.ReviewComment{review(1, "a"), review(2, "b"), review(3, "c")}
	incoming := []domain.ReviewComment{review(5, "e"), review(2, "b2"), review(4, "d")}

	merged, stats := tui.MergeReviews(existing, incoming)

	assert.Equal(t, len(incoming), stats.Added+stats.Updated)
	assert.Equal(t, len(existing), stats.Updated+stats.Removed)

	for i := 1; i < len(merged); i++ {
		assert.Less(t, merged[i-1].ID, merged[i].ID, "result is sorted ascending by id")
	}
}

func TestSyncComplete_PreservesSelection(t *testing.T) {
	model := newTestModel([]domain.ReviewComment{review(1, "a"), review(2, "b"), review(3, "c")})

	model, _ = apply(t, model, tui.CursorDownMsg{})
	require.NotNil(t, model.SelectedCommentID())
	require.Equal(t, int64(2), *model.SelectedCommentID())

	// The sync inserts a new comment before the selected one.
	model, _ = apply(t, model, tui.SyncCompleteMsg{Reviews: []domain.ReviewComment{
		review(0, "inserted"), review(1, "a"), review(2, "b"), review(3, "c"),
	}})

	require.NotNil(t, model.SelectedCommentID())
	assert.Equal(t, int64(2), *model.SelectedCommentID(), "selection follows the id, not the index")
	assert.Equal(t, 2, model.Cursor())
}

func TestSyncComplete_ClampsWhenSelectionDisappears(t *testing.T) {
	model := newTestModel([]domain.ReviewComment{review(1, "a"), review(2, "b")})

	model, _ = apply(t, model, tui.EndMsg{})
	require.Equal(t, int64(2), *model.SelectedCommentID())

	model, _ = apply(t, model, tui.SyncCompleteMsg{Reviews: []domain.ReviewComment{review(1, "a")}})

	assert.Equal(t, 0, model.Cursor())
	require.NotNil(t, model.SelectedCommentID())
	assert.Equal(t, int64(1), *model.SelectedCommentID())
}

func TestSyncComplete_RecordsTelemetryAndRearms(t *testing.T) {
	sink := &recordingSink{}
	model := tui.New(tui.Options{
		Reviews:   []domain.ReviewComment{review(1, "a")},
		Telemetry: sink,
		Width:     120,
		Height:    40,
	})

	model, cmd := apply(t, model, tui.SyncCompleteMsg{
		Reviews:       []domain.ReviewComment{review(1, "a"), review(2, "b")},
		LatencyMillis: 42,
	})

	require.Len(t, sink.events, 1)
	assert.Equal(t, int64(42), sink.events[0].LatencyMillis)
	assert.Equal(t, 2, sink.events[0].CommentCount)
	assert.True(t, sink.events[0].Incremental)
	assert.NotNil(t, cmd, "the sync timer is re-armed")
	assert.False(t, model.Loading())
}

func TestRefreshFailed_KeepsReviewsAndRearms(t *testing.T) {
	model := newTestModel([]domain.ReviewComment{review(1, "a"), review(2, "b")})

	model, cmd := apply(t, model, tui.RefreshFailedMsg{Message: "network unreachable"})

	assert.Equal(t, "network unreachable", model.ErrMessage())
	assert.Len(t, model.Reviews(), 2, "a failed sync keeps the last good set")
	assert.False(t, model.Loading())
	assert.NotNil(t, cmd, "transient failures do not stop periodic sync")
}

func TestSyncTick_WhileLoadingOnlyRearms(t *testing.T) {
	model := newTestModel(nil)

	// First tick starts a fetch.
	model, _ = apply(t, model, tui.SyncTickMsg{})
	require.True(t, model.Loading())

	// A second tick while loading must not spawn another fetch; the
	// model state is unchanged apart from the re-armed timer.
	next, cmd := apply(t, model, tui.SyncTickMsg{})
	assert.True(t, next.Loading())
	assert.NotNil(t, cmd)
}

func TestSyncTick_ClearsPreviousError(t *testing.T) {
	model := newTestModel(nil)

	model, _ = apply(t, model, tui.RefreshFailedMsg{Message: "boom"})
	require.Equal(t, "boom", model.ErrMessage())

	model, _ = apply(t, model, tui.SyncTickMsg{})
	assert.Empty(t, model.ErrMessage())
}
