package tui

import (
	"context"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/leynos/frankie/internal/adapter/telemetry"
	"github.com/leynos/frankie/internal/domain"
)

// MergeStats summarises one incremental sync merge.
type MergeStats struct {
	Added   int
	Updated int
	Removed int
}

// MergeReviews replaces the existing set with the incoming one (fresh
// fields win), sorted ascending by id, and reports what changed.
func MergeReviews(existing, incoming []domain.ReviewComment) ([]domain.ReviewComment, MergeStats) {
	existingIDs := make(map[int64]struct{}, len(existing))
	for _, review := range existing {
		existingIDs[review.ID] = struct{}{}
	}

	var stats MergeStats
	incomingIDs := make(map[int64]struct{}, len(incoming))
	for _, review := range incoming {
		incomingIDs[review.ID] = struct{}{}
		if _, known := existingIDs[review.ID]; known {
			stats.Updated++
		} else {
			stats.Added++
		}
	}
	for id := range existingIDs {
		if _, kept := incomingIDs[id]; !kept {
			stats.Removed++
		}
	}

	return sortReviewsByID(incoming), stats
}

func sortReviewsByID(reviews []domain.ReviewComment) []domain.ReviewComment {
	sorted := make([]domain.ReviewComment, len(reviews))
	copy(sorted, reviews)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return sorted
}

// syncTickCmd arms the one-shot background-sync timer.
func (m Model) syncTickCmd() tea.Cmd {
	return tea.Tick(m.syncInterval, func(time.Time) tea.Msg {
		return SyncTickMsg{}
	})
}

// fetchReviewsCmd runs the refresh asynchronously, measuring latency.
func (m Model) fetchReviewsCmd() tea.Cmd {
	refresh := m.refresh
	return func() tea.Msg {
		if refresh == nil {
			return RefreshFailedMsg{Message: "no refresh context installed"}
		}
		started := time.Now()
		reviews, err := refresh(context.Background())
		if err != nil {
			return RefreshFailedMsg{Message: err.Error()}
		}
		return SyncCompleteMsg{
			Reviews:       reviews,
			LatencyMillis: time.Since(started).Milliseconds(),
		}
	}
}

// handleSyncTick starts a fetch unless one is already in flight; either
// way the timer chain continues.
func (m Model) handleSyncTick() (Model, tea.Cmd) {
	if m.loading {
		return m, m.syncTickCmd()
	}
	m.loading = true
	m.errMessage = ""
	return m, m.fetchReviewsCmd()
}

// handleSyncComplete merges the incoming set, preserves the selection,
// records telemetry, and re-arms the timer.
func (m Model) handleSyncComplete(msg SyncCompleteMsg) (Model, tea.Cmd) {
	previousID := m.selectedID

	merged, _ := MergeReviews(m.reviews, msg.Reviews)
	m.reviews = merged
	m.rebuildFilterCache()
	m.restoreSelection(previousID)

	m.telemetry.RecordSyncLatency(telemetry.SyncLatencyEvent{
		LatencyMillis: msg.LatencyMillis,
		CommentCount:  len(m.reviews),
		Incremental:   true,
	})

	m.loading = false
	return m, m.syncTickCmd()
}

// handleRefreshComplete replaces the review set outside the timer chain.
func (m Model) handleRefreshComplete(msg RefreshCompleteMsg) (Model, tea.Cmd) {
	previousID := m.selectedID
	merged, _ := MergeReviews(m.reviews, msg.Reviews)
	m.reviews = merged
	m.rebuildFilterCache()
	m.restoreSelection(previousID)
	m.loading = false
	return m, nil
}

// handleRefreshFailed keeps the last good review set and lets the timer
// chain continue so transient failures do not stop periodic sync.
func (m Model) handleRefreshFailed(msg RefreshFailedMsg) (Model, tea.Cmd) {
	m.errMessage = msg.Message
	m.loading = false
	return m, m.syncTickCmd()
}
