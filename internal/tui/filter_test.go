package tui_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leynos/frankie/internal/domain"
	"github.com/leynos/frankie/internal/tui"
)

func filterFixture() []domain.ReviewComment {
	return []domain.ReviewComment{
		{ID: 1, Author: domain.StringPtr("alice"), FilePath: domain.StringPtr("a.go"), CommitSHA: domain.StringPtr("sha-a")},
		{ID: 2, Author: domain.StringPtr("bob"), FilePath: domain.StringPtr("b.go"), InReplyToID: domain.Int64Ptr(1)},
		{ID: 3, Author: domain.StringPtr("alice"), FilePath: domain.StringPtr("b.go"), CommitSHA: domain.StringPtr("sha-b")},
	}
}

func TestReviewFilter_AllMatchesEverything(t *testing.T) {
	all := filterFixture()
	filter := tui.AllFilter()

	for _, comment := range all {
		assert.True(t, filter.Matches(comment, all))
	}
}

func TestReviewFilter_Unresolved(t *testing.T) {
	all := filterFixture()
	filter := tui.ReviewFilter{Kind: tui.FilterUnresolved}

	// Comment 1 has a reply (comment 2), so it is resolved.
	assert.False(t, filter.Matches(all[0], all))
	// Replies themselves never count as unresolved roots.
	assert.False(t, filter.Matches(all[1], all))
	// Comment 3 is a root nobody replied to.
	assert.True(t, filter.Matches(all[2], all))
}

func TestReviewFilter_ByFileAndReviewer(t *testing.T) {
	all := filterFixture()

	byFile := tui.ReviewFilter{Kind: tui.FilterByFile, File: "b.go"}
	assert.False(t, byFile.Matches(all[0], all))
	assert.True(t, byFile.Matches(all[1], all))
	assert.True(t, byFile.Matches(all[2], all))

	byReviewer := tui.ReviewFilter{Kind: tui.FilterByReviewer, Reviewer: "alice"}
	assert.True(t, byReviewer.Matches(all[0], all))
	assert.False(t, byReviewer.Matches(all[1], all))
}

func TestReviewFilter_ByCommitRangeMatchesEndpoints(t *testing.T) {
	all := filterFixture()
	filter := tui.ReviewFilter{Kind: tui.FilterByCommitRange, FromSHA: "sha-a", ToSHA: "sha-z"}

	assert.True(t, filter.Matches(all[0], all))
	assert.False(t, filter.Matches(all[2], all), "SHAs between the endpoints do not match")
	assert.False(t, filter.Matches(all[1], all), "comments without a commit never match")
}

func TestReviewFilter_Cycle(t *testing.T) {
	assert.Equal(t, tui.FilterUnresolved, tui.AllFilter().Cycle().Kind)
	assert.Equal(t, tui.FilterAll, tui.ReviewFilter{Kind: tui.FilterUnresolved}.Cycle().Kind)
	assert.Equal(t, tui.FilterAll, tui.ReviewFilter{Kind: tui.FilterByFile, File: "x"}.Cycle().Kind)
}

func TestReviewFilter_Labels(t *testing.T) {
	assert.Equal(t, "All", tui.AllFilter().Label())
	assert.Equal(t, "Unresolved", tui.ReviewFilter{Kind: tui.FilterUnresolved}.Label())
	assert.Equal(t, "File: a.go", tui.ReviewFilter{Kind: tui.FilterByFile, File: "a.go"}.Label())
	assert.Equal(t, "Reviewer: alice", tui.ReviewFilter{Kind: tui.FilterByReviewer, Reviewer: "alice"}.Label())
}

func TestFilterState_ClampCursor(t *testing.T) {
	state := tui.NewFilterState()
	state.Cursor = 10

	state.ClampCursor(3)
	assert.Equal(t, 2, state.Cursor)

	state.ClampCursor(0)
	assert.Equal(t, 0, state.Cursor)
	assert.Equal(t, 0, state.ScrollOffset)
}

func TestFilterState_EnsureCursorVisible(t *testing.T) {
	state := tui.NewFilterState()

	// Moving below the window scrolls down just enough.
	state.Cursor = 9
	state.EnsureCursorVisible(5)
	assert.Equal(t, 5, state.ScrollOffset)

	// Moving above the window scrolls straight to the cursor.
	state.Cursor = 2
	state.EnsureCursorVisible(5)
	assert.Equal(t, 2, state.ScrollOffset)
}
