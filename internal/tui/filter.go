package tui

import (
	"fmt"

	"github.com/leynos/frankie/internal/domain"
)

// FilterKind discriminates the review-list filters.
type FilterKind int

const (
	// FilterAll shows every review comment.
	FilterAll FilterKind = iota
	// FilterUnresolved shows root comments nobody has replied to.
	FilterUnresolved
	// FilterByFile shows comments on one file.
	FilterByFile
	// FilterByReviewer shows comments by one reviewer.
	FilterByReviewer
	// FilterByCommitRange shows comments anchored at either range endpoint.
	FilterByCommitRange
)

// ReviewFilter selects which review comments the list shows.
type ReviewFilter struct {
	Kind     FilterKind
	File     string
	Reviewer string
	FromSHA  string
	ToSHA    string
}

// AllFilter returns the default filter.
func AllFilter() ReviewFilter {
	return ReviewFilter{Kind: FilterAll}
}

// Matches reports whether the comment passes the filter. Unresolved needs
// the full set to know whether anything replies to the comment.
func (f ReviewFilter) Matches(comment domain.ReviewComment, all []domain.ReviewComment) bool {
	switch f.Kind {
	case FilterAll:
		return true
	case FilterUnresolved:
		if comment.IsReply() {
			return false
		}
		for _, other := range all {
			if other.InReplyToID != nil && *other.InReplyToID == comment.ID {
				return false
			}
		}
		return true
	case FilterByFile:
		return comment.FilePath != nil && *comment.FilePath == f.File
	case FilterByReviewer:
		return comment.Author != nil && *comment.Author == f.Reviewer
	case FilterByCommitRange:
		// Full range containment would need commit ordering; matching the
		// endpoints covers the common anchored-at-boundary case.
		if comment.CommitSHA == nil {
			return false
		}
		return *comment.CommitSHA == f.FromSHA || *comment.CommitSHA == f.ToSHA
	default:
		return true
	}
}

// Label names the filter for the filter bar.
func (f ReviewFilter) Label() string {
	switch f.Kind {
	case FilterAll:
		return "All"
	case FilterUnresolved:
		return "Unresolved"
	case FilterByFile:
		return "File: " + f.File
	case FilterByReviewer:
		return "Reviewer: " + f.Reviewer
	case FilterByCommitRange:
		return fmt.Sprintf("Commits: %s..%s", shortSHA(f.FromSHA), shortSHA(f.ToSHA))
	default:
		return "All"
	}
}

// Cycle advances All to Unresolved and everything else back to All.
func (f ReviewFilter) Cycle() ReviewFilter {
	if f.Kind == FilterAll {
		return ReviewFilter{Kind: FilterUnresolved}
	}
	return AllFilter()
}

func shortSHA(sha string) string {
	if len(sha) <= 7 {
		return sha
	}
	return sha[:7]
}

// FilterState tracks the active filter and the list position within it.
type FilterState struct {
	Active       ReviewFilter
	Cursor       int
	ScrollOffset int
}

// NewFilterState starts on the default filter at the top of the list.
func NewFilterState() FilterState {
	return FilterState{Active: AllFilter()}
}

// ClampCursor pins the cursor inside [0, filteredCount).
func (s *FilterState) ClampCursor(filteredCount int) {
	if filteredCount == 0 {
		s.Cursor = 0
		s.ScrollOffset = 0
		return
	}
	if s.Cursor >= filteredCount {
		s.Cursor = filteredCount - 1
	}
	if s.Cursor < 0 {
		s.Cursor = 0
	}
}

// EnsureCursorVisible adjusts the scroll offset so the cursor sits inside
// the viewport window.
func (s *FilterState) EnsureCursorVisible(visibleHeight int) {
	if visibleHeight <= 0 {
		return
	}
	if s.Cursor < s.ScrollOffset {
		s.ScrollOffset = s.Cursor
	}
	if s.Cursor >= s.ScrollOffset+visibleHeight {
		s.ScrollOffset = s.Cursor - visibleHeight + 1
	}
	if s.ScrollOffset < 0 {
		s.ScrollOffset = 0
	}
}
