package tui

import (
	"github.com/leynos/frankie/internal/domain"
)

// TimeTravelState is the commit-history navigation view anchored at the
// selected comment's commit. CommitHistory is ordered newest first;
// CurrentIndex points into it.
type TimeTravelState struct {
	Snapshot      domain.CommitSnapshot
	FilePath      string
	OriginalLine  *int
	LineMapping   *domain.LineMapping
	CommitHistory []string
	CurrentIndex  int
	Loading       bool
	Err           string
}

// CanGoNext reports whether a newer commit is available.
func (s *TimeTravelState) CanGoNext() bool {
	return !s.Loading && s.CurrentIndex > 0
}

// CanGoPrevious reports whether an older commit is available.
func (s *TimeTravelState) CanGoPrevious() bool {
	return !s.Loading && s.CurrentIndex+1 < len(s.CommitHistory)
}

// CurrentSHA returns the commit the view is positioned on.
func (s *TimeTravelState) CurrentSHA() string {
	if s.CurrentIndex < len(s.CommitHistory) {
		return s.CommitHistory[s.CurrentIndex]
	}
	return s.Snapshot.Commit.SHA
}
