package tui

import (
	"sort"
	"strings"

	"github.com/leynos/frankie/internal/domain"
)

// DiffHunkEntry is one rendered hunk of the diff-context view.
type DiffHunkEntry struct {
	FilePath   string
	LineNumber int
	Text       string
	Rendered   []string
}

// DiffContextState is the full-screen hunk navigation view. Entries are
// deduplicated by (file path, hunk text) and sorted by file then line.
type DiffContextState struct {
	Hunks        []DiffHunkEntry
	CurrentIndex int
}

// CollectDiffContext builds the view from the filtered comments,
// positioning the index on the selected comment's hunk when present.
func CollectDiffContext(reviews []domain.ReviewComment, filteredIndices []int, selectedID *int64, width int) *DiffContextState {
	type hunkKey struct {
		file string
		text string
	}

	seen := make(map[hunkKey]struct{})
	var hunks []DiffHunkEntry
	keyByCommentID := make(map[int64]hunkKey)

	for _, idx := range filteredIndices {
		comment := reviews[idx]
		if comment.DiffHunk == nil || strings.TrimSpace(*comment.DiffHunk) == "" {
			continue
		}

		key := hunkKey{
			file: domain.StringValue(comment.FilePath, "(unknown file)"),
			text: *comment.DiffHunk,
		}
		keyByCommentID[comment.ID] = key

		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		line := 0
		if comment.LineNumber != nil {
			line = *comment.LineNumber
		}
		hunks = append(hunks, DiffHunkEntry{
			FilePath:   key.file,
			LineNumber: line,
			Text:       key.text,
			Rendered:   renderHunk(key.file, key.text, width),
		})
	}

	sort.SliceStable(hunks, func(i, j int) bool {
		if hunks[i].FilePath != hunks[j].FilePath {
			return hunks[i].FilePath < hunks[j].FilePath
		}
		return hunks[i].LineNumber < hunks[j].LineNumber
	})

	state := &DiffContextState{Hunks: hunks}

	if selectedID != nil {
		if key, ok := keyByCommentID[*selectedID]; ok {
			for i, hunk := range hunks {
				if hunk.FilePath == key.file && hunk.Text == key.text {
					state.CurrentIndex = i
					break
				}
			}
		}
	}
	return state
}

// Next moves to the following hunk, clamped at the end.
func (s *DiffContextState) Next() {
	if s.CurrentIndex+1 < len(s.Hunks) {
		s.CurrentIndex++
	}
}

// Previous moves to the preceding hunk, clamped at the start.
func (s *DiffContextState) Previous() {
	if s.CurrentIndex > 0 {
		s.CurrentIndex--
	}
}

// Current returns the hunk under the index, or nil when there are none.
func (s *DiffContextState) Current() *DiffHunkEntry {
	if len(s.Hunks) == 0 || s.CurrentIndex >= len(s.Hunks) {
		return nil
	}
	return &s.Hunks[s.CurrentIndex]
}

func renderHunk(filePath, text string, width int) []string {
	header := filePath
	lines := []string{header, strings.Repeat("-", min(len(header), max(width, 1)))}
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		lines = append(lines, truncateToWidth(line, width))
	}
	return lines
}
