package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/leynos/frankie/internal/domain"
)

const codeContextWidth = 80

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	addedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	removedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// View renders one frame.
func (m Model) View() string {
	if m.showHelp {
		return m.helpView()
	}

	switch m.mode {
	case modeDiffContext:
		return m.diffContextView()
	case modeTimeTravel:
		return m.timeTravelView()
	}

	var builder strings.Builder

	builder.WriteString(m.headerLine())
	builder.WriteByte('\n')
	builder.WriteString(m.filterBar())
	builder.WriteString("\n\n")
	builder.WriteString(m.listView())
	builder.WriteByte('\n')
	if m.draft != nil {
		builder.WriteString(m.draftView())
	} else {
		builder.WriteString(m.detailView())
	}
	builder.WriteByte('\n')
	builder.WriteString(m.statusBar())

	return builder.String()
}

func (m Model) headerLine() string {
	title := fmt.Sprintf("%s/%s #%d Review Comments", m.owner, m.repo, m.prNumber)
	if m.loading {
		title += " [Loading...]"
	}
	return headerStyle.Render(truncateToWidth(title, m.width))
}

func (m Model) filterBar() string {
	return fmt.Sprintf("Filter: %s (%d/%d)",
		m.filter.Active.Label(), len(m.filteredIndices), len(m.reviews))
}

// listView renders only the viewport window of the filtered list, with
// the selected row prefixed by '>'.
func (m Model) listView() string {
	if len(m.filteredIndices) == 0 {
		return dimStyle.Render("  (no comments match the filter)")
	}

	var rows []string
	end := min(m.filter.ScrollOffset+max(m.listHeight, 1), len(m.filteredIndices))
	for pos := m.filter.ScrollOffset; pos < end; pos++ {
		comment := m.reviews[m.filteredIndices[pos]]
		prefix := "  "
		if pos == m.filter.Cursor {
			prefix = "> "
		}

		row := truncateToWidth(prefix+listRowText(comment), max(m.width, 1))
		if pos == m.filter.Cursor {
			row = selectedStyle.Render(row)
		}
		rows = append(rows, row)
	}
	return strings.Join(rows, "\n")
}

func listRowText(comment domain.ReviewComment) string {
	location := domain.StringValue(comment.FilePath, "(no file)")
	if comment.LineNumber != nil {
		location = fmt.Sprintf("%s:%d", location, *comment.LineNumber)
	}
	author := domain.StringValue(comment.Author, "unknown")
	body := strings.ReplaceAll(domain.StringValue(comment.Body, ""), "\n", " ")
	return fmt.Sprintf("%s  %s  %s", location, author, body)
}

// detailView renders the selected comment: header, word-wrapped body, and
// the diff hunk wrapped to at most 80 columns.
func (m Model) detailView() string {
	comment := m.selectedComment()
	if comment == nil {
		return dimStyle.Render("(nothing selected)")
	}

	var lines []string
	author := domain.StringValue(comment.Author, "unknown")
	location := domain.StringValue(comment.FilePath, "(no file)")
	if comment.LineNumber != nil {
		location = fmt.Sprintf("%s:%d", location, *comment.LineNumber)
	}
	header := fmt.Sprintf("%s — %s", author, location)
	if comment.CreatedAt != nil {
		header += "  " + *comment.CreatedAt
	}
	lines = append(lines, headerStyle.Render(truncateToWidth(header, m.width)))

	if body := domain.StringValue(comment.Body, ""); body != "" {
		lines = append(lines, "")
		lines = append(lines, wrapText(body, max(m.width, 1))...)
	}

	if comment.DiffHunk != nil && strings.TrimSpace(*comment.DiffHunk) != "" {
		lines = append(lines, "")
		lines = append(lines, renderCodeContext(*comment.DiffHunk, min(codeContextWidth, max(m.width, 1)))...)
	}

	return strings.Join(padToHeight(lines, minDetailHeight), "\n")
}

// renderCodeContext wraps hunk lines and colours additions and removals.
func renderCodeContext(hunk string, width int) []string {
	var rendered []string
	for _, line := range strings.Split(strings.TrimRight(hunk, "\n"), "\n") {
		for _, piece := range wrapText(line, width) {
			switch {
			case strings.HasPrefix(line, "+"):
				piece = addedStyle.Render(piece)
			case strings.HasPrefix(line, "-"):
				piece = removedStyle.Render(piece)
			case strings.HasPrefix(line, "@@"):
				piece = dimStyle.Render(piece)
			}
			rendered = append(rendered, piece)
		}
	}
	return rendered
}

func (m Model) draftView() string {
	draft := m.draft

	var lines []string
	lines = append(lines, headerStyle.Render(fmt.Sprintf("Reply to comment %d (%d/%d characters)",
		draft.CommentID, draft.CharCount(), draft.MaxLength)))
	lines = append(lines, "")
	lines = append(lines, wrapText(draft.Text+"▏", max(m.width, 1))...)

	if draft.Preview != nil {
		lines = append(lines, "")
		label := draft.Preview.Origin
		if draft.Preview.Fallback {
			label += " (fallback: " + draft.Preview.Reason + ")"
		}
		lines = append(lines, dimStyle.Render("--- "+label+" preview (enter: apply, esc: discard) ---"))
		lines = append(lines, wrapText(draft.Preview.Text, max(m.width, 1))...)
	}

	if draft.ReadyToSend {
		lines = append(lines, "", addedStyle.Render("ready to send"))
	}
	if draft.Err != "" {
		lines = append(lines, "", errorStyle.Render(draft.Err))
	}

	return strings.Join(padToHeight(lines, minDetailHeight), "\n")
}

func (m Model) diffContextView() string {
	var builder strings.Builder
	builder.WriteString(headerStyle.Render("Diff context"))

	if m.diffContext == nil || len(m.diffContext.Hunks) == 0 {
		builder.WriteString("\n\n")
		builder.WriteString(dimStyle.Render("(no diff hunks in the filtered comments)"))
		return builder.String()
	}

	current := m.diffContext.Current()
	fmt.Fprintf(&builder, "  %d/%d\n\n", m.diffContext.CurrentIndex+1, len(m.diffContext.Hunks))
	builder.WriteString(headerStyle.Render(current.FilePath))
	builder.WriteByte('\n')
	for _, line := range renderCodeContext(current.Text, max(m.width, 1)) {
		builder.WriteString(line)
		builder.WriteByte('\n')
	}
	builder.WriteString(dimStyle.Render("n: next  p: previous  esc: back"))
	return builder.String()
}

func (m Model) timeTravelView() string {
	state := m.timeTravel
	var builder strings.Builder
	builder.WriteString(headerStyle.Render("Time travel"))
	builder.WriteByte('\n')

	if state == nil {
		return builder.String()
	}
	if state.Loading {
		builder.WriteString("\nLoading commit...\n")
		return builder.String()
	}
	if state.Err != "" {
		builder.WriteString("\n" + errorStyle.Render("Error: "+state.Err) + "\n")
	}

	commit := state.Snapshot.Commit
	fmt.Fprintf(&builder, "\ncommit %s (%d/%d)\n", commit.ShortSHA(),
		state.CurrentIndex+1, len(state.CommitHistory))
	fmt.Fprintf(&builder, "%s — %s\n", commit.Author, commit.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&builder, "%s\n", commit.Message)

	if state.LineMapping != nil {
		builder.WriteString(dimStyle.Render(lineMappingSummary(*state.LineMapping)))
		builder.WriteByte('\n')
	}

	if state.Snapshot.FileContent != nil {
		builder.WriteByte('\n')
		builder.WriteString(headerStyle.Render(state.FilePath))
		builder.WriteByte('\n')
		lines := strings.Split(*state.Snapshot.FileContent, "\n")
		visible := max(m.height-12, 5)
		window := fileWindow(lines, state.OriginalLine, visible)
		for _, line := range window {
			builder.WriteString(truncateToWidth(line, max(m.width, 1)))
			builder.WriteByte('\n')
		}
	}

	builder.WriteString(dimStyle.Render("n: newer  p: older  esc: back"))
	return builder.String()
}

func lineMappingSummary(mapping domain.LineMapping) string {
	switch mapping.Kind {
	case domain.LineMappingExact:
		return fmt.Sprintf("line %d unchanged at HEAD", mapping.Original)
	case domain.LineMappingMoved:
		return fmt.Sprintf("line %d moved to %d at HEAD (offset %+d)",
			mapping.Original, mapping.Current, mapping.Offset())
	case domain.LineMappingDeleted:
		return fmt.Sprintf("line %d deleted at HEAD", mapping.Original)
	default:
		return fmt.Sprintf("line %d not found at HEAD", mapping.Original)
	}
}

// fileWindow centres the viewport around the commented line.
func fileWindow(lines []string, focusLine *int, visible int) []string {
	start := 0
	if focusLine != nil {
		start = max(*focusLine-1-visible/2, 0)
	}
	end := min(start+visible, len(lines))

	window := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		marker := "  "
		if focusLine != nil && i == *focusLine-1 {
			marker = "> "
		}
		window = append(window, fmt.Sprintf("%s%4d %s", marker, i+1, lines[i]))
	}
	return window
}

func (m Model) statusBar() string {
	if m.errMessage != "" {
		return errorStyle.Render(truncateToWidth("Error: "+m.errMessage, max(m.width, 1)))
	}
	if m.codexStatus != "" {
		return truncateToWidth(m.codexStatus, max(m.width, 1))
	}
	return dimStyle.Render(truncateToWidth(
		"j/k: move  f: filter  r: refresh  d: diff  t: time travel  a: reply  x: agent  ?: help  q: quit",
		max(m.width, 1)))
}

func (m Model) helpView() string {
	lines := []string{
		headerStyle.Render("Help"),
		"",
		"j / down       move down",
		"k / up         move up",
		"PgDn / PgUp    move a page",
		"g / Home       first comment",
		"G / End        last comment",
		"f              cycle filter (All / Unresolved)",
		"esc            clear filter or leave a subview",
		"r              refresh now",
		"d              diff-context view",
		"t              time travel to the comment's commit",
		"a              draft a reply",
		"x              run the agent on the filtered comments",
		"?              toggle this help",
		"q              quit",
		"",
		"While drafting a reply:",
		"ctrl+s         mark ready to send",
		"ctrl+e         AI expand preview",
		"ctrl+r         AI reword preview",
		"esc            cancel draft / discard preview",
	}
	return strings.Join(lines, "\n")
}

func padToHeight(lines []string, height int) []string {
	for len(lines) < height {
		lines = append(lines, "")
	}
	return lines
}
