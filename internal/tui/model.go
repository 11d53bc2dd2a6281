// Package tui implements the interactive review-comment browser as a
// bubbletea program: a single update function owns all state, and every
// piece of asynchronous work is a command whose completion arrives as a
// message.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/leynos/frankie/internal/adapter/codex"
	"github.com/leynos/frankie/internal/adapter/rewrite"
	"github.com/leynos/frankie/internal/adapter/telemetry"
	"github.com/leynos/frankie/internal/domain"
)

const (
	defaultSyncInterval = 30 * time.Second
	codexPollInterval   = 150 * time.Millisecond
	minDetailHeight     = 8
)

// viewMode selects which full-screen view is active.
type viewMode int

const (
	modeList viewMode = iota
	modeDiffContext
	modeTimeTravel
)

// GitOps is the version-control capability the time-travel view consumes.
type GitOps interface {
	CommitExists(sha string) bool
	GetCommitSnapshot(sha string, filePath *string) (domain.CommitSnapshot, error)
	GetParentCommits(sha string, limit int) ([]string, error)
	VerifyLineMapping(oldSHA, newSHA, filePath string, line int) (domain.LineMapping, error)
}

// RefreshFunc fetches the current review-comment set from the forge.
type RefreshFunc func(ctx context.Context) ([]domain.ReviewComment, error)

// Options is the write-once bootstrap state installed before the update
// loop runs.
type Options struct {
	Reviews        []domain.ReviewComment
	Refresh        RefreshFunc
	Telemetry      telemetry.Sink
	GitOps         GitOps
	HeadSHA        string
	CodexService   codex.ExecutionService
	RewriteService rewrite.Service
	ReplyTemplates []string
	MaxReplyLength int
	SyncInterval   time.Duration
	PRURL          string
	Owner          string
	Repo           string
	PRNumber       int
	TranscriptDir  string
	Width          int
	Height         int
}

// Model is the complete TUI state. It is mutated only inside Update.
type Model struct {
	reviews         []domain.ReviewComment
	filteredIndices []int
	filter          FilterState
	loading         bool
	errMessage      string
	width           int
	height          int
	showHelp        bool
	selectedID      *int64
	initialized     bool

	listHeight   int
	detailHeight int

	mode        viewMode
	diffContext *DiffContextState
	timeTravel  *TimeTravelState
	draft       *ReplyDraftState

	refresh      RefreshFunc
	syncInterval time.Duration
	telemetry    telemetry.Sink

	gitOps  GitOps
	headSHA string

	codexService  codex.ExecutionService
	codexHandle   *codex.Handle
	codexStatus   string
	codexRunning  bool
	transcriptDir string

	rewriteService rewrite.Service
	replyTemplates []string
	maxReplyLength int

	prURL    string
	owner    string
	repo     string
	prNumber int
}

// New builds the model from the bootstrap options.
func New(opts Options) Model {
	sink := opts.Telemetry
	if sink == nil {
		sink = telemetry.NoopSink{}
	}
	interval := opts.SyncInterval
	if interval <= 0 {
		interval = defaultSyncInterval
	}
	maxReply := opts.MaxReplyLength
	if maxReply < 1 {
		maxReply = 1000
	}

	m := Model{
		reviews:        sortReviewsByID(opts.Reviews),
		filter:         NewFilterState(),
		width:          opts.Width,
		height:         opts.Height,
		refresh:        opts.Refresh,
		syncInterval:   interval,
		telemetry:      sink,
		gitOps:         opts.GitOps,
		headSHA:        opts.HeadSHA,
		codexService:   opts.CodexService,
		transcriptDir:  opts.TranscriptDir,
		rewriteService: opts.RewriteService,
		replyTemplates: opts.ReplyTemplates,
		maxReplyLength: maxReply,
		prURL:          opts.PRURL,
		owner:          opts.Owner,
		repo:           opts.Repo,
		prNumber:       opts.PRNumber,
	}
	m.recomputeLayout()
	m.rebuildFilterCache()
	return m
}

// Init delivers the one-shot initialisation message.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return InitializedMsg{} }
}

// Reviews exposes the stored review set (for rendering and tests).
func (m Model) Reviews() []domain.ReviewComment {
	return m.reviews
}

// FilteredIndices exposes the filter cache (for rendering and tests).
func (m Model) FilteredIndices() []int {
	return m.filteredIndices
}

// Cursor exposes the cursor position.
func (m Model) Cursor() int {
	return m.filter.Cursor
}

// ScrollOffset exposes the viewport offset.
func (m Model) ScrollOffset() int {
	return m.filter.ScrollOffset
}

// SelectedCommentID exposes the tracked selection.
func (m Model) SelectedCommentID() *int64 {
	return m.selectedID
}

// ErrMessage exposes the status-bar error.
func (m Model) ErrMessage() string {
	return m.errMessage
}

// Loading reports whether a sync is in flight.
func (m Model) Loading() bool {
	return m.loading
}

// Draft exposes the reply draft, nil when not editing.
func (m Model) Draft() *ReplyDraftState {
	return m.draft
}

// TimeTravel exposes the time-travel state, nil outside the view.
func (m Model) TimeTravel() *TimeTravelState {
	return m.timeTravel
}

// DiffContext exposes the diff-context state, nil outside the view.
func (m Model) DiffContext() *DiffContextState {
	return m.diffContext
}

// selectedComment returns the comment under the cursor.
func (m *Model) selectedComment() *domain.ReviewComment {
	if len(m.filteredIndices) == 0 || m.filter.Cursor >= len(m.filteredIndices) {
		return nil
	}
	return &m.reviews[m.filteredIndices[m.filter.Cursor]]
}

// rebuildFilterCache recomputes filteredIndices in reviews order, clamps
// the cursor, and refreshes the tracked selection from the cursor.
func (m *Model) rebuildFilterCache() {
	m.filteredIndices = m.filteredIndices[:0]
	for i, review := range m.reviews {
		if m.filter.Active.Matches(review, m.reviews) {
			m.filteredIndices = append(m.filteredIndices, i)
		}
	}
	m.filter.ClampCursor(len(m.filteredIndices))
	m.filter.EnsureCursorVisible(m.listHeight)
	m.updateSelectedFromCursor()
}

// updateSelectedFromCursor re-derives the tracked id from the cursor.
func (m *Model) updateSelectedFromCursor() {
	if comment := m.selectedComment(); comment != nil {
		id := comment.ID
		m.selectedID = &id
	} else {
		m.selectedID = nil
	}
}

// restoreSelection moves the cursor to the tracked id's new filtered
// position, or clamps when the id is gone.
func (m *Model) restoreSelection(previousID *int64) {
	if previousID != nil {
		for pos, idx := range m.filteredIndices {
			if m.reviews[idx].ID == *previousID {
				m.filter.Cursor = pos
				m.filter.EnsureCursorVisible(m.listHeight)
				m.updateSelectedFromCursor()
				return
			}
		}
	}
	m.filter.ClampCursor(len(m.filteredIndices))
	m.filter.EnsureCursorVisible(m.listHeight)
	m.updateSelectedFromCursor()
}

// recomputeLayout splits the terminal height into list and detail panes.
func (m *Model) recomputeLayout() {
	// Header, filter bar, blank separator, status bar.
	chromeRows := 4
	available := m.height - chromeRows
	if available < minDetailHeight+1 {
		m.listHeight = max(available-minDetailHeight, 1)
		m.detailHeight = minDetailHeight
		return
	}
	m.detailHeight = max(minDetailHeight, available/3)
	m.listHeight = available - m.detailHeight
}
