package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/leynos/frankie/internal/domain"
)

const commitHistoryLimit = 50

// handleEnterTimeTravel validates the selection and kicks off the
// asynchronous load. Entry requires a comment anchored to both a commit
// and a file.
func (m Model) handleEnterTimeTravel() (Model, tea.Cmd) {
	comment := m.selectedComment()
	if comment == nil {
		m.errMessage = "no comment selected"
		return m, nil
	}
	if comment.CommitSHA == nil || comment.FilePath == nil {
		m.errMessage = "selected comment has no commit and file to travel to"
		return m, nil
	}
	if m.gitOps == nil {
		m.errMessage = "no local repository available"
		return m, nil
	}

	sha := *comment.CommitSHA
	if !m.gitOps.CommitExists(sha) {
		m.errMessage = "commit " + sha + " not found in the local repository"
		return m, nil
	}

	filePath := *comment.FilePath
	line := comment.LineNumber

	loadingState := TimeTravelState{
		FilePath:     filePath,
		OriginalLine: line,
		Loading:      true,
	}
	m.timeTravel = &loadingState
	m.mode = modeTimeTravel
	m.errMessage = ""

	return m, m.loadTimeTravelCmd(sha, filePath, line)
}

// loadTimeTravelCmd assembles the full time-travel state off the update
// loop: snapshot, commit history, and the line mapping against HEAD.
func (m Model) loadTimeTravelCmd(sha, filePath string, line *int) tea.Cmd {
	gitOps := m.gitOps
	headSHA := m.headSHA
	return func() tea.Msg {
		snapshot, err := gitOps.GetCommitSnapshot(sha, &filePath)
		if err != nil {
			return TimeTravelFailedMsg{Message: err.Error()}
		}

		history, err := gitOps.GetParentCommits(sha, commitHistoryLimit)
		if err != nil {
			return TimeTravelFailedMsg{Message: err.Error()}
		}
		if len(history) == 0 {
			history = []string{snapshot.Commit.SHA}
		}

		mapping := computeMapping(gitOps, sha, headSHA, filePath, line)

		return TimeTravelLoadedMsg{State: TimeTravelState{
			Snapshot:      snapshot,
			FilePath:      filePath,
			OriginalLine:  line,
			LineMapping:   mapping,
			CommitHistory: history,
			CurrentIndex:  0,
		}}
	}
}

// handleCommitNavigation moves to the adjacent commit and reloads the
// snapshot there. Navigation is disabled while a load is in flight.
func (m Model) handleCommitNavigation(toNewer bool) (Model, tea.Cmd) {
	state := m.timeTravel
	if state == nil {
		return m, nil
	}
	if toNewer && !state.CanGoNext() {
		return m, nil
	}
	if !toNewer && !state.CanGoPrevious() {
		return m, nil
	}

	index := state.CurrentIndex + 1
	if toNewer {
		index = state.CurrentIndex - 1
	}
	sha := state.CommitHistory[index]

	state.Loading = true
	state.Err = ""

	gitOps := m.gitOps
	headSHA := m.headSHA
	filePath := state.FilePath
	line := state.OriginalLine

	return m, func() tea.Msg {
		snapshot, err := gitOps.GetCommitSnapshot(sha, &filePath)
		if err != nil {
			return TimeTravelFailedMsg{Message: err.Error()}
		}
		mapping := computeMapping(gitOps, sha, headSHA, filePath, line)
		return CommitNavigatedMsg{Index: index, Snapshot: snapshot, LineMapping: mapping}
	}
}

// handleCommitNavigated installs the freshly loaded snapshot.
func (m Model) handleCommitNavigated(msg CommitNavigatedMsg) (Model, tea.Cmd) {
	if m.timeTravel == nil {
		return m, nil
	}
	m.timeTravel.Snapshot = msg.Snapshot
	m.timeTravel.LineMapping = msg.LineMapping
	m.timeTravel.CurrentIndex = msg.Index
	m.timeTravel.Loading = false
	m.timeTravel.Err = ""
	return m, nil
}

// handleTimeTravelFailed keeps the view open with an embedded error once a
// commit history has loaded; a failure before that (including during the
// initial load) falls back to the review list.
func (m Model) handleTimeTravelFailed(msg TimeTravelFailedMsg) (Model, tea.Cmd) {
	if m.timeTravel != nil && len(m.timeTravel.CommitHistory) > 0 {
		m.timeTravel.Loading = false
		m.timeTravel.Err = msg.Message
		return m, nil
	}
	m.mode = modeList
	m.timeTravel = nil
	m.errMessage = msg.Message
	return m, nil
}

// computeMapping verifies the line mapping against HEAD when both a line
// and a head commit are known. Verification failures degrade to no
// mapping rather than failing the whole load.
func computeMapping(gitOps GitOps, sha, headSHA, filePath string, line *int) *domain.LineMapping {
	if line == nil || headSHA == "" {
		return nil
	}
	mapping, err := gitOps.VerifyLineMapping(sha, headSHA, filePath, *line)
	if err != nil {
		return nil
	}
	return &mapping
}
