package tui

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/leynos/frankie/internal/adapter/codex"
	"github.com/leynos/frankie/internal/adapter/export"
	"github.com/leynos/frankie/internal/domain"
)

// codexPollCmd arms the agent poll timer.
func codexPollCmd() tea.Cmd {
	return tea.Tick(codexPollInterval, func(time.Time) tea.Msg {
		return CodexPollTickMsg{}
	})
}

// handleStartCodex exports the filtered comments as JSONL, spawns the
// agent, and starts the poll chain.
func (m Model) handleStartCodex() (Model, tea.Cmd) {
	if m.codexService == nil {
		m.errMessage = "no agent execution service configured"
		return m, nil
	}
	if m.codexRunning {
		m.errMessage = "an agent run is already in progress"
		return m, nil
	}

	filtered := m.filteredComments()
	payload, err := export.JSONL(filtered)
	if err != nil {
		m.errMessage = err.Error()
		return m, nil
	}

	var prURL *string
	if m.prURL != "" {
		url := m.prURL
		prURL = &url
	}

	handle, err := m.codexService.Start(codex.ExecutionRequest{
		Context: codex.ExecutionContext{
			Owner:         m.owner,
			Repo:          m.repo,
			PRNumber:      m.prNumber,
			TranscriptDir: m.transcriptDir,
		},
		PRURL:         prURL,
		CommentsJSONL: payload,
	})
	if err != nil {
		m.errMessage = err.Error()
		return m, nil
	}

	m.codexHandle = handle
	m.codexRunning = true
	m.codexStatus = "agent starting..."
	m.errMessage = ""
	return m, codexPollCmd()
}

// handleCodexPoll drains every pending update. A terminal update ends the
// poll chain; an empty handle re-arms it.
func (m Model) handleCodexPoll() (Model, tea.Cmd) {
	if m.codexHandle == nil || !m.codexRunning {
		return m, nil
	}

	for {
		update, err := m.codexHandle.TryRecv()
		if err != nil {
			if errors.Is(err, codex.ErrNoUpdate) {
				return m, codexPollCmd()
			}
			// Disconnected without a terminal event is itself a failure.
			outcome := codex.Outcome{Message: "progress stream disconnected unexpectedly"}
			return m.handleCodexFinished(CodexFinishedMsg{Outcome: outcome})
		}

		if update.Finished != nil {
			return m.handleCodexFinished(CodexFinishedMsg{Outcome: *update.Finished})
		}
		if update.Progress != nil {
			m.codexStatus = update.Progress.StatusLine()
		}
	}
}

// handleCodexFinished applies the terminal outcome and stops polling.
func (m Model) handleCodexFinished(msg CodexFinishedMsg) (Model, tea.Cmd) {
	m.codexRunning = false
	m.codexHandle = nil

	if msg.Outcome.Succeeded {
		transcript := ""
		if msg.Outcome.TranscriptPath != nil {
			transcript = " (transcript: " + *msg.Outcome.TranscriptPath + ")"
		}
		m.codexStatus = "agent run complete" + transcript
		return m, nil
	}

	m.codexStatus = ""
	m.errMessage = msg.Outcome.Message
	return m, nil
}

// filteredComments materialises the filtered view of the review set.
func (m Model) filteredComments() []domain.ReviewComment {
	comments := make([]domain.ReviewComment, 0, len(m.filteredIndices))
	for _, idx := range m.filteredIndices {
		comments = append(comments, m.reviews[idx])
	}
	return comments
}
