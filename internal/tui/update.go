package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/leynos/frankie/internal/adapter/rewrite"
)

// Update is the single mutation point of the model. Every message —
// keyboard input, timer tick, or async command completion — lands here.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recomputeLayout()
		m.filter.EnsureCursorVisible(m.listHeight)
		if m.mode == modeDiffContext {
			m.diffContext = CollectDiffContext(m.reviews, m.filteredIndices, m.selectedID, m.width)
		}
		return m, nil

	case InitializedMsg:
		if m.initialized {
			return m, nil
		}
		m.initialized = true
		return m, m.syncTickCmd()

	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
		return m, nil

	case CursorUpMsg:
		return m.moveCursor(-1), nil
	case CursorDownMsg:
		return m.moveCursor(1), nil
	case PageUpMsg:
		return m.moveCursor(-max(m.listHeight, 1)), nil
	case PageDownMsg:
		return m.moveCursor(max(m.listHeight, 1)), nil
	case HomeMsg:
		return m.moveCursorTo(0), nil
	case EndMsg:
		return m.moveCursorTo(len(m.filteredIndices) - 1), nil

	case SetFilterMsg:
		return m.applyFilter(msg.Filter), nil
	case ClearFilterMsg:
		return m.applyFilter(AllFilter()), nil
	case CycleFilterMsg:
		return m.applyFilter(m.filter.Active.Cycle()), nil

	case RefreshRequestedMsg:
		return m.handleSyncTick()
	case SyncTickMsg:
		return m.handleSyncTick()
	case SyncCompleteMsg:
		return m.handleSyncComplete(msg)
	case RefreshCompleteMsg:
		return m.handleRefreshComplete(msg)
	case RefreshFailedMsg:
		return m.handleRefreshFailed(msg)

	case StartCodexExecutionMsg:
		return m.handleStartCodex()
	case CodexPollTickMsg:
		return m.handleCodexPoll()
	case CodexProgressMsg:
		m.codexStatus = msg.Event.StatusLine()
		return m, nil
	case CodexFinishedMsg:
		return m.handleCodexFinished(msg)

	case EnterTimeTravelMsg:
		return m.handleEnterTimeTravel()
	case ExitTimeTravelMsg:
		m.mode = modeList
		m.timeTravel = nil
		return m, nil
	case NextCommitMsg:
		return m.handleCommitNavigation(true)
	case PreviousCommitMsg:
		return m.handleCommitNavigation(false)
	case TimeTravelLoadedMsg:
		state := msg.State
		m.timeTravel = &state
		m.mode = modeTimeTravel
		return m, nil
	case TimeTravelFailedMsg:
		return m.handleTimeTravelFailed(msg)
	case CommitNavigatedMsg:
		return m.handleCommitNavigated(msg)

	case EnterDiffContextMsg:
		m.diffContext = CollectDiffContext(m.reviews, m.filteredIndices, m.selectedID, m.width)
		m.mode = modeDiffContext
		return m, nil
	case ExitDiffContextMsg:
		m.mode = modeList
		m.diffContext = nil
		return m, nil
	case NextHunkMsg:
		if m.diffContext != nil {
			m.diffContext.Next()
		}
		return m, nil
	case PreviousHunkMsg:
		if m.diffContext != nil {
			m.diffContext.Previous()
		}
		return m, nil

	case StartReplyDraftMsg:
		return m.handleStartReplyDraft()
	case ReplyDraftInsertCharMsg:
		return m.handleDraftEdit(func(d *ReplyDraftState) error { return d.PushChar(msg.Char) })
	case ReplyDraftInsertTextMsg:
		return m.handleDraftEdit(func(d *ReplyDraftState) error { return d.AppendText(msg.Text) })
	case ReplyDraftInsertTemplateMsg:
		return m.handleInsertTemplate(msg.Index)
	case ReplyDraftBackspaceMsg:
		if m.draft != nil {
			m.draft.Backspace()
		}
		return m, nil
	case ReplyDraftCancelMsg:
		m.draft = nil
		return m, nil
	case ReplyDraftRequestSendMsg:
		return m.handleDraftEdit(func(d *ReplyDraftState) error { return d.RequestSend() })
	case ReplyDraftRequestAiRewriteMsg:
		return m.handleAiRewriteRequest(msg.Mode)
	case ReplyDraftAiResultMsg:
		if m.draft != nil {
			preview := msg.Preview
			m.draft.Preview = &preview
		}
		return m, nil
	case ReplyDraftAiApplyMsg:
		if m.draft != nil {
			m.draft.ApplyPreview()
		}
		return m, nil
	case ReplyDraftAiDiscardMsg:
		if m.draft != nil {
			m.draft.DiscardPreview()
		}
		return m, nil
	}

	return m, nil
}

// moveCursor shifts the cursor by delta rows, clamped to the filtered
// list, then keeps it visible and re-derives the selection.
func (m Model) moveCursor(delta int) Model {
	return m.moveCursorTo(m.filter.Cursor + delta)
}

func (m Model) moveCursorTo(position int) Model {
	count := len(m.filteredIndices)
	if count == 0 {
		m.filter.Cursor = 0
		m.filter.ScrollOffset = 0
		m.updateSelectedFromCursor()
		return m
	}
	if position < 0 {
		position = 0
	}
	if position >= count {
		position = count - 1
	}
	m.filter.Cursor = position
	m.filter.EnsureCursorVisible(m.listHeight)
	m.updateSelectedFromCursor()
	return m
}

func (m Model) applyFilter(filter ReviewFilter) Model {
	previousID := m.selectedID
	m.filter.Active = filter
	m.rebuildFilterCache()
	m.restoreSelection(previousID)
	return m
}

// handleKey maps raw terminal keys onto the message vocabulary. Keys act
// on whichever view is active; the draft editor captures text input
// first.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.draft != nil {
		return m.handleDraftKey(msg)
	}

	switch m.mode {
	case modeDiffContext:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc", "d":
			return m.Update(ExitDiffContextMsg{})
		case "n", "right", "j", "down":
			return m.Update(NextHunkMsg{})
		case "p", "left", "k", "up":
			return m.Update(PreviousHunkMsg{})
		}
		return m, nil

	case modeTimeTravel:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc", "t":
			return m.Update(ExitTimeTravelMsg{})
		case "n", "right":
			return m.Update(NextCommitMsg{})
		case "p", "left":
			return m.Update(PreviousCommitMsg{})
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "j", "down":
		return m.Update(CursorDownMsg{})
	case "k", "up":
		return m.Update(CursorUpMsg{})
	case "pgdown":
		return m.Update(PageDownMsg{})
	case "pgup":
		return m.Update(PageUpMsg{})
	case "g", "home":
		return m.Update(HomeMsg{})
	case "G", "end":
		return m.Update(EndMsg{})
	case "f":
		return m.Update(CycleFilterMsg{})
	case "esc":
		return m.Update(ClearFilterMsg{})
	case "r":
		return m.Update(RefreshRequestedMsg{})
	case "?":
		return m.Update(ToggleHelpMsg{})
	case "d":
		return m.Update(EnterDiffContextMsg{})
	case "t":
		return m.Update(EnterTimeTravelMsg{})
	case "a":
		return m.Update(StartReplyDraftMsg{})
	case "x":
		return m.Update(StartCodexExecutionMsg{})
	}
	return m, nil
}

// handleDraftKey routes keys while the reply editor is open.
func (m Model) handleDraftKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if m.draft.Preview != nil {
			return m.Update(ReplyDraftAiDiscardMsg{})
		}
		return m.Update(ReplyDraftCancelMsg{})
	case tea.KeyBackspace:
		return m.Update(ReplyDraftBackspaceMsg{})
	case tea.KeyEnter:
		if m.draft.Preview != nil {
			return m.Update(ReplyDraftAiApplyMsg{})
		}
		return m.Update(ReplyDraftInsertCharMsg{Char: '\n'})
	case tea.KeyCtrlS:
		return m.Update(ReplyDraftRequestSendMsg{})
	case tea.KeyCtrlE:
		return m.Update(ReplyDraftRequestAiRewriteMsg{Mode: rewrite.ModeExpand})
	case tea.KeyCtrlR:
		return m.Update(ReplyDraftRequestAiRewriteMsg{Mode: rewrite.ModeReword})
	case tea.KeySpace:
		return m.Update(ReplyDraftInsertCharMsg{Char: ' '})
	case tea.KeyRunes:
		if len(msg.Runes) == 1 {
			return m.Update(ReplyDraftInsertCharMsg{Char: msg.Runes[0]})
		}
		return m.Update(ReplyDraftInsertTextMsg{Text: string(msg.Runes)})
	}
	return m, nil
}
