package codex

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/leynos/frankie/internal/domain"
)

// ExecutionContext names the PR an agent run operates on.
type ExecutionContext struct {
	Owner    string
	Repo     string
	PRNumber int
	// TranscriptDir overrides the default transcript base directory.
	TranscriptDir string
}

// ExecutionRequest bundles the context with the rendered comment export
// the agent receives on stdin.
type ExecutionRequest struct {
	Context       ExecutionContext
	PRURL         *string
	CommentsJSONL string
}

// ProgressEvent is one incremental update surfaced to the TUI.
type ProgressEvent interface {
	// StatusLine formats a user-facing status string.
	StatusLine() string
}

// StatusEvent is a parsed status message from a JSONL event.
type StatusEvent struct {
	Message string
}

// StatusLine implements ProgressEvent.
func (e StatusEvent) StatusLine() string {
	return "progress: " + e.Message
}

// ParseWarningEvent is a non-JSON line encountered on stdout.
type ParseWarningEvent struct {
	RawLine string
}

// StatusLine implements ProgressEvent.
func (e ParseWarningEvent) StatusLine() string {
	return "received non-JSON event: " + e.RawLine
}

// Outcome is the terminal result of an agent run.
type Outcome struct {
	// Succeeded is true when the agent exited zero.
	Succeeded bool
	// TranscriptPath points at the saved transcript when one was written.
	TranscriptPath *string
	// Message is the failure reason when Succeeded is false.
	Message string
	// ExitCode carries the non-zero exit status when known.
	ExitCode *int
}

// Update is one entry of the execution update stream: either an
// incremental progress event or the terminal outcome.
type Update struct {
	Progress ProgressEvent
	Finished *Outcome
}

// Sentinel results for Handle.TryRecv.
var (
	// ErrNoUpdate means no update is pending; the handle stays armed.
	ErrNoUpdate = errors.New("no codex update pending")
	// ErrStreamClosed means the update stream has ended.
	ErrStreamClosed = errors.New("codex update stream closed")
)

// Handle is the receive-only endpoint the TUI polls for updates.
type Handle struct {
	updates <-chan Update
}

// NewHandle wraps a channel in a polling handle. Exposed for tests and
// fake services.
func NewHandle(updates <-chan Update) *Handle {
	return &Handle{updates: updates}
}

// TryRecv receives the next update without blocking.
func (h *Handle) TryRecv() (Update, error) {
	select {
	case update, ok := <-h.updates:
		if !ok {
			return Update{}, ErrStreamClosed
		}
		return update, nil
	default:
		return Update{}, ErrNoUpdate
	}
}

// ExecutionService launches agent runs.
type ExecutionService interface {
	Start(request ExecutionRequest) (*Handle, error)
}

// SystemService runs the real agent binary as a subprocess.
type SystemService struct {
	command string
}

// NewSystemService creates a service invoking the default `codex` command.
func NewSystemService() *SystemService {
	return &SystemService{command: "codex"}
}

// NewSystemServiceWithCommand creates a service invoking a custom command.
func NewSystemServiceWithCommand(command string) *SystemService {
	return &SystemService{command: command}
}

// Start validates the request, prepares the transcript location, and
// spawns the agent. The returned handle yields progress updates and ends
// with exactly one terminal outcome.
func (s *SystemService) Start(request ExecutionRequest) (*Handle, error) {
	if strings.TrimSpace(request.CommentsJSONL) == "" {
		return nil, domain.NewError(domain.ErrConfiguration, "cannot run the agent without exported comments")
	}

	baseDir := request.Context.TranscriptDir
	if baseDir == "" {
		resolved, err := DefaultBaseDir()
		if err != nil {
			return nil, err
		}
		baseDir = resolved
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, domain.WrapError(domain.ErrIO, err, "create transcript directory %s", baseDir)
	}

	meta := TranscriptMetadata{
		Owner:    request.Context.Owner,
		Repo:     request.Context.Repo,
		PRNumber: request.Context.PRNumber,
	}
	transcriptPath := TranscriptPath(baseDir, meta, time.Now())

	updates := make(chan Update, 64)
	go runAgent(s.command, request, transcriptPath, updates)

	return NewHandle(updates), nil
}

// runAgent owns the subprocess lifecycle: it feeds the comment export to
// stdin, mirrors every stdout line into the transcript, surfaces parsed
// events as progress, and finishes with the terminal outcome.
func runAgent(command string, request ExecutionRequest, transcriptPath string, updates chan<- Update) {
	defer close(updates)

	session := SessionState{
		Status:         SessionRunning,
		TranscriptPath: transcriptPath,
		Owner:          request.Context.Owner,
		Repository:     request.Context.Repo,
		PRNumber:       request.Context.PRNumber,
		StartedAt:      time.Now().UTC(),
	}

	finish := func(outcome Outcome) {
		now := time.Now().UTC()
		session.FinishedAt = &now
		if outcome.Succeeded {
			session.Status = SessionCompleted
		} else {
			session.Status = SessionFailed
		}
		// Sidecar persistence is best-effort; the outcome still reaches
		// the TUI when the state directory is unwritable.
		_ = session.WriteSidecar()
		updates <- Update{Finished: &outcome}
	}

	writer, err := CreateTranscript(transcriptPath)
	if err != nil {
		finish(Outcome{Message: err.Error()})
		return
	}
	defer writer.Close()

	if err := session.WriteSidecar(); err != nil {
		finish(Outcome{Message: err.Error()})
		return
	}

	cmd := exec.Command(command, "exec", "--json")
	cmd.Stdin = strings.NewReader(request.CommentsJSONL)
	cmd.Stderr = io.Discard

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		finish(Outcome{Message: fmt.Sprintf("open agent stdout: %v", err)})
		return
	}

	if err := cmd.Start(); err != nil {
		finish(Outcome{Message: fmt.Sprintf("start %s: %v", command, err)})
		return
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if err := writer.AppendLine(line); err != nil {
			updates <- Update{Progress: StatusEvent{Message: err.Error()}}
		}
		if event, threadID := parseEventLine(line); event != nil {
			if threadID != nil && session.ThreadID == nil {
				session.ThreadID = threadID
			}
			updates <- Update{Progress: event}
		}
	}

	waitErr := cmd.Wait()
	if waitErr == nil {
		path := transcriptPath
		finish(Outcome{Succeeded: true, TranscriptPath: &path})
		return
	}

	outcome := Outcome{Message: waitErr.Error(), TranscriptPath: &transcriptPath}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		code := exitErr.ExitCode()
		outcome.ExitCode = &code
		outcome.Message = fmt.Sprintf("agent exited with status %d", code)
	}
	finish(outcome)
}

// parseEventLine parses one stdout line. JSON events yield a status
// message drawn from their message/text field (falling back to the event
// type); anything else is surfaced as a parse warning. The server thread
// identifier is captured when present so sessions can be resumed.
func parseEventLine(line string) (ProgressEvent, *string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil, nil
	}

	var event struct {
		Type     string `json:"type"`
		Message  string `json:"message"`
		Text     string `json:"text"`
		ThreadID string `json:"thread_id"`
	}
	if err := json.Unmarshal([]byte(trimmed), &event); err != nil {
		return ParseWarningEvent{RawLine: line}, nil
	}

	var threadID *string
	if event.ThreadID != "" {
		id := event.ThreadID
		threadID = &id
	}

	message := event.Message
	if message == "" {
		message = event.Text
	}
	if message == "" {
		if event.Type == "" {
			return nil, threadID
		}
		message = event.Type
	}
	return StatusEvent{Message: message}, threadID
}

var _ ExecutionService = (*SystemService)(nil)
