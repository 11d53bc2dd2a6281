package codex

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/leynos/frankie/internal/domain"
)

// SessionStatus is the lifecycle state of one agent run.
type SessionStatus string

const (
	// SessionRunning means the agent process is still executing.
	SessionRunning SessionStatus = "running"
	// SessionCompleted means the run finished with exit code zero.
	SessionCompleted SessionStatus = "completed"
	// SessionInterrupted means the run stopped before reaching a verdict.
	SessionInterrupted SessionStatus = "interrupted"
	// SessionFailed means the run exited non-zero or broke protocol.
	SessionFailed SessionStatus = "failed"
	// SessionCancelled means the run was cancelled by the user or server.
	SessionCancelled SessionStatus = "cancelled"
)

// SessionState is the JSON sidecar written alongside each transcript.
type SessionState struct {
	Status         SessionStatus `json:"status"`
	TranscriptPath string        `json:"transcript_path"`
	ThreadID       *string       `json:"thread_id"`
	Owner          string        `json:"owner"`
	Repository     string        `json:"repository"`
	PRNumber       int           `json:"pr_number"`
	StartedAt      time.Time     `json:"started_at"`
	FinishedAt     *time.Time    `json:"finished_at"`
}

// IsResumable reports whether the session can be resumed: it must have
// been interrupted with a known server thread.
func (s SessionState) IsResumable() bool {
	return s.Status == SessionInterrupted && s.ThreadID != nil
}

// SidecarPath derives the sidecar location from the transcript path by
// swapping the .jsonl suffix for .session.json.
func (s SessionState) SidecarPath() string {
	return SidecarPathFor(s.TranscriptPath)
}

// SidecarPathFor maps a transcript path to its sidecar path.
func SidecarPathFor(transcriptPath string) string {
	return strings.TrimSuffix(transcriptPath, ".jsonl") + ".session.json"
}

// WriteSidecar serialises the session as pretty JSON, replacing any
// previous sidecar wholesale.
func (s SessionState) WriteSidecar() error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return domain.WrapError(domain.ErrIO, err, "serialise session sidecar")
	}
	path := s.SidecarPath()
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return domain.WrapError(domain.ErrIO, err, "write session sidecar %s", path)
	}
	return nil
}

// ReadSidecar loads a session sidecar from disk.
func ReadSidecar(path string) (SessionState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SessionState{}, domain.WrapError(domain.ErrIO, err, "read session sidecar %s", path)
	}

	var state SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return SessionState{}, domain.WrapError(domain.ErrIO, err, "parse session sidecar %s", path)
	}
	return state, nil
}

// FindInterruptedSession scans baseDir for the most recently started
// resumable session matching the PR. Unparseable sidecars are skipped; a
// missing directory simply means there is nothing to resume.
func FindInterruptedSession(baseDir, owner, repo string, prNumber int) (*SessionState, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, domain.WrapError(domain.ErrIO, err, "list transcript directory %s", baseDir)
	}

	var latest *SessionState
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".session.json") {
			continue
		}

		state, err := ReadSidecar(filepath.Join(baseDir, entry.Name()))
		if err != nil {
			continue
		}
		if state.Owner != owner || state.Repository != repo || state.PRNumber != prNumber {
			continue
		}
		if !state.IsResumable() {
			continue
		}
		if latest == nil || state.StartedAt.After(latest.StartedAt) {
			candidate := state
			latest = &candidate
		}
	}
	return latest, nil
}
