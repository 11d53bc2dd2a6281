// Package codex runs the external agent process and records its JSONL
// event stream as transcripts with session sidecars.
package codex

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/leynos/frankie/internal/domain"
)

const (
	appDirName        = "frankie"
	transcriptDirName = "codex-transcripts"
)

// TranscriptMetadata names the PR a transcript belongs to.
type TranscriptMetadata struct {
	Owner    string
	Repo     string
	PRNumber int
}

// unsafeNameChars matches every character not allowed in a transcript
// file-name component.
var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// DefaultBaseDir resolves the transcript directory from XDG_STATE_HOME,
// falling back to ~/.local/state.
func DefaultBaseDir() (string, error) {
	if state := os.Getenv("XDG_STATE_HOME"); state != "" {
		return filepath.Join(state, appDirName, transcriptDirName), nil
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".local", "state", appDirName, transcriptDirName), nil
	}
	return "", domain.NewError(domain.ErrConfiguration,
		"cannot resolve transcript directory: neither XDG_STATE_HOME nor HOME is set")
}

// TranscriptPath derives the deterministic transcript location for one run.
func TranscriptPath(baseDir string, meta TranscriptMetadata, now time.Time) string {
	name := fmt.Sprintf("%s-%s-pr-%d-%s.jsonl",
		sanitizeNameComponent(meta.Owner),
		sanitizeNameComponent(meta.Repo),
		meta.PRNumber,
		now.UTC().Format("20060102T150405Z"),
	)
	return filepath.Join(baseDir, name)
}

func sanitizeNameComponent(component string) string {
	return unsafeNameChars.ReplaceAllString(component, "-")
}

// TranscriptWriter appends raw event lines to a transcript file.
type TranscriptWriter struct {
	file *os.File
}

// CreateTranscript opens the transcript for writing, creating parent
// directories as needed.
func CreateTranscript(path string) (*TranscriptWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, domain.WrapError(domain.ErrIO, err, "create transcript directory for %s", path)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, domain.WrapError(domain.ErrIO, err, "create transcript %s", path)
	}
	return &TranscriptWriter{file: file}, nil
}

// AppendLine writes one event line followed by a newline.
func (w *TranscriptWriter) AppendLine(line string) error {
	if _, err := fmt.Fprintf(w.file, "%s\n", line); err != nil {
		return domain.WrapError(domain.ErrIO, err, "append transcript line")
	}
	return nil
}

// Close flushes and closes the transcript file.
func (w *TranscriptWriter) Close() error {
	if err := w.file.Close(); err != nil {
		return domain.WrapError(domain.ErrIO, err, "close transcript")
	}
	return nil
}
