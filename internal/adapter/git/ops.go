// Package git implements the version-control capability over a local
// repository using go-git.
package git

import (
	"strings"
	"sync"
	"unicode/utf8"

	goGit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/leynos/frankie/internal/domain"
)

// Ops reads commit snapshots, file blobs, and line mappings from one local
// repository. The underlying go-git handle is not guaranteed to be
// thread-safe, so every public operation serialises on an internal mutex.
type Ops struct {
	mu   sync.Mutex
	repo *goGit.Repository
}

// Open opens the repository containing dir, searching upward for the
// .git directory the way the git CLI does.
func Open(dir string) (*Ops, error) {
	repo, err := goGit.PlainOpenWithOptions(dir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, domain.WrapError(domain.ErrRepositoryNotAvailable, err, "open repository at %s", dir)
	}
	return &Ops{repo: repo}, nil
}

// CommitExists reports whether sha (possibly abbreviated) resolves to a
// commit in the repository.
func (o *Ops) CommitExists(sha string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	_, err := o.resolveCommit(sha)
	return err == nil
}

// GetCommitSnapshot reads the commit's metadata and, when filePath is
// non-nil, that file's content at the commit.
func (o *Ops) GetCommitSnapshot(sha string, filePath *string) (domain.CommitSnapshot, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	commit, err := o.resolveCommit(sha)
	if err != nil {
		return domain.CommitSnapshot{}, err
	}

	snapshot := domain.CommitSnapshot{
		Commit:   commitMetadata(commit),
		FilePath: filePath,
	}

	if filePath != nil {
		content, err := fileContentAt(commit, *filePath)
		if err != nil {
			return domain.CommitSnapshot{}, err
		}
		snapshot.FileContent = &content
	}

	return snapshot, nil
}

// GetFileAtCommit reads one file's content at the given commit.
func (o *Ops) GetFileAtCommit(sha, filePath string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	commit, err := o.resolveCommit(sha)
	if err != nil {
		return "", err
	}
	return fileContentAt(commit, filePath)
}

// VerifyLineMapping determines where a line commented at oldSHA ended up
// at newSHA. Hunks are walked in old-start order: hunks wholly before the
// line shift it by their size delta; a hunk containing the line either
// deletes it or pins the accumulated offset; hunks after the line are
// irrelevant.
func (o *Ops) VerifyLineMapping(oldSHA, newSHA, filePath string, line int) (domain.LineMapping, error) {
	if oldSHA == newSHA {
		return domain.Exact(line), nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	oldCommit, err := o.resolveCommit(oldSHA)
	if err != nil {
		return domain.LineMapping{}, err
	}
	newCommit, err := o.resolveCommit(newSHA)
	if err != nil {
		return domain.LineMapping{}, err
	}

	oldContent, err := fileContentAt(oldCommit, filePath)
	if err != nil {
		return domain.LineMapping{}, err
	}

	newContent, err := fileContentAt(newCommit, filePath)
	if err != nil {
		if domain.IsKind(err, domain.ErrFileNotFound) {
			return domain.Deleted(line), nil
		}
		return domain.LineMapping{}, err
	}

	if oldContent == newContent {
		return domain.Exact(line), nil
	}

	hunks := computeHunks(oldContent, newContent)
	return mapLineThroughHunks(hunks, line), nil
}

// GetParentCommits lists up to limit SHAs starting with sha itself and
// followed by its ancestors, newest first.
func (o *Ops) GetParentCommits(sha string, limit int) ([]string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	commit, err := o.resolveCommit(sha)
	if err != nil {
		return nil, err
	}

	iter := object.NewCommitIterCTime(commit, nil, nil)
	defer iter.Close()

	shas := make([]string, 0, limit)
	for len(shas) < limit {
		next, err := iter.Next()
		if err != nil {
			break
		}
		shas = append(shas, next.Hash.String())
	}
	return shas, nil
}

// resolveCommit resolves a SHA, abbreviated SHA, or ref to a commit.
// Callers must hold the mutex.
func (o *Ops) resolveCommit(sha string) (*object.Commit, error) {
	hash, err := o.repo.ResolveRevision(plumbing.Revision(sha))
	if err != nil {
		return nil, domain.NewCommitNotFoundError(sha)
	}

	commit, err := o.repo.CommitObject(*hash)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCommitAccessFailed, err, "read commit %s", sha)
	}
	return commit, nil
}

func commitMetadata(commit *object.Commit) domain.CommitMetadata {
	message := commit.Message
	if idx := strings.IndexByte(message, '\n'); idx >= 0 {
		message = message[:idx]
	}
	return domain.CommitMetadata{
		SHA:       commit.Hash.String(),
		Message:   strings.TrimSpace(message),
		Author:    commit.Author.Name,
		Timestamp: commit.Author.When.UTC(),
	}
}

func fileContentAt(commit *object.Commit, filePath string) (string, error) {
	file, err := commit.File(filePath)
	if err != nil {
		if err == object.ErrFileNotFound {
			return "", domain.NewFileNotFoundError(filePath, commit.Hash.String())
		}
		return "", domain.WrapError(domain.ErrCommitAccessFailed, err, "read %s at %s", filePath, commit.Hash.String())
	}

	content, err := file.Contents()
	if err != nil {
		return "", domain.WrapError(domain.ErrCommitAccessFailed, err, "read %s at %s", filePath, commit.Hash.String())
	}
	if !utf8.ValidString(content) {
		return "", domain.NewError(domain.ErrCommitAccessFailed,
			"%s at %s is not valid UTF-8", filePath, commit.Hash.String())
	}
	return content, nil
}

// hunk is one contiguous change window of a line diff, in the unified-diff
// sense: OldStart is 1-based, OldLines counts removed lines, NewLines
// counts inserted lines.
type hunk struct {
	OldStart int
	OldLines int
	NewLines int
}

// computeHunks derives change hunks from a line-granularity diff of the
// two file versions.
func computeHunks(oldContent, newContent string) []hunk {
	dmp := diffmatchpatch.New()
	oldChars, newChars, lineIndex := dmp.DiffLinesToChars(oldContent, newContent)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(oldChars, newChars, false), lineIndex)

	var hunks []hunk
	var current *hunk
	oldPos := 1

	flush := func() {
		if current != nil {
			hunks = append(hunks, *current)
			current = nil
		}
	}

	for _, diff := range diffs {
		lines := countLines(diff.Text)
		switch diff.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			oldPos += lines
		case diffmatchpatch.DiffDelete:
			if current == nil {
				current = &hunk{OldStart: oldPos}
			}
			current.OldLines += lines
			oldPos += lines
		case diffmatchpatch.DiffInsert:
			if current == nil {
				current = &hunk{OldStart: oldPos}
			}
			current.NewLines += lines
		}
	}
	flush()

	return hunks
}

// mapLineThroughHunks applies the ordered hunk walk to one line.
func mapLineThroughHunks(hunks []hunk, line int) domain.LineMapping {
	offset := 0
	for _, h := range hunks {
		oldEnd := h.OldStart + h.OldLines
		switch {
		case line >= h.OldStart && line < oldEnd:
			if h.OldLines > h.NewLines && line >= h.OldStart+h.NewLines {
				return domain.Deleted(line)
			}
			return resultFromOffset(line, offset)
		case line >= oldEnd:
			offset += h.NewLines - h.OldLines
		default:
			// Hunk starts past the line; nothing later can affect it.
			return resultFromOffset(line, offset)
		}
	}
	return resultFromOffset(line, offset)
}

func resultFromOffset(line, offset int) domain.LineMapping {
	if offset == 0 {
		return domain.Exact(line)
	}
	return domain.Moved(line, line+offset)
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	count := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		count++
	}
	return count
}
