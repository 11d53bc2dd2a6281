package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/leynos/frankie/internal/domain"
)

// extensionLanguages maps file extensions to fenced-code language hints.
var extensionLanguages = map[string]string{
	"rs":    "rust",
	"py":    "python",
	"js":    "javascript",
	"ts":    "typescript",
	"jsx":   "jsx",
	"tsx":   "tsx",
	"rb":    "ruby",
	"go":    "go",
	"java":  "java",
	"kt":    "kotlin",
	"kts":   "kotlin",
	"swift": "swift",
	"c":     "c",
	"cpp":   "cpp",
	"cc":    "cpp",
	"cxx":   "cpp",
	"h":     "cpp",
	"hpp":   "cpp",
	"cs":    "csharp",
	"php":   "php",
	"sh":    "bash",
	"bash":  "bash",
	"zsh":   "zsh",
	"fish":  "fish",
	"ps1":   "powershell",
	"sql":   "sql",
	"md":    "markdown",
	"json":  "json",
	"yaml":  "yaml",
	"yml":   "yaml",
	"toml":  "toml",
	"xml":   "xml",
	"html":  "html",
	"htm":   "html",
	"css":   "css",
	"scss":  "scss",
	"sass":  "scss",
	"less":  "less",
}

// Markdown renders a document with one section per comment: a file:line
// heading, reviewer and timestamp metadata, the body, and the diff hunk in
// a fenced code block.
func Markdown(prURL string, comments []domain.ReviewComment) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "# Review comments for %s\n", prURL)

	for _, comment := range comments {
		builder.WriteByte('\n')
		writeCommentSection(&builder, comment)
	}

	return builder.String()
}

func writeCommentSection(builder *strings.Builder, comment domain.ReviewComment) {
	fmt.Fprintf(builder, "## %s\n\n", locationHeading(comment))

	reviewer := domain.StringValue(comment.Author, "unknown reviewer")
	if comment.CreatedAt != nil {
		fmt.Fprintf(builder, "**%s** commented at %s\n", reviewer, *comment.CreatedAt)
	} else {
		fmt.Fprintf(builder, "**%s** commented\n", reviewer)
	}

	if comment.Body != nil && *comment.Body != "" {
		fmt.Fprintf(builder, "\n%s\n", *comment.Body)
	}

	if comment.DiffHunk != nil && *comment.DiffHunk != "" {
		writeFencedBlock(builder, comment.FilePath, *comment.DiffHunk)
	}
}

func locationHeading(comment domain.ReviewComment) string {
	switch {
	case comment.FilePath != nil && comment.LineNumber != nil:
		return fmt.Sprintf("%s:%d", *comment.FilePath, *comment.LineNumber)
	case comment.FilePath != nil:
		return *comment.FilePath
	case comment.LineNumber != nil:
		return fmt.Sprintf("(unknown file):%d", *comment.LineNumber)
	default:
		return "(unknown location)"
	}
}

// writeFencedBlock emits the hunk in a fence strictly longer than any
// backtick run inside it, with a language hint from the file extension.
func writeFencedBlock(builder *strings.Builder, filePath *string, hunk string) {
	fence := strings.Repeat("`", fenceLength(hunk))
	language := languageForPath(filePath)

	fmt.Fprintf(builder, "\n%s%s\n", fence, language)
	builder.WriteString(hunk)
	if !strings.HasSuffix(hunk, "\n") {
		builder.WriteByte('\n')
	}
	fmt.Fprintf(builder, "%s\n", fence)
}

func fenceLength(content string) int {
	longest := 0
	run := 0
	for _, r := range content {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	if longest < 3 {
		return 3
	}
	return longest + 1
}

func languageForPath(filePath *string) string {
	if filePath == nil {
		return "diff"
	}
	ext := strings.TrimPrefix(filepath.Ext(*filePath), ".")
	if language, ok := extensionLanguages[strings.ToLower(ext)]; ok {
		return language
	}
	return "diff"
}
