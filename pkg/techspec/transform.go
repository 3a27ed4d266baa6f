// File: pkg/techspec/transform.go
package techspec

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"techspec/pkg/config"
	"techspec/pkg/ignore"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
)

// Rendering constants.
const (
	OmittedSuffix      = " (Content omitted)"
	ReadErrorText      = "(Read Error)"
	ImportPlaceholder  = "// (Imports omitted to save token count)"
	ChangelogReleases  = 3
	importPrefix       = "import "
	binarySniffBytes   = 512
	binaryNonPrintable = 0.3
)

var languageIDs = map[string]string{
	".java": "java", ".kt": "kotlin", ".kts": "kotlin",
	".json": "json", ".yml": "yaml", ".yaml": "yaml",
	".md": "markdown", ".txt": "text", ".toml": "toml",
	".cfg": "ini", ".gradle": "groovy", ".properties": "properties",
	".mcmeta": "json", ".mcfunction": "mcfunction",
}

// LanguageID maps a path's extension to a fence tag; "" when unmapped.
func LanguageID(p string) string {
	return languageIDs[Extension(p)]
}

// TransformOptions configures a Transformer.
type TransformOptions struct {
	Root             string
	BinaryExtensions []string
	SourceExtensions []string
	OmitContent      *ignore.Matcher
	Notes            map[string]config.FileNote
	ChangelogFile    string
	ChangelogHeading string // Regular expression, anchored at line start.
	StructureOnly    bool
}

// Transformer renders selected files into Blocks.
type Transformer struct {
	opts    TransformOptions
	binary  map[string]bool
	source  map[string]bool
	heading *regexp.Regexp
	logger  *zap.Logger
}

// NewTransformer compiles the options. An empty heading falls back to the
// default release heading.
func NewTransformer(opts TransformOptions, logger *zap.Logger) (*Transformer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	expr := opts.ChangelogHeading
	if expr == "" {
		expr = config.DefaultChangelogHeading
	}
	heading, err := regexp.Compile(`^(?:` + expr + `)`)
	if err != nil {
		return nil, fmt.Errorf("invalid changelog heading %q: %w", expr, err)
	}
	return &Transformer{
		opts:    opts,
		binary:  toSet(opts.BinaryExtensions),
		source:  toSet(opts.SourceExtensions),
		heading: heading,
		logger:  logger,
	}, nil
}

// IsCompact reports whether rel renders without content and whether that is
// because of the omit-content patterns.
func (t *Transformer) IsCompact(rel string) (compact, omitted bool) {
	binary := t.binary[Extension(rel)]
	omitted = t.opts.OmitContent.Matches(rel)
	return binary || omitted || t.opts.StructureOnly, omitted && !binary
}

// Transform renders one file. Read failures degrade to an inline placeholder.
func (t *Transformer) Transform(rel string) Block {
	dir := path.Dir(rel)
	if dir == "." {
		dir = ""
	}
	filename := path.Base(rel)
	compact, omitted := t.IsCompact(rel)

	var b strings.Builder
	b.WriteString("`" + filename + "`")
	if omitted && !t.opts.StructureOnly {
		b.WriteString(OmittedSuffix)
	}

	note, hasNote := t.opts.Notes[rel]
	if hasNote && note.Position == "" {
		t.logger.Debug("File note has no position and is not rendered", zap.String("path", rel))
	}
	if hasNote && note.Position == config.NoteBefore {
		b.WriteString("\n" + note.Note)
	}

	if !compact {
		content, err := t.readContent(rel)
		if err != nil {
			t.logger.Error("Read error", zap.String("path", rel), zap.Error(err))
			b.WriteString("\n" + ReadErrorText)
		} else {
			b.WriteString("\n```" + LanguageID(rel) + "\n" + content + "\n```")
		}
	}

	if hasNote && note.Position == config.NoteAfter {
		b.WriteString("\n" + note.Note)
	}

	return Block{
		Path:    rel,
		Dir:     dir,
		Ext:     Extension(rel),
		Compact: compact,
		Text:    b.String(),
	}
}

// readContent loads rel as text and applies the path-specific rewrites.
func (t *Transformer) readContent(rel string) (string, error) {
	absPath := filepath.Join(t.opts.Root, filepath.FromSlash(rel))
	data, err := os.ReadFile(absPath)
	if err != nil {
		return "", err
	}
	if looksBinary(data) {
		t.logger.Warn("File content looks binary; consider adding its extension to binary_extensions",
			zap.String("path", rel))
	}

	content := decodeText(data)
	if rel == t.opts.ChangelogFile {
		content = TruncateChangelog(content, t.heading, ChangelogReleases)
	}
	if t.source[Extension(rel)] {
		content = StripImports(content)
	}
	return content, nil
}

// decodeText decodes UTF-8, replacing invalid sequences with U+FFFD, and
// normalizes line endings to \n.
func decodeText(data []byte) string {
	out, _ := unicode.UTF8.NewDecoder().Bytes(data)
	text := strings.ReplaceAll(string(out), "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// TruncateChangelog keeps the first limit release sections. A section starts at
// a line matching heading and runs to the next heading; text before the first
// heading is dropped and the result is trimmed.
func TruncateChangelog(content string, heading *regexp.Regexp, limit int) string {
	var out []string
	sections := 0
	inSection := false
	for _, line := range splitLines(content) {
		if heading.MatchString(line) {
			sections++
			if sections > limit {
				break
			}
			inSection = true
			out = append(out, line)
			continue
		}
		if inSection {
			out = append(out, line)
		}
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// StripImports removes import lines. The first one becomes a single
// placeholder; blank lines after an import run are swallowed and exactly one
// blank line is put back before the next code line.
func StripImports(content string) string {
	var out []string
	inImports := false
	placeholder := false
	for _, line := range splitLines(content) {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, importPrefix) {
			inImports = true
			if !placeholder {
				out = append(out, ImportPlaceholder)
				placeholder = true
			}
			continue
		}
		if inImports {
			if trimmed == "" {
				continue
			}
			out = append(out, "")
			inImports = false
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// splitLines splits on \n without producing a trailing empty line.
func splitLines(content string) []string {
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

// looksBinary checks the leading bytes for NULs or a high share of
// non-printable characters.
func looksBinary(data []byte) bool {
	if len(data) > binarySniffBytes {
		data = data[:binarySniffBytes]
	}
	if len(data) == 0 {
		return false
	}
	nonPrintable := 0
	for _, b := range data {
		if b == 0 {
			return true
		}
		if !isPrintable(b) {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(len(data)) > binaryNonPrintable
}

// isPrintable treats ASCII text, common whitespace and UTF-8 bytes as printable.
func isPrintable(b byte) bool {
	return (b >= 32 && b <= 126) || b == '\n' || b == '\r' || b == '\t' || b >= 0x80
}
