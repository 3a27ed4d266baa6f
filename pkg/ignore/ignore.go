// Package ignore decides whether a slash-separated relative path is matched by a
// set of glob and directory style patterns.
//
// The same Matcher type backs every pattern set the tool uses: the workspace
// .gitignore, the tool's exclude list and the content-omission list.
package ignore

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Pattern is a single compiled rule together with the text it came from.
type Pattern struct {
	Line  string         // Original pattern text.
	Dir   bool           // True when the pattern ends with '/'.
	Glob  *regexp.Regexp // Compiled glob; nil for directory rules or invalid globs.
	trim  string         // Line without the trailing '/'.
	index int            // Position in the set (0-based).
}

// Matcher holds an ordered, read-only set of patterns.
// A path is matched when any pattern matches; there is no negation.
type Matcher struct {
	patterns []*Pattern
	logger   *zap.Logger
}

// NewMatcher compiles the given patterns. Blank entries are skipped.
func NewMatcher(patterns []string, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Matcher{logger: logger}
	m.add(patterns...)
	return m
}

// With returns a new Matcher containing the receiver's patterns followed by extra.
func (m *Matcher) With(extra ...string) *Matcher {
	lines := make([]string, 0, len(m.patterns)+len(extra))
	for _, p := range m.patterns {
		lines = append(lines, p.Line)
	}
	return NewMatcher(append(lines, extra...), m.logger)
}

func (m *Matcher) add(lines ...string) {
	for _, line := range lines {
		if line == "" {
			continue
		}
		p := &Pattern{Line: line, index: len(m.patterns)}
		if strings.HasSuffix(line, "/") {
			p.Dir = true
			p.trim = strings.TrimSuffix(line, "/")
		} else {
			p.trim = line
			re, err := regexp.Compile(globToRegex(line))
			if err != nil {
				m.logger.Warn("Invalid glob pattern, only literal directory matching applies",
					zap.String("pattern", line),
					zap.Error(err))
			}
			p.Glob = re
		}
		m.patterns = append(m.patterns, p)
	}
}

// Len reports the number of compiled patterns.
func (m *Matcher) Len() int {
	return len(m.patterns)
}

// Patterns returns the pattern texts in order.
func (m *Matcher) Patterns() []string {
	out := make([]string, len(m.patterns))
	for i, p := range m.patterns {
		out[i] = p.Line
	}
	return out
}

// Matches reports whether relPath is matched by any pattern.
func (m *Matcher) Matches(relPath string) bool {
	matched, _ := m.MatchesWithPattern(relPath)
	return matched
}

// MatchesWithPattern reports whether relPath is matched and returns the first
// pattern that matched it.
func (m *Matcher) MatchesWithPattern(relPath string) (bool, *Pattern) {
	if m == nil {
		return false, nil
	}
	p := filepath.ToSlash(relPath)
	for _, pattern := range m.patterns {
		if pattern.match(p) {
			m.logger.Debug("Path matches pattern",
				zap.String("path", p),
				zap.String("pattern", pattern.Line))
			return true, pattern
		}
	}
	return false, nil
}

func (p *Pattern) match(rel string) bool {
	if p.Dir {
		return strings.HasPrefix(rel, p.Line) || strings.Contains(rel, "/"+p.Line)
	}
	if p.Glob != nil {
		if p.Glob.MatchString(path.Base(rel)) || p.Glob.MatchString(rel) {
			return true
		}
	}
	return strings.HasPrefix(rel, p.trim+"/") || strings.Contains(rel, "/"+p.trim+"/")
}

// Matches is a convenience wrapper for one-off checks.
func Matches(relPath string, patterns []string) bool {
	return NewMatcher(patterns, nil).Matches(relPath)
}

// ParseLines extracts patterns from ignore-file content: surrounding whitespace
// is trimmed and blank or '#' comment lines are dropped.
func ParseLines(content []byte) []string {
	var patterns []string
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}

// LoadFile reads an ignore file into a Matcher. A missing file yields an empty
// Matcher; other read errors are returned.
func LoadFile(filePath string, logger *zap.Logger) (*Matcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	content, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("Ignore file does not exist and will be skipped", zap.String("filePath", filePath))
			return NewMatcher(nil, logger), nil
		}
		return nil, fmt.Errorf("failed to read ignore file %s: %w", filePath, err)
	}

	patterns := ParseLines(content)
	logger.Debug("Compiled ignore patterns from file",
		zap.String("filePath", filePath),
		zap.Int("patternCount", len(patterns)))
	return NewMatcher(patterns, logger), nil
}
