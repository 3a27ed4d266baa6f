package techspec

import (
	"errors"
	"time"
)

// Sentinel errors for fatal conditions. Callers match them with errors.Is.
var (
	ErrRootNotFound     = errors.New("source root does not exist")
	ErrDocumentNotFound = errors.New("tech spec file not found")
	ErrMarkersInvalid   = errors.New("markers missing or invalid")
	ErrBackupFailed     = errors.New("failed to write backup")
)

// RootLabel is shown in the directory heading for files at the tree root.
const RootLabel = "Repository Root"

// Options are the per-invocation switches.
type Options struct {
	StructureOnly bool   // Render every file as a compact entry.
	Branch        string // Run identifier; detected from git when empty.
	Styled        bool   // Style the report for a terminal.
}

// Block is the rendered text for one selected file.
type Block struct {
	Path    string // Slash-separated path relative to the root.
	Dir     string // Directory part of Path, "" at the root.
	Ext     string // Lowercased extension, "" when none.
	Compact bool   // Rendered without content.
	Text    string // Header, optional notes and optional fenced content.
}

// Plan is everything decided before any file content is read.
type Plan struct {
	Branch       string
	DocumentName string // Relative to the root.
	BackupName   string
	DocumentPath string // Absolute.
	BackupPath   string
	Files        []string // Selected paths in ranked order.
}

// Result describes a completed run.
type Result struct {
	Plan
	Full    map[string]int // Extension => fully included files.
	Omitted map[string]int // Extension => compact entries.
	Elapsed time.Duration
}

// Total is the number of files written into the document.
func (r *Result) Total() int {
	return len(r.Files)
}
