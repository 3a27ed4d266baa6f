// File: pkg/techspec/assemble.go
package techspec

import "strings"

// DirectoryHeading renders the separator line that opens a directory group.
func DirectoryHeading(dir string) string {
	if dir == "" {
		dir = RootLabel
	}
	return "### 📂 `" + dir + "/`\n"
}

// Assemble joins blocks into one body. A heading opens each new directory;
// inside a directory, consecutive compact entries are joined by a single
// newline and every other pair by a blank line.
func Assemble(blocks []Block) string {
	var b strings.Builder
	var lastDir *string
	lastCompact := false

	for i := range blocks {
		block := &blocks[i]
		switch {
		case lastDir == nil || *lastDir != block.Dir:
			if lastDir != nil {
				b.WriteString("\n\n")
			}
			b.WriteString(DirectoryHeading(block.Dir))
			lastDir = &block.Dir
		case block.Compact && lastCompact:
			b.WriteString("\n")
		default:
			b.WriteString("\n\n")
		}
		b.WriteString(block.Text)
		lastCompact = block.Compact
	}
	return b.String()
}
