package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const noExtLabel = "(no-ext)"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	sectionStyle = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Report is the end-of-run summary.
type Report struct {
	Branch   string
	Current  Record
	Previous *Record // nil on the first run for Branch.
	Elapsed  time.Duration
	Styled   bool // Apply terminal styles; plain text otherwise.
}

// Row is one extension line of a report section.
type Row struct {
	Ext   string
	Count int
	Delta string
}

// Rows sorts current counts by count descending then extension, pairing each
// with its delta against previous. An empty previous map means no baseline.
func Rows(current, previous map[string]int) []Row {
	rows := make([]Row, 0, len(current))
	for ext, count := range current {
		var prev *int
		if len(previous) > 0 {
			p := previous[ext]
			prev = &p
		}
		rows = append(rows, Row{Ext: ext, Count: count, Delta: FormatDelta(count, prev)})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Ext < rows[j].Ext
	})
	return rows
}

// Render writes the summary to w.
func (r Report) Render(w io.Writer) error {
	_, err := io.WriteString(w, r.String())
	return err
}

// String renders the summary.
func (r Report) String() string {
	var prevTotal *int
	var prevFull, prevOmitted map[string]int
	if r.Previous != nil {
		prevTotal = &r.Previous.TotalFiles
		prevFull = r.Previous.FullStats
		prevOmitted = r.Previous.OmittedStats
	}

	var b strings.Builder
	b.WriteString(r.render(titleStyle, "--- Success ---") + "\n")
	fmt.Fprintf(&b, "  %s %s\n", r.render(labelStyle, "Branch:"), r.Branch)
	fmt.Fprintf(&b, "  %s  %s\n", r.render(labelStyle, "Files:"), FormatDelta(r.Current.TotalFiles, prevTotal))
	b.WriteString("\n")

	full := r.section(&b, "Included Content (Full Code)", r.Current.FullStats, prevFull)
	if full && len(r.Current.OmittedStats) > 0 {
		b.WriteString("\n")
	}
	r.section(&b, "Omitted Content (Structure Only)", r.Current.OmittedStats, prevOmitted)

	fmt.Fprintf(&b, "\n  %s   %.2fs\n", r.render(labelStyle, "Time:"), r.Elapsed.Seconds())
	return b.String()
}

func (r Report) section(b *strings.Builder, title string, current, previous map[string]int) bool {
	if len(current) == 0 {
		return false
	}
	b.WriteString("  " + r.render(sectionStyle, title+":") + "\n")
	for _, row := range Rows(current, previous) {
		ext := row.Ext
		if ext == "" {
			ext = noExtLabel
		}
		fmt.Fprintf(b, "    %-10s : %s\n", ext, row.Delta)
	}
	return true
}

func (r Report) render(style lipgloss.Style, text string) string {
	if !r.Styled {
		return text
	}
	return style.Render(text)
}
