package stats

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestFormatDelta(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		previous *int
		want     string
	}{
		{"no baseline", 5, nil, "5"},
		{"increase", 5, intPtr(3), "5 (+2)"},
		{"decrease", 2, intPtr(3), "2 (-1)"},
		{"unchanged", 3, intPtr(3), "3"},
		{"from zero", 4, intPtr(0), "4 (+4)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDelta(tt.current, tt.previous))
		})
	}
}

func TestTracker_MissingAndCorruptFiles(t *testing.T) {
	dir := t.TempDir()

	tr := Open(filepath.Join(dir, "missing.json"), nil)
	_, ok := tr.Previous("main")
	assert.False(t, ok)
	assert.Empty(t, tr.Records())

	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{not json"), 0o644))
	tr = Open(corrupt, nil)
	assert.Empty(t, tr.Records())
}

func TestTracker_CommitKeepsOtherBranches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cps_run_stats.json")
	seed := `{
  "main": {"timestamp": 1700000000.5, "total_files": 3, "full_stats": {".java": 3}, "omitted_stats": {}},
  "dev": {"timestamp": 1700000001.0, "total_files": 9, "full_stats": {".md": 9}, "omitted_stats": {".png": 1}}
}`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	tr := Open(path, nil)
	prev, ok := tr.Previous("main")
	require.True(t, ok)
	assert.Equal(t, 3, prev.FullStats[".java"])

	now := time.Unix(1700000100, 0)
	require.NoError(t, tr.Commit("main", NewRecord(now, 5, map[string]int{".java": 5}, nil)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var stored Store
	require.NoError(t, json.Unmarshal(data, &stored))

	assert.Equal(t, 5, stored["main"].TotalFiles)
	assert.Equal(t, map[string]int{".java": 5}, stored["main"].FullStats)
	assert.Equal(t, map[string]int{}, stored["main"].OmittedStats)
	assert.InDelta(t, 1700000100.0, stored["main"].Timestamp, 0.001)
	assert.Equal(t, 9, stored["dev"].TotalFiles)
	assert.Equal(t, map[string]int{".png": 1}, stored["dev"].OmittedStats)
	assert.True(t, strings.Contains(string(data), "\n  \"dev\""), "expected two-space indentation")
}

func TestTracker_CommitFailureIsReturned(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	tr := Open(filepath.Join(blocker, "stats.json"), nil)
	err := tr.Commit("main", NewRecord(time.Now(), 0, nil, nil))
	assert.Error(t, err)
}

func TestRows(t *testing.T) {
	rows := Rows(map[string]int{".java": 5, ".md": 2, "": 2}, map[string]int{".java": 3})
	require.Len(t, rows, 3)

	assert.Equal(t, Row{Ext: ".java", Count: 5, Delta: "5 (+2)"}, rows[0])
	assert.Equal(t, Row{Ext: "", Count: 2, Delta: "2 (+2)"}, rows[1])
	assert.Equal(t, Row{Ext: ".md", Count: 2, Delta: "2 (+2)"}, rows[2])

	rows = Rows(map[string]int{".java": 5}, nil)
	assert.Equal(t, "5", rows[0].Delta)
}

func TestReport_String(t *testing.T) {
	prev := NewRecord(time.Unix(0, 0), 4, map[string]int{".java": 3}, map[string]int{".png": 1})
	report := Report{
		Branch:   "main",
		Current:  NewRecord(time.Unix(10, 0), 6, map[string]int{".java": 5}, map[string]int{".png": 1}),
		Previous: &prev,
		Elapsed:  1250 * time.Millisecond,
	}

	out := report.String()
	assert.Contains(t, out, "main")
	assert.Contains(t, out, "6 (+2)")
	assert.Contains(t, out, "Included Content (Full Code):")
	assert.Contains(t, out, ".java      : 5 (+2)")
	assert.Contains(t, out, "Omitted Content (Structure Only):")
	assert.Contains(t, out, ".png       : 1")
	assert.Contains(t, out, "1.25s")

	first := Report{Branch: "dev", Current: NewRecord(time.Unix(10, 0), 2, map[string]int{"": 2}, nil)}
	out = first.String()
	assert.Contains(t, out, "(no-ext)   : 2")
	assert.NotContains(t, out, "Omitted Content")
}

func TestReport_PlainLayout(t *testing.T) {
	report := Report{
		Branch:  "main",
		Current: NewRecord(time.Unix(10, 0), 1, map[string]int{".java": 1}, nil),
		Elapsed: 500 * time.Millisecond,
	}

	want := "--- Success ---\n" +
		"  Branch: main\n" +
		"  Files:  1\n" +
		"\n" +
		"  Included Content (Full Code):\n" +
		"    .java      : 1\n" +
		"\n" +
		"  Time:   0.50s\n"
	assert.Equal(t, want, report.String())
}
