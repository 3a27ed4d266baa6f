package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"techspec/pkg/config"
	"techspec/pkg/version"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDocument = "# Spec\n## CPS Provided Code\nold\nEnd CPS Provided Code\n"

// newProject writes a minimal project and its config, returning the config path.
func newProject(t *testing.T) (root, configFile string) {
	t.Helper()
	root = t.TempDir()
	files := map[string]string{
		"TECHSPEC_main.md":                   testDocument,
		"README.md":                          "# Mod",
		"src/main/java/com/x/mod/Mod.java":   "import a.B;\n\nclass Mod {}",
		"src/main/resources/assets/icon.png": "png",
	}
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}

	configFile = filepath.Join(root, "techspec_config.json")
	cfg := fmt.Sprintf(`{
	"root_dir": %q,
	"techspec_pattern": "TECHSPEC_{branch}.md",
	"backup_pattern": "TECHSPEC_{branch}.md.bak",
	"include_extensions": [".md", ".java", ".png"],
	"exclude_patterns": [],
	"force_include_files": []
}`, root)
	require.NoError(t, os.WriteFile(configFile, []byte(cfg), 0o644))
	return root, configFile
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvBranch, "main")
	t.Setenv(config.EnvRootDir, "")
	t.Setenv(config.EnvStatsFile, "")

	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(args)
	t.Cleanup(func() {
		RootCmd.SetArgs(nil)
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
	})
	err := RootCmd.Execute()
	return out.String(), err
}

func TestRootCommand_Generates(t *testing.T) {
	root, configFile := newProject(t)

	out, err := runCommand(t, "--config", configFile, "--structure-only=false")
	require.NoError(t, err)

	assert.Contains(t, out, "--- Success ---")
	assert.Contains(t, out, "Branch: main")

	doc, err := os.ReadFile(filepath.Join(root, "TECHSPEC_main.md"))
	require.NoError(t, err)
	assert.Contains(t, string(doc), "`Mod.java`\n```java\n// (Imports omitted to save token count)\n\nclass Mod {}\n```")
	assert.NotContains(t, string(doc), "old")
	assert.FileExists(t, filepath.Join(root, "TECHSPEC_main.md.bak"))
	assert.FileExists(t, filepath.Join(root, config.DefaultStatsFile))
}

func TestRootCommand_MissingConfig(t *testing.T) {
	_, err := runCommand(t, "--config", filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestListCommand(t *testing.T) {
	root, configFile := newProject(t)

	out, err := runCommand(t, "list", "--config", configFile, "--structure-only=false", "--tree=false")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{
		"README.md",
		"src/main/java/com/x/mod/Mod.java",
		"src/main/resources/assets/icon.png (structure only)",
		"",
		"3 files -> TECHSPEC_main.md",
	}, lines)

	doc, err := os.ReadFile(filepath.Join(root, "TECHSPEC_main.md"))
	require.NoError(t, err)
	assert.Equal(t, testDocument, string(doc))
	assert.NoFileExists(t, filepath.Join(root, "TECHSPEC_main.md.bak"))
}

func TestListCommand_Tree(t *testing.T) {
	_, configFile := newProject(t)

	out, err := runCommand(t, "list", "--config", configFile, "--structure-only=false", "--tree")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Repository Root/\n"))
	assert.Contains(t, out, "icon.png (structure only)")
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", out)
}

func TestOwnOutputs(t *testing.T) {
	root := t.TempDir()
	cfg := &config.Config{
		RootDir:         root,
		TechspecPattern: "docs/TECHSPEC_{branch}.md",
		BackupPattern:   "docs/TECHSPEC_{branch}.md.bak",
		StatsFile:       filepath.Join(root, "cps_run_stats.json"),
	}
	skip := ownOutputs(cfg, "feature/x")

	assert.True(t, skip("docs/TECHSPEC_feature_x.md"))
	assert.True(t, skip("docs/TECHSPEC_feature_x.md.bak"))
	assert.True(t, skip("cps_run_stats.json"))
	assert.False(t, skip("src/Main.java"))
}
