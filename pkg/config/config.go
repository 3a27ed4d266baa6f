// Package config loads and validates the tool configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default file names and marker strings.
const (
	DefaultConfigFile       = "techspec_config.json"
	DefaultStatsFile        = "cps_run_stats.json"
	DefaultMarkerStart      = "## CPS Provided Code"
	DefaultMarkerEnd        = "End CPS Provided Code"
	DefaultChangelog        = "CHANGELOG.md"
	DefaultChangelogHeading = `^##\s+\[`

	BranchPlaceholder = "{branch}"

	NoteBefore = "before"
	NoteAfter  = "after"
)

// Environment variables consulted after .env is loaded.
const (
	EnvConfig    = "TECHSPEC_CONFIG"
	EnvBranch    = "TECHSPEC_BRANCH"
	EnvStatsFile = "TECHSPEC_STATS_FILE"
	EnvRootDir   = "TECHSPEC_ROOT_DIR"
)

var (
	// ErrMissingField is returned when a required key is absent from the file.
	ErrMissingField = errors.New("missing required config field")
	// ErrRootNotFound is returned when root_dir is not an existing directory.
	ErrRootNotFound = errors.New("root_dir does not exist")
	// ErrInvalid is returned for structurally invalid values.
	ErrInvalid = errors.New("invalid config")
)

var requiredFields = []string{
	"root_dir",
	"techspec_pattern",
	"backup_pattern",
	"include_extensions",
	"exclude_patterns",
	"force_include_files",
}

// DefaultBinaryExtensions are rendered as compact entries without reading them.
var DefaultBinaryExtensions = []string{".png", ".ogg"}

// DefaultSourceExtensions have their import lines stripped.
var DefaultSourceExtensions = []string{".java"}

// FileNote is author text placed before or after a file's content. A note
// without a position is not rendered.
type FileNote struct {
	Note     string `yaml:"note" json:"note"`
	Position string `yaml:"position" json:"position"`
}

// Config mirrors techspec_config.json. The same shape may be written as YAML.
type Config struct {
	RootDir           string   `yaml:"root_dir" json:"root_dir"`
	TechspecPattern   string   `yaml:"techspec_pattern" json:"techspec_pattern"`
	BackupPattern     string   `yaml:"backup_pattern" json:"backup_pattern"`
	IncludeExtensions []string `yaml:"include_extensions" json:"include_extensions"`
	ExcludePatterns   []string `yaml:"exclude_patterns" json:"exclude_patterns"`
	ForceIncludeFiles []string `yaml:"force_include_files" json:"force_include_files"`

	BranchSpecificExcludes map[string][]string `yaml:"branch_specific_excludes" json:"branch_specific_excludes"`
	OmitContentPatterns    []string            `yaml:"omit_content_patterns" json:"omit_content_patterns"`
	FileNotes              map[string]FileNote `yaml:"file_notes" json:"file_notes"`

	MarkerStart      string   `yaml:"marker_start" json:"marker_start"`
	MarkerEnd        string   `yaml:"marker_end" json:"marker_end"`
	BinaryExtensions []string `yaml:"binary_extensions" json:"binary_extensions"`
	FeatureKeywords  []string `yaml:"feature_keywords" json:"feature_keywords"`
	SourceExtensions []string `yaml:"source_extensions" json:"source_extensions"`
	ChangelogFile    string   `yaml:"changelog_file" json:"changelog_file"`
	ChangelogHeading string   `yaml:"changelog_heading" json:"changelog_heading"`
	StatsFile        string   `yaml:"stats_file" json:"stats_file"`

	// Path is the file the config was loaded from.
	Path string `yaml:"-" json:"-"`
}

// BranchRule is one compiled branch_specific_excludes entry.
type BranchRule struct {
	Expr     string
	Re       *regexp.Regexp
	Patterns []string
}

// ResolvePath picks the config file: the explicit flag value, then
// TECHSPEC_CONFIG (after loading .env), then DefaultConfigFile.
func ResolvePath(flagValue string) string {
	_ = godotenv.Load()
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return env
	}
	return DefaultConfigFile
}

// Load reads, defaults and validates the config at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config file not found at %s: %w", path, err)
	}

	cfg, err := Parse(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.Path = path
	cfg.applyEnvOverrides()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Format selects the decoder for a config file.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// FormatFor picks JSON for .json files and YAML otherwise.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

func (f Format) unmarshal(data []byte, v any) error {
	if f == FormatJSON {
		return json.Unmarshal(data, v)
	}
	return yaml.Unmarshal(data, v)
}

// Parse decodes config bytes and checks that every required key is present.
// Required lists may be empty but must exist.
func Parse(data []byte, format Format) (*Config, error) {
	var raw map[string]any
	if err := format.unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for _, field := range requiredFields {
		if _, ok := raw[field]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, field)
		}
	}

	var cfg Config
	if err := format.unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvRootDir); v != "" {
		c.RootDir = v
	}
	if v := os.Getenv(EnvStatsFile); v != "" {
		c.StatsFile = v
	}
}

func (c *Config) applyDefaults() {
	if c.MarkerStart == "" {
		c.MarkerStart = DefaultMarkerStart
	}
	if c.MarkerEnd == "" {
		c.MarkerEnd = DefaultMarkerEnd
	}
	if c.BinaryExtensions == nil {
		c.BinaryExtensions = DefaultBinaryExtensions
	}
	if c.SourceExtensions == nil {
		c.SourceExtensions = DefaultSourceExtensions
	}
	if c.ChangelogFile == "" {
		c.ChangelogFile = DefaultChangelog
	}
	if c.ChangelogHeading == "" {
		c.ChangelogHeading = DefaultChangelogHeading
	}
	if c.StatsFile == "" {
		c.StatsFile = filepath.Join(filepath.Dir(c.Path), DefaultStatsFile)
	}
	c.IncludeExtensions = lowerAll(c.IncludeExtensions)
	c.BinaryExtensions = lowerAll(c.BinaryExtensions)
	c.SourceExtensions = lowerAll(c.SourceExtensions)
}

// Validate normalizes root_dir to an absolute path and checks the values a
// run depends on.
func (c *Config) Validate() error {
	if c.TechspecPattern == "" {
		return fmt.Errorf("%w: techspec_pattern is empty", ErrInvalid)
	}
	if c.BackupPattern == "" {
		return fmt.Errorf("%w: backup_pattern is empty", ErrInvalid)
	}

	abs, err := filepath.Abs(c.RootDir)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRootNotFound, c.RootDir, err)
	}
	c.RootDir = abs
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrRootNotFound, abs)
	}

	if _, err := c.BranchRules(); err != nil {
		return err
	}
	if _, err := regexp.Compile(c.ChangelogHeading); err != nil {
		return fmt.Errorf("%w: changelog_heading %q: %v", ErrInvalid, c.ChangelogHeading, err)
	}
	for rel, note := range c.FileNotes {
		switch note.Position {
		case NoteBefore, NoteAfter, "":
		default:
			return fmt.Errorf("%w: file_notes[%s].position must be %q or %q, got %q",
				ErrInvalid, rel, NoteBefore, NoteAfter, note.Position)
		}
	}
	return nil
}

// BranchRules compiles branch_specific_excludes in sorted expression order.
func (c *Config) BranchRules() ([]BranchRule, error) {
	exprs := make([]string, 0, len(c.BranchSpecificExcludes))
	for expr := range c.BranchSpecificExcludes {
		exprs = append(exprs, expr)
	}
	sort.Strings(exprs)

	rules := make([]BranchRule, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("%w: branch_specific_excludes key %q: %v", ErrInvalid, expr, err)
		}
		rules = append(rules, BranchRule{Expr: expr, Re: re, Patterns: c.BranchSpecificExcludes[expr]})
	}
	return rules, nil
}

// SanitizeBranch makes a branch name safe for use in a file name.
func SanitizeBranch(branch string) string {
	return strings.ReplaceAll(branch, "/", "_")
}

// DocumentNames returns the live document and backup names, relative to the
// root, for the given branch. Names are cleaned so they compare equal to
// walked paths.
func (c *Config) DocumentNames(branch string) (doc, backup string) {
	safe := SanitizeBranch(branch)
	doc = strings.ReplaceAll(c.TechspecPattern, BranchPlaceholder, safe)
	backup = strings.ReplaceAll(c.BackupPattern, BranchPlaceholder, safe)
	return path.Clean(filepath.ToSlash(doc)), path.Clean(filepath.ToSlash(backup))
}

// BranchOverride returns TECHSPEC_BRANCH, or "" when unset.
func BranchOverride() string {
	return os.Getenv(EnvBranch)
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
