// Package techspec assembles the generated code section of a tech spec
// document: it selects files under the source root, orders them by semantic
// priority, renders each one, and splices the result between two markers in
// the live document.
package techspec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"techspec/pkg/config"
	"techspec/pkg/gitbranch"
	"techspec/pkg/ignore"
	"techspec/pkg/rank"
	"techspec/pkg/stats"

	"go.uber.org/zap"
)

// workspaceIgnoreFile is read from the root when present.
const workspaceIgnoreFile = ".gitignore"

// BuildPlan resolves the document paths, applies the selection rules and
// ranks the result. Nothing is written.
func BuildPlan(cfg *config.Config, branch string, logger *zap.Logger) (*Plan, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if info, err := os.Stat(cfg.RootDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, cfg.RootDir)
	}

	docName, backupName := cfg.DocumentNames(branch)
	plan := &Plan{
		Branch:       branch,
		DocumentName: docName,
		BackupName:   backupName,
		DocumentPath: filepath.Join(cfg.RootDir, filepath.FromSlash(docName)),
		BackupPath:   filepath.Join(cfg.RootDir, filepath.FromSlash(backupName)),
	}
	if _, err := os.Stat(plan.DocumentPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, docName)
	}

	exclude, err := excludeMatcher(cfg, branch, logger)
	if err != nil {
		return nil, err
	}
	workspace, err := ignore.LoadFile(filepath.Join(cfg.RootDir, workspaceIgnoreFile), logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Scanning files...")
	files, err := Select(Selection{
		Root:              cfg.RootDir,
		IncludeExtensions: cfg.IncludeExtensions,
		ForceInclude:      cfg.ForceIncludeFiles,
		WorkspaceIgnore:   workspace,
		Exclude:           exclude,
		Reserved:          []string{docName, backupName},
	}, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Sorting files (Semantic Priority)...")
	rank.New(cfg.FeatureKeywords, nil).Sort(files)
	plan.Files = files
	return plan, nil
}

// excludeMatcher combines the base excludes with every branch rule that
// matches branch.
func excludeMatcher(cfg *config.Config, branch string, logger *zap.Logger) (*ignore.Matcher, error) {
	rules, err := cfg.BranchRules()
	if err != nil {
		return nil, err
	}
	logger.Debug("Checking branch-specific rules...", zap.Int("rules", len(rules)))

	patterns := append([]string(nil), cfg.ExcludePatterns...)
	for _, rule := range rules {
		if rule.Re.MatchString(branch) {
			logger.Info("Branch matches rule",
				zap.String("branch", branch),
				zap.String("rule", rule.Expr),
				zap.Strings("excluding", rule.Patterns))
			patterns = append(patterns, rule.Patterns...)
		}
	}
	return ignore.NewMatcher(patterns, logger), nil
}

// NewTransformerFor builds the Transformer a run with cfg uses.
func NewTransformerFor(cfg *config.Config, structureOnly bool, logger *zap.Logger) (*Transformer, error) {
	return NewTransformer(TransformOptions{
		Root:             cfg.RootDir,
		BinaryExtensions: cfg.BinaryExtensions,
		SourceExtensions: cfg.SourceExtensions,
		OmitContent:      ignore.NewMatcher(cfg.OmitContentPatterns, logger),
		Notes:            cfg.FileNotes,
		ChangelogFile:    cfg.ChangelogFile,
		ChangelogHeading: cfg.ChangelogHeading,
		StructureOnly:    structureOnly,
	}, logger)
}

// Run executes one pass: plan, render every file, assemble, and inject into
// the live document.
func Run(cfg *config.Config, opts Options, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	startTime := time.Now()

	plan, err := BuildPlan(cfg, opts.Branch, logger)
	if err != nil {
		return nil, err
	}
	transformer, err := NewTransformerFor(cfg, opts.StructureOnly, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Generating blocks", zap.Int("files", len(plan.Files)))
	result := &Result{
		Plan:    *plan,
		Full:    map[string]int{},
		Omitted: map[string]int{},
	}
	blocks := make([]Block, 0, len(plan.Files))
	for _, rel := range plan.Files {
		block := transformer.Transform(rel)
		if block.Compact {
			result.Omitted[block.Ext]++
		} else {
			result.Full[block.Ext]++
		}
		blocks = append(blocks, block)
	}
	body := Assemble(blocks)

	logger.Info("Writing tech spec",
		zap.String("document", plan.DocumentName),
		zap.String("backup", plan.BackupName))
	markers := Markers{Start: cfg.MarkerStart, End: cfg.MarkerEnd}
	if err := InjectFile(plan.DocumentPath, plan.BackupPath, body, markers, logger); err != nil {
		return nil, err
	}

	result.Elapsed = time.Since(startTime)
	return result, nil
}

// Execute is a full invocation: resolve the branch, run the pipeline, print the
// report to out and persist statistics. Statistics failures are logged only.
func Execute(ctx context.Context, cfg *config.Config, opts Options, out io.Writer, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	branch, err := gitbranch.Detect(ctx, cfg.RootDir, opts.Branch, nil, logger)
	if err != nil {
		return nil, err
	}
	opts.Branch = branch

	tracker := stats.Open(cfg.StatsFile, logger)
	var previous *stats.Record
	if rec, ok := tracker.Previous(branch); ok {
		previous = &rec
	}

	result, err := Run(cfg, opts, logger)
	if err != nil {
		return nil, err
	}

	current := stats.NewRecord(time.Now(), result.Total(), result.Full, result.Omitted)
	report := stats.Report{
		Branch:   branch,
		Current:  current,
		Previous: previous,
		Elapsed:  result.Elapsed,
		Styled:   opts.Styled,
	}
	if out != nil {
		if err := report.Render(out); err != nil {
			logger.Warn("Failed to print report", zap.Error(err))
		}
	}

	if err := tracker.Commit(branch, current); err != nil {
		logger.Warn("Failed to save stats file", zap.String("path", cfg.StatsFile), zap.Error(err))
	}
	return result, nil
}

// IsConfigError reports whether err is one of the fatal configuration errors.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrRootNotFound) ||
		errors.Is(err, ErrDocumentNotFound) ||
		errors.Is(err, ErrMarkersInvalid) ||
		errors.Is(err, config.ErrMissingField) ||
		errors.Is(err, config.ErrRootNotFound) ||
		errors.Is(err, config.ErrInvalid)
}
