// File: cmd/watch.go
package cmd

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"techspec/pkg/config"
	"techspec/pkg/gitbranch"
	"techspec/pkg/techspec"
	"techspec/pkg/watch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchDebounce time.Duration

// watchCmd regenerates once, then again after every settled burst of changes
// under the root.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate the tech spec whenever files under the root change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		branch, err := gitbranch.Detect(cmd.Context(), cfg.RootDir, config.BranchOverride(), nil, logger)
		if err != nil {
			return logFailure(err)
		}

		out := cmd.OutOrStdout()
		opts := runOptions(branch, out)
		regenerate := func(ctx context.Context) error {
			_, err := techspec.Execute(ctx, cfg, opts, out, logger)
			return err
		}
		if err := regenerate(cmd.Context()); err != nil {
			if techspec.IsConfigError(err) && !errors.Is(err, techspec.ErrMarkersInvalid) {
				return logFailure(err)
			}
			logger.Error("Initial run failed", zap.Error(err))
		}

		w, err := watch.New(watch.Options{
			Root:     cfg.RootDir,
			Debounce: watchDebounce,
			Skip:     ownOutputs(cfg, branch),
		}, logger)
		if err != nil {
			return logFailure(err)
		}
		logger.Info("Watching for changes", zap.String("root", cfg.RootDir), zap.Duration("debounce", watchDebounce))
		return w.Run(cmd.Context(), regenerate)
	},
}

// ownOutputs matches the files a run writes, so regenerating never triggers
// itself.
func ownOutputs(cfg *config.Config, branch string) func(string) bool {
	doc, backup := cfg.DocumentNames(branch)
	skip := map[string]bool{doc: true, backup: true}
	if rel, err := filepath.Rel(cfg.RootDir, cfg.StatsFile); err == nil {
		skip[filepath.ToSlash(rel)] = true
	}
	return func(rel string) bool {
		return skip[rel]
	}
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before regenerating")
	RootCmd.AddCommand(watchCmd)
}
