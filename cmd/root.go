// File: cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"techspec/pkg/config"
	"techspec/pkg/logging"
	"techspec/pkg/techspec"
	"techspec/pkg/version"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var (
	configPath    string
	verbose       bool
	structureOnly bool

	logger = zap.NewNop()
)

// RootCmd is the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "techspec",
	Short: "Regenerate the code section of a branch tech spec",
	Long: `techspec walks the project root, selects source and resource files, orders them
by semantic priority and rewrites the region between the start and end markers
of the branch's tech spec document. The previous document is kept as a backup.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.Setup(verbose, version.AppName, version.Version)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		_, err = techspec.Execute(cmd.Context(), cfg, runOptions(config.BranchOverride(), out), out, logger)
		return logFailure(err)
	},
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to the config file (default $"+config.EnvConfig+" or "+config.DefaultConfigFile+")")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&structureOnly, "structure-only", false, "List every file without its content")
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RootCmd.ExecuteContext(ctx)
}

func loadConfig() (*config.Config, error) {
	path := config.ResolvePath(configPath)
	logger.Debug("Loading config", zap.String("path", path))
	cfg, err := config.Load(path)
	if err != nil {
		return nil, logFailure(err)
	}
	return cfg, nil
}

func runOptions(branch string, out io.Writer) techspec.Options {
	return techspec.Options{
		StructureOnly: structureOnly,
		Branch:        branch,
		Styled:        isTerminal(out),
	}
}

// logFailure logs fatal configuration problems before they are returned.
func logFailure(err error) error {
	if err == nil {
		return nil
	}
	if techspec.IsConfigError(err) {
		logger.Error("Configuration error", zap.Error(err))
	} else {
		logger.Error("Run failed", zap.Error(err))
	}
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
