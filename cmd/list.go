// File: cmd/list.go
package cmd

import (
	"fmt"

	"techspec/pkg/config"
	"techspec/pkg/gitbranch"
	"techspec/pkg/techspec"

	"github.com/spf13/cobra"
)

const structureTag = "(structure only)"

var listTree bool

// listCmd is a dry run: it prints the ranked selection and never touches the
// document.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the files the next run would include, in document order",
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
		plan, err := techspec.BuildPlan(cfg, branch, logger)
		if err != nil {
			return logFailure(err)
		}
		transformer, err := techspec.NewTransformerFor(cfg, structureOnly, logger)
		if err != nil {
			return logFailure(err)
		}
		compact := func(rel string) bool {
			c, _ := transformer.IsCompact(rel)
			return c
		}

		out := cmd.OutOrStdout()
		if listTree {
			fmt.Fprint(out, techspec.RenderTree(plan.Files, compact, structureTag))
		} else {
			for _, rel := range plan.Files {
				if compact(rel) {
					fmt.Fprintf(out, "%s %s\n", rel, structureTag)
				} else {
					fmt.Fprintln(out, rel)
				}
			}
		}
		fmt.Fprintf(out, "\n%d files -> %s\n", len(plan.Files), plan.DocumentName)
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listTree, "tree", false, "Render the selection as a directory tree")
	RootCmd.AddCommand(listCmd)
}
