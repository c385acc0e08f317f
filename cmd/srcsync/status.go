package main

import (
	"fmt"

	"github.com/obentoo/srcsync/internal/checkout"
	"github.com/obentoo/srcsync/internal/common/git"
	"github.com/obentoo/srcsync/internal/common/logger"
	"github.com/obentoo/srcsync/internal/common/output"
	"github.com/obentoo/srcsync/internal/recipe"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [recipe...]",
	Short: "Show how each checkout compares to its pinned reference",
	Long: `Report the local state of each recipe's checkout without fetching.

States:
  missing      the destination holds no repository yet
  up to date   HEAD is the pinned commit and no tracked file is modified
  out of date  HEAD differs from the pinned commit, or the reference is not fetched yet
  modified     HEAD is the pinned commit but tracked files were changed`,
	Run: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, recipes, err := loadSettings()
	if err != nil {
		logger.Error("%v", err)
		exit(exitFailure)
		return
	}

	selected, err := recipes.Select(args)
	if err != nil {
		logger.Error("%v", err)
		exit(exitFailure)
		return
	}

	failed := false
	for _, r := range selected {
		path, err := r.Path()
		if err != nil {
			output.PrintError("%s: %v", r.Name, err)
			failed = true
			continue
		}
		runner, err := git.NewExecutor(cfg.GitClient(), path)
		if err != nil {
			logger.Error("%v", err)
			exit(exitFailure)
			return
		}

		ins, err := checkout.Inspect(runner, r.Checkout)
		if err != nil {
			output.PrintError("%s: %v", r.Name, err)
			failed = true
			continue
		}
		fmt.Println(formatInspection(r, ins))
		for _, file := range ins.Modified {
			fmt.Printf("    %s\n", output.Sprintf(output.Modified, "M %s", file))
		}
	}

	if failed {
		exit(exitFailure)
		return
	}
}

// formatInspection renders one status line for a recipe
func formatInspection(r *recipe.Recipe, ins *checkout.Inspection) string {
	line := fmt.Sprintf("%s  %s  %s", output.FormatRecipe(r.Name), output.FormatState(ins.State), r.Destination)
	if ins.State == checkout.StateMissing {
		return line
	}
	return fmt.Sprintf("%s  HEAD %s, %s %s", line,
		output.FormatRevision(ins.Head), r.Reference, output.FormatRevision(ins.Target))
}
