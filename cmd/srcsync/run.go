package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/obentoo/srcsync/internal/common/logger"
	"github.com/obentoo/srcsync/internal/common/output"
	"github.com/obentoo/srcsync/internal/recipe"
	"github.com/obentoo/srcsync/internal/step"
	"github.com/spf13/cobra"
)

// failureTail is how many output lines of a failed command are shown
const failureTail = 20

var runCmd = &cobra.Command{
	Use:   "run [recipe...]",
	Short: "Sync checkouts and build the ones that changed",
	Long: `Bring each recipe's checkout to its pinned reference. When the sync
changes the checkout, run the recipe's build commands in it once.

Recipes run one after another and the first failure stops the run.
Without arguments every recipe runs.

Exit status:
  0  success
  1  configuration or prerequisite error
  2  sync error (remote unreachable, reference not found)
  3  build error (a build command exited non-zero; the checkout keeps the new revision)

Examples:
  srcsync run
  srcsync run lvm2 --verbose
  srcsync run --recipes /etc/srcsync/recipes.toml --git-client go-git`,
	Run: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) {
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

	err = runRecipes(cmd.Context(), selected, func(r *recipe.Recipe) (*step.Step, error) {
		return step.New(r, cfg.GitClient())
	})
	if code := exitCode(err); code != exitOK {
		exit(code)
	}
}

// stepFactory builds the Step for a recipe
type stepFactory func(r *recipe.Recipe) (*step.Step, error)

// runRecipes runs each recipe's step in order and stops at the first failure
func runRecipes(ctx context.Context, recipes []*recipe.Recipe, newStep stepFactory) error {
	if ctx == nil {
		ctx = context.Background()
	}

	for _, r := range recipes {
		s, err := newStep(r)
		if err != nil {
			output.PrintError("%s: %v", r.Name, err)
			return err
		}

		result, err := s.Run(ctx)
		if err != nil {
			reportFailure(err)
			return err
		}
		reportResult(r, result)
	}
	return nil
}

func reportResult(r *recipe.Recipe, result *step.Result) {
	rev := output.FormatRevision(result.Sync.Revision)
	if !result.Built() {
		output.PrintSuccess("%s already at %s (%s), nothing to build", output.FormatRecipe(r.Name), r.Reference, rev)
		return
	}

	output.PrintSuccess("%s synced to %s (%s) and built in %s",
		output.FormatRecipe(r.Name), r.Reference, rev, result.Build.Duration.Round(time.Millisecond))
}

func reportFailure(err error) {
	var buildErr *step.BuildError
	if errors.As(err, &buildErr) {
		output.PrintError("%v", err)
		output.PrintWarning("%s is left at %s; the next run will not rebuild it unless the checkout changes",
			buildErr.Recipe, output.ShortRevision(buildErr.Revision))
		if buildErr.Failed != nil && buildErr.Failed.Output != "" {
			logger.Error("Output of %q:", buildErr.Failed.Command)
			logger.Error("%s", tail(buildErr.Failed.Output, failureTail))
		}
		return
	}

	output.PrintError("%v", err)
}

// tail returns the last n lines of s
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
