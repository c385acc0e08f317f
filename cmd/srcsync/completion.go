package main

import (
	"os"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for srcsync.

Bash:
  $ source <(srcsync completion bash)

Zsh:
  $ srcsync completion zsh > "${fpath[1]}/_srcsync"

Fish:
  $ srcsync completion fish > ~/.config/fish/completions/srcsync.fish
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			rootCmd.GenFishCompletion(os.Stdout, true)
		}
	},
}

// completeRecipeNames offers the names of the configured recipes
func completeRecipeNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	_, recipes, err := loadSettings()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	seen := make(map[string]bool, len(args))
	for _, arg := range args {
		seen[arg] = true
	}

	var names []string
	for _, name := range recipes.Names() {
		if !seen[name] {
			names = append(names, name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func init() {
	rootCmd.AddCommand(completionCmd)
	runCmd.ValidArgsFunction = completeRecipeNames
	statusCmd.ValidArgsFunction = completeRecipeNames
}
