package main

import (
	"fmt"
	"strings"

	"github.com/obentoo/srcsync/internal/common/logger"
	"github.com/obentoo/srcsync/internal/common/output"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available recipes",
	Long:  `List the recipes from the configured recipe file, or the built-in recipe when none is configured.`,
	Args:  cobra.NoArgs,
	Run:   runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) {
	_, recipes, err := loadSettings()
	if err != nil {
		logger.Error("%v", err)
		exit(exitFailure)
		return
	}

	for _, name := range recipes.Names() {
		r, err := recipes.Get(name)
		if err != nil {
			continue
		}
		fmt.Printf("%s\n", output.FormatRecipe(name))
		fmt.Printf("  repository:  %s\n", r.Repository)
		fmt.Printf("  reference:   %s\n", r.Reference)
		fmt.Printf("  destination: %s\n", r.Destination)
		if logger.Default().Enabled(logger.LevelDebug) {
			fmt.Printf("  commands:    %s\n", strings.Join(r.Commands, " && "))
			fmt.Printf("  requires:    %s\n", strings.Join(r.Requires, ", "))
		}
	}
}
