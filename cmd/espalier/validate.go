package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/presentation/tui"
)

var validateCmd = &cobra.Command{
	Use:   "validate <workflow.mmd>",
	Short: "Check a workflow for unreachable agents, dead ends and broken references",
	Long: `Compiles the workflow and reports advisory findings. Findings never block
compilation; use --fail-on-findings to turn them into a non-zero exit for CI.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd, args[0]); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("fail-on-findings", false, "Exit non-zero when findings are reported")
}

func runValidate(cmd *cobra.Command, path string) error {
	eng, err := newEngine(cmd, path)
	if err != nil {
		return fmt.Errorf("failed to compile workflow: %w", err)
	}

	findings := eng.Validate()
	fmt.Printf("%s %s\n", tui.StatusBadge(len(findings) == 0), eng.Name)
	for _, f := range findings {
		fmt.Printf("  - %s\n", f)
	}

	if failOn, _ := cmd.Flags().GetBool("fail-on-findings"); failOn && len(findings) > 0 {
		return fmt.Errorf("%d findings reported", len(findings))
	}
	return nil
}
