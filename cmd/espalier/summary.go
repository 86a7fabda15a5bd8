package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/presentation/tui"
)

var summaryCmd = &cobra.Command{
	Use:   "summary <workflow.mmd>",
	Short: "Show a rendered report for a workflow",
	Long: `Compiles the workflow and renders a terminal report: counts, entry and
completion points, the routing table and any advisory findings.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		eng, err := newEngine(cmd, args[0])
		if err != nil {
			fmt.Printf("Error compiling workflow: %v\n", err)
			os.Exit(1)
		}

		report := tui.Report{
			Name:     eng.Name,
			Summary:  eng.Summary(),
			Routes:   eng.Graph().AllRoutes(),
			Findings: eng.Validate(),
		}

		tui.PrintBanner()
		render := tui.NewRenderer()
		out, err := render(report.Markdown())
		if err != nil {
			// Fall back to raw markdown when the terminal renderer chokes.
			fmt.Print(report.Markdown())
			return
		}
		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}
