package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <workflow.mmd>",
	Short: "Print the canonical flowchart for a workflow",
	Long: `Compiles the workflow and prints it back in canonical flowchart form:
normalized identifiers, explicit declarations and collapsed loop arrows.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		eng, err := newEngine(cmd, args[0])
		if err != nil {
			fmt.Printf("Error compiling workflow: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(graph.Render(eng.Graph(), nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
