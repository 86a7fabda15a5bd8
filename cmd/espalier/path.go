package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/presentation/graph"
	"github.com/aretw0/espalier/pkg/flow"
)

var pathCmd = &cobra.Command{
	Use:   "path <workflow.mmd> <from> <to>",
	Short: "Find the shortest route chain between two agents",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		eng, err := newEngine(cmd, args[0])
		if err != nil {
			fmt.Printf("Error compiling workflow: %v\n", err)
			os.Exit(1)
		}

		route := eng.FindPath(args[1], args[2])
		if len(route) == 0 {
			fmt.Printf("No route from %s to %s\n", flow.NormalizeID(args[1]), flow.NormalizeID(args[2]))
			os.Exit(1)
		}
		fmt.Println(strings.Join(route, " -> "))

		if diagram, _ := cmd.Flags().GetBool("diagram"); diagram {
			overlay := &graph.Overlay{
				VisitedAgents: route[:len(route)-1],
				CurrentAgent:  route[len(route)-1],
			}
			fmt.Println()
			fmt.Print(graph.Render(eng.Graph(), overlay))
		}
	},
}

func init() {
	rootCmd.AddCommand(pathCmd)
	pathCmd.Flags().Bool("diagram", false, "Also print the flowchart with the route highlighted")
}
