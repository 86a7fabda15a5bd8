package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/pkg/flow"
)

// routeCmd represents the route command
var routeCmd = &cobra.Command{
	Use:   "route <workflow.mmd> <agent>",
	Short: "List the agents reachable in one hop from an agent",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		eng, err := newEngine(cmd, args[0])
		if err != nil {
			fmt.Printf("Error compiling workflow: %v\n", err)
			os.Exit(1)
		}

		agent := flow.NormalizeID(args[1])
		next := eng.NextAgents(agent)

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			out, err := json.MarshalIndent(next, "", "  ")
			if err != nil {
				fmt.Printf("Error encoding routes: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(out))
			return
		}

		if len(next) == 0 {
			fmt.Printf("No outgoing routes from %s\n", agent)
			return
		}
		for _, n := range next {
			marker := ""
			if n.IsLoop {
				marker = " (loop)"
			}
			fmt.Printf("%s -> %s [%s] via %q%s\n", agent, n.Target, n.Name, n.Label, marker)
		}
	},
}

func init() {
	rootCmd.AddCommand(routeCmd)
	routeCmd.Flags().Bool("json", false, "Print routes as JSON")
}
