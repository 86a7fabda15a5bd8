package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse <workflow.mmd>",
	Short: "Compile a workflow and print its JSON export",
	Long: `Compiles the flowchart definition and prints the full graph export:
agents, routes, loop pairs, entry points and completion points.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		eng, err := newEngine(cmd, args[0])
		if err != nil {
			fmt.Printf("Error compiling workflow: %v\n", err)
			os.Exit(1)
		}

		out, err := json.MarshalIndent(eng.Export(), "", "  ")
		if err != nil {
			fmt.Printf("Error encoding export: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
