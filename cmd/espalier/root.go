package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "espalier",
	Short: "Espalier compiles agent workflow flowcharts into routing graphs",
	Long: `Espalier turns flowchart definitions of multi-agent workflows into
immutable routing graphs: who hands off to whom, where work enters, where it
completes, and which agents collaborate in review loops.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().Bool("strict", false, "Record advisories for ignored lines and duplicate declarations")
}

// newEngine compiles the workflow at path honoring the persistent flags.
func newEngine(cmd *cobra.Command, path string) (*espalier.Engine, error) {
	levelName, _ := cmd.Flags().GetString("log-level")
	strict, _ := cmd.Flags().GetBool("strict")

	opts := []espalier.Option{
		espalier.WithLogger(logging.New(logging.ParseLevel(levelName))),
	}
	if strict {
		opts = append(opts, espalier.WithStrict())
	}
	return espalier.New(path, opts...)
}
