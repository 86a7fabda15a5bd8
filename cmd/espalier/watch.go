package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/adapters/file"
	"github.com/aretw0/espalier/internal/presentation/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch <workflow.mmd>",
	Short: "Recompile a workflow whenever its file changes",
	Long: `Development mode: compiles the workflow, renders the report and waits for
changes. Every save triggers a recompile, so broken edits surface immediately.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runWatch(cmd, args[0]); err != nil {
			fmt.Printf("Watch failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, path string) error {
	tui.PrintBanner()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	name := strings.TrimSuffix(filepath.Base(path), file.Ext)
	events, err := file.New(filepath.Dir(path)).Watch(ctx)
	if err != nil {
		return err
	}

	render := tui.NewRenderer()
	report := func() {
		eng, err := newEngine(cmd, path)
		if err != nil {
			// Broken edits are part of the loop; report and keep watching.
			fmt.Printf("%s %s: %v\n", tui.StatusBadge(false), name, err)
			return
		}
		rep := tui.Report{
			Name:     eng.Name,
			Summary:  eng.Summary(),
			Routes:   eng.Graph().AllRoutes(),
			Findings: eng.Validate(),
		}
		out, err := render(rep.Markdown())
		if err != nil {
			fmt.Print(rep.Markdown())
			return
		}
		fmt.Print(out)
	}

	report()
	fmt.Println("Waiting for changes...")

	for {
		select {
		case sig := <-shutdown:
			fmt.Printf("\nStopping watcher (%s).\n", sig)
			return nil
		case changed, ok := <-events:
			if !ok {
				return nil
			}
			if changed != name {
				continue
			}
			fmt.Printf("\nChange detected in '%s'.\n", changed)
			report()
			fmt.Println("Waiting for changes...")
		}
	}
}
