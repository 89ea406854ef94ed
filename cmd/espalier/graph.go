package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/cli"
	"github.com/aretw0/espalier/internal/presentation/graph"
	"github.com/aretw0/espalier/pkg/domain"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [COLLECTION_ID]",
	Short: "Export a collection as a Mermaid diagram",
	Long: `Prints a Mermaid (graph TD) diagram of a collection: sections become
subgraphs, rows chain in display order. With --file the snapshot comes from
disk instead of the store. With --against the diagram shows the desired
snapshot and highlights everything a reconciliation would insert or replace.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		snap, err := resolveSnapshot(cmd, args)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		var overlay *graph.Overlay
		if against, _ := cmd.Flags().GetString("against"); against != "" {
			desired, err := cli.LoadSnapshot(against)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			script, err := espalier.DiffSnapshots(snap, desired)
			if err != nil {
				fmt.Printf("Diff error: %v\n", err)
				os.Exit(1)
			}
			// Highlights use post-edit numbering, so the diagram shows the
			// desired snapshot.
			snap = desired
			overlay = graph.OverlayFromScript(script)
		}

		fmt.Print(graph.GenerateMermaid(snap, overlay))
	},
}

// resolveSnapshot picks the diagram input: --file wins, otherwise the
// positional collection ID is loaded from the store.
func resolveSnapshot(cmd *cobra.Command, args []string) (*domain.Snapshot, error) {
	if file, _ := cmd.Flags().GetString("file"); file != "" {
		return cli.LoadSnapshot(file)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("either a COLLECTION_ID argument or --file is required")
	}

	manager, closer, err := newManager(cmd)
	if err != nil {
		return nil, err
	}
	defer closer()

	return manager.Load(context.Background(), args[0])
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("file", "", "Read the snapshot from a file instead of the store")
	graphCmd.Flags().String("against", "", "Snapshot file to diff against; changes are highlighted")
}
