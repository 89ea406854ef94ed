package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/adapters/tui"
	"github.com/aretw0/espalier/pkg/domain"
)

// boardCmd represents the board command
var boardCmd = &cobra.Command{
	Use:   "board COLLECTION_ID",
	Short: "Watch a stored collection live in the terminal",
	Long: `Renders a collection as a sectioned board and keeps it in sync with the
store. Each poll reconciles the board against the stored snapshot, so rows
and sections light up as other writers change them.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]
		interval, _ := cmd.Flags().GetDuration("interval")

		manager, closer, err := newManager(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer closer()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		snap, err := manager.Load(ctx, id)
		if err != nil {
			fmt.Printf("Error loading collection '%s': %v\n", id, err)
			os.Exit(1)
		}

		p := tea.NewProgram(tui.NewModel(tui.BoardFromSnapshot(snap)), tea.WithAltScreen())

		// The controller lives on the polling goroutine; the bridge carries
		// each settled batch into the tea loop as a single message.
		var ctrl *espalier.Controller[domain.SectionSnapshot, domain.RowSnapshot, string]
		bridge := tui.NewBridge(p.Send, func() []tui.SectionView {
			return tui.BoardFromSnapshot(&domain.Snapshot{Sections: ctrl.List().Snapshot()})
		})
		ctrl = espalier.NewSnapshotController(snap,
			espalier.WithTarget[domain.SectionSnapshot, domain.RowSnapshot](bridge),
		)

		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					latest, err := manager.Load(ctx, id)
					if err != nil {
						continue
					}
					// Stale polls reconcile to an empty script and send nothing.
					if _, err := ctrl.Ensure(latest.Sections); err != nil {
						continue
					}
				}
			}
		}()

		if _, err := p.Run(); err != nil {
			fmt.Printf("Error running board: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(boardCmd)
	boardCmd.Flags().Duration("interval", 2*time.Second, "Store polling interval")
}
