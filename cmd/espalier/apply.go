package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/cli"
	"github.com/aretw0/espalier/internal/presentation/term"
	"github.com/aretw0/espalier/pkg/registry"
)

// applyCmd represents the apply command
var applyCmd = &cobra.Command{
	Use:   "apply COLLECTION_ID SNAPSHOT_FILE",
	Short: "Reconcile a stored collection toward a snapshot file",
	Long: `Loads the desired snapshot from a file, reconciles the stored collection
toward it and prints the edit script that was applied. Use --create to start
the collection if it does not exist yet.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]
		desired, err := cli.LoadSnapshot(args[1])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		manager, closer, err := newManager(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer closer()

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		if create, _ := cmd.Flags().GetBool("create"); create {
			err := manager.Create(ctx, id, nil)
			switch {
			case err == nil:
				cli.PrintSystemMessage("created collection %s", id)
			case !isExists(err):
				fmt.Printf("Create error: %v\n", err)
				os.Exit(1)
			}
		}

		script, err := manager.Ensure(ctx, id, desired)
		if err != nil {
			if cli.HandleExecutionError(err) == nil {
				if sig := ctx.Signal(); sig != nil {
					cli.PrintSystemMessage("interrupted by %v", sig)
				}
				return
			}
			fmt.Printf("Apply error: %v\n", err)
			os.Exit(1)
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(script); err != nil {
				fmt.Printf("Encode error: %v\n", err)
				os.Exit(1)
			}
			return
		}

		out, err := term.RenderScript(script)
		if err != nil {
			out = term.ScriptMarkdown(script)
		}
		fmt.Print(out)
	},
}

func isExists(err error) bool {
	return errors.Is(err, registry.ErrCollectionExists)
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().Bool("create", false, "Create the collection first if it does not exist")
	applyCmd.Flags().Bool("json", false, "Print the script as JSON instead of rendered markdown")
}
