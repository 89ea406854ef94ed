package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/cli"
	"github.com/aretw0/espalier/internal/presentation/term"
)

// diffCmd represents the diff command
var diffCmd = &cobra.Command{
	Use:   "diff OLD NEW",
	Short: "Compute the edit script between two snapshot files",
	Long: `Reads two snapshot files (JSON or YAML) and prints the minimal edit script
that turns the first into the second. Pass "-" to read a snapshot from stdin.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		oldSnap, err := cli.LoadSnapshot(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		newSnap, err := cli.LoadSnapshot(args[1])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		script, err := espalier.DiffSnapshots(oldSnap, newSnap)
		if err != nil {
			fmt.Printf("Diff error: %v\n", err)
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
			// Fall back to the raw markdown if the terminal renderer fails.
			out = term.ScriptMarkdown(script)
		}
		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().Bool("json", false, "Print the script as JSON instead of rendered markdown")
}
