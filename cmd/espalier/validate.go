package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check a snapshot file for consistency",
	Long: `Parses a snapshot file (JSON or YAML) and reports duplicate section or
row keys. Pass '-' to read from stdin.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(args[0]); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Snapshot is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(path string) error {
	snap, err := cli.LoadSnapshot(path)
	if err != nil {
		return err
	}

	rows := 0
	for _, s := range snap.Sections {
		rows += len(s.Items)
	}
	fmt.Printf("Parsed %d sections, %d rows.\n", len(snap.Sections), rows)
	return nil
}
