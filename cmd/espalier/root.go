package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/cli"
	"github.com/aretw0/espalier/pkg/registry"
)

var rootCmd = &cobra.Command{
	Use:   "espalier",
	Short: "Espalier reconciles ordered, sectioned collections",
	Long: `Espalier diffs two-level keyed collections (sections holding rows) and
produces minimal edit scripts: the exact inserts, removals and replacements
that turn one snapshot into another, in an order a list widget can replay.`,
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
	rootCmd.PersistentFlags().String("store", "file", "Snapshot store backend: file, redis or memory")
	rootCmd.PersistentFlags().String("dir", "", "Base directory for the file store (default .espalier/collections)")
	rootCmd.PersistentFlags().String("redis-addr", "localhost:6379", "Redis address (store=redis)")
	rootCmd.PersistentFlags().String("redis-password", "", "Redis password (store=redis)")
	rootCmd.PersistentFlags().Int("redis-db", 0, "Redis database number (store=redis)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error or off")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON")
}

func storeOptions(cmd *cobra.Command) cli.StoreOptions {
	backend, _ := cmd.Flags().GetString("store")
	dir, _ := cmd.Flags().GetString("dir")
	addr, _ := cmd.Flags().GetString("redis-addr")
	password, _ := cmd.Flags().GetString("redis-password")
	db, _ := cmd.Flags().GetInt("redis-db")
	return cli.StoreOptions{
		Backend:       backend,
		Dir:           dir,
		RedisAddr:     addr,
		RedisPassword: password,
		RedisDB:       db,
	}
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json-logs")
	return cli.CreateLogger(level, jsonLogs)
}

// newManager opens the configured store and wraps it in a collection
// manager. Callers must invoke the returned close function.
func newManager(cmd *cobra.Command) (*registry.Manager, func() error, error) {
	store, closer, err := cli.OpenStore(storeOptions(cmd))
	if err != nil {
		return nil, nil, err
	}
	manager := registry.NewManager(store, registry.WithLogger(newLogger(cmd)))
	return manager, closer, nil
}
