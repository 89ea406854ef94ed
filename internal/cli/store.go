package cli

import (
	"fmt"

	"github.com/aretw0/espalier/internal/adapters/file"
	redisadapter "github.com/aretw0/espalier/internal/adapters/redis"
	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/ports"
)

// StoreOptions selects and configures the snapshot store backing the CLI.
type StoreOptions struct {
	Backend       string // "file", "redis" or "memory"
	Dir           string // base path for the file backend
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// OpenStore builds the snapshot store the flags ask for. The returned close
// function releases backend connections and is safe to call on every path.
func OpenStore(opts StoreOptions) (ports.SnapshotStore, func() error, error) {
	switch opts.Backend {
	case "", "file":
		return file.New(opts.Dir), func() error { return nil }, nil
	case "redis":
		store := redisadapter.New(opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
		return store, store.Close, nil
	case "memory":
		// Useful for dry runs: nothing survives the process.
		return memory.NewStore(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q (supported: file, redis, memory)", opts.Backend)
	}
}
