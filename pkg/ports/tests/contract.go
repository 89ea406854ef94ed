package tests

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/espalier/pkg/ports"
)

// LockerContractTest is a reusable test suite that verifies if an adapter
// complies with ports.DistributedLocker: mutual exclusion per key,
// independence across keys, and release via the returned UnlockFunc.
func LockerContractTest(t *testing.T, locker ports.DistributedLocker) {
	t.Helper()
	ctx := context.Background()

	t.Run("Lock_Excludes_Second_Holder", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, "contract-key", 5*time.Second)
		if err != nil {
			t.Fatalf("unexpected error acquiring lock: %v", err)
		}

		// A second attempt on the same key must not get through while the
		// first holder is alive.
		attemptCtx, cancel := context.WithTimeout(ctx, 150*time.Millisecond)
		defer cancel()
		if _, err := locker.Lock(attemptCtx, "contract-key", 5*time.Second); err == nil {
			t.Error("expected second Lock on held key to fail or time out")
		}

		if err := unlock(ctx); err != nil {
			t.Fatalf("unexpected error releasing lock: %v", err)
		}
	})

	t.Run("Lock_Reacquirable_After_Unlock", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, "contract-key", 5*time.Second)
		if err != nil {
			t.Fatalf("unexpected error reacquiring lock: %v", err)
		}
		if err := unlock(ctx); err != nil {
			t.Fatalf("unexpected error releasing lock: %v", err)
		}
	})

	t.Run("Independent_Keys_Do_Not_Block", func(t *testing.T) {
		unlockA, err := locker.Lock(ctx, "contract-key-a", 5*time.Second)
		if err != nil {
			t.Fatalf("unexpected error locking key a: %v", err)
		}
		defer func() { _ = unlockA(ctx) }()

		otherCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		unlockB, err := locker.Lock(otherCtx, "contract-key-b", 5*time.Second)
		if err != nil {
			t.Fatalf("lock on unrelated key should succeed: %v", err)
		}
		_ = unlockB(ctx)
	})
}
