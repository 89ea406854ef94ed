/*
Package ports defines the driven ports (interfaces) for the Espalier engine.

These interfaces decouple the core collection from external implementations,
allowing the same reconciliation logic to drive different widgets and storage
backends.

# Key Interfaces

  - Target: the rendering widget receiving ordered structural updates.
  - SnapshotStore: persistence for named collection snapshots.
  - DistributedLocker: distributed locking for concurrent collection access.
*/
package ports
