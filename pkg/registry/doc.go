/*
Package registry implements named collection management and persistence
orchestration.

It provides high-level abstractions for handling concurrent access to stored
collections across multiple replicas, combining per-ID in-process locks with
optional distributed locking and pluggable snapshot stores.
*/
package registry
