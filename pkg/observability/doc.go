/*
Package observability provides tools for monitoring collection updates.

It includes Prometheus collectors wired through update hooks, so hosts can
track applied ops, batch sizes, and reconciliation latency without touching
the engine itself.
*/
package observability
