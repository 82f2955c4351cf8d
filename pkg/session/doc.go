/*
Package session coordinates persisted traversal runs.

It serializes concurrent access to a run within the process (per-run mutexes
with reference counting) and, when a DistributedLocker is configured, across
replicas, so that read-modify-write cycles such as "load, advance, save" never
interleave.
*/
package session
