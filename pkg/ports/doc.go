/*
Package ports defines the driven ports (interfaces) of the Wayfinder engine.

These interfaces decouple traversal from the places flows come from and the
places runs are kept, so hosts can mix local files, remote catalogs, memory,
disk and Redis freely.

# Key Interfaces

  - FlowLoader: Produces a flow document (file, memory, URL).
  - Watchable: Optional FlowLoader capability signaling that the source changed.
  - StateStore: Persists and loads the traversal State of a run.
  - DistributedLocker: Coordinates concurrent access to a run across replicas.
  - StatelessEngine: The traversal operations hosts drive with external state.
*/
package ports
