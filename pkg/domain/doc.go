/*
Package domain contains the core domain models of the Wayfinder traversal engine.

It defines the static flow graph (Steps and Connections) and the runtime
Traversal State. This package is kept pure and free of external dependencies
like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Step: A closed sum type over the four step kinds (Informational,
    SingleChoice, MultiChoice, Terminal). Each kind carries only its own fields.
  - Connection: A directed edge between two steps, optionally tagged with the
    outlet (choice id or path id) it leaves from.
  - Graph: An immutable, indexed view over steps and connections.
  - State: The runtime position of a run (current step, selections, history).
  - View: A read-only projection of a State for presentation layers.
*/
package domain
