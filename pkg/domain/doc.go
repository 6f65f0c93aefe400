/*
Package domain contains the core list model and the pure operation handlers of the
TwentyFive service.

It defines the entities owned by a state-machine instance and the transitions that
act on them. This package is kept pure and free of external dependencies like I/O,
locking or persistence: every handler receives a copy of the current state and returns
a new one together with its response, so the hosting runtime can retry or discard it.

# Key Entities

  - ListState: an ordered, duplicate-free sequence of item values.
  - Kind: which list of an instance an operation targets (goals or tasks).
  - Instance: the persisted unit addressed by id, owning one ListState per Kind.
  - Rules: the handler set (Create, List, Add, Move, Delete) with an optional capacity.
*/
package domain
