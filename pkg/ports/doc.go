/*
Package ports defines the driven ports (interfaces) of the TwentyFive runtime.

These interfaces decouple the list handlers and the dispatcher from external
implementations, allowing the same service to run on various storage backends
and lock providers.

# Key Interfaces

  - StateStore: Responsible for persisting and loading Instance state by ID.
  - DistributedLocker: Provides distributed locking so writers stay serialized across replicas.
*/
package ports
