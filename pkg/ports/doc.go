/*
Package ports defines the driven ports (interfaces) of the navigation engine.

These interfaces decouple the navigator from persistence and coordination
backends so the same session can live in memory during a local run or in Redis
when several runners share a device farm.

# Key Interfaces

  - SnapshotStore: persists and loads navigator session snapshots.
  - DistributedLocker: serialises access to a session across processes.
*/
package ports
