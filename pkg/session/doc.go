/*
Package session serialises access to persisted navigator sessions.

A Manager pairs a ports.SnapshotStore with per-session locks. Local locks are
reference counted and dropped once idle; an optional ports.DistributedLocker
extends mutual exclusion to runners on other hosts sharing the same store.
*/
package session
