// Package state is the only write path into a project's module store.
//
// A Manager validates every document before it reaches disk, snapshots
// the bytes it is about to replace into a BackupStore and writes the
// corrected source atomically. Rollback restores the most recent snapshot.
//
// Managers do not serialise calls for the same module path; callers that
// write one path from several goroutines must hold their own lock.
package state
