// Package storage implements the local session store shared by every client
// context ("tab") that opens the same database file.
//
// # Layout
//
// Values live in the `storage` table keyed by name (authToken, user). Every
// atomic write also bumps the single row of `storage_changes` with the
// writer's origin and the keys it touched; that row is what other processes
// poll to learn about changes.
//
// # Notifications
//
//   - Hub fans out changes inside one process. A subscriber never receives
//     changes carrying its own origin, the same way a browser never fires a
//     storage event in the tab that made the write.
//   - Watcher polls `storage_changes` and republishes foreign writes on its Hub,
//     which covers contexts living in other processes.
//
// Subscription channels hold at most one pending change; a reader that falls
// behind sees the latest one, which is enough because consumers reload the
// whole state on any change.
package storage
