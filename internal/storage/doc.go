// Package storage writes the generated calendar and keeps a JSON snapshot
// of the previous run.
//
// Files are written through a temporary file in the same directory and
// renamed into place, so a failed or interrupted run leaves the previous
// file intact. The snapshot lives at <data-dir>/snapshot.json.
package storage
