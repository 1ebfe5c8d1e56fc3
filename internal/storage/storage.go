// Package storage defines the remote object-storage capability used by the
// listing and download operations, and the error taxonomy its backends share.
package storage

import (
	"context"
	"io"
	"iter"
	"strings"

	"blobtool/internal/models"
)

// Separator delimits directories inside a container.
const Separator = "/"

// Store is an authenticated view of a hierarchical object store.
type Store interface {
	// List yields the entries under directory one at a time. Implementations
	// fetch the next page only once the consumer has drained the current one
	// and stop fetching when the consumer stops iterating. A failure is
	// yielded once as a non-nil error and ends the sequence.
	List(ctx context.Context, container, directory string, recursive bool) iter.Seq2[models.DirectoryEntry, error]

	// Open returns a stream over the content of the object at key.
	// The caller closes it.
	Open(ctx context.Context, container, key string) (io.ReadCloser, error)
}

// CleanDirectory strips surrounding separators from a directory path.
func CleanDirectory(directory string) string {
	return strings.Trim(directory, Separator)
}

// Prefix returns the key prefix that selects the children of directory.
// The container root has an empty prefix.
func Prefix(directory string) string {
	directory = CleanDirectory(directory)
	if directory == "" {
		return ""
	}
	return directory + Separator
}

// Key joins a directory path and a file name into an object key.
func Key(directory, name string) string {
	return Prefix(directory) + strings.TrimPrefix(name, Separator)
}
