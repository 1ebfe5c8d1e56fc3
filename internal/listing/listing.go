// Package listing walks a remote directory and reports the entries that pass
// a predicate, one entry at a time.
package listing

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"blobtool/internal/models"
	"blobtool/internal/storage"
)

// ErrOutsideDirectory means the store returned an entry that does not live
// under the requested directory.
var ErrOutsideDirectory = errors.New("listing returned an entry outside the requested directory")

// TimeLayout is how LastModified is rendered in text reports.
const TimeLayout = "2006-01-02 15:04:05 -07:00"

// Matcher is satisfied by filter.Predicate.
type Matcher interface {
	Match(models.DirectoryEntry) bool
}

// Match is an entry that passed the predicate.
type Match struct {
	Entry       models.DirectoryEntry
	DisplayName string
}

// Stats summarises one Filter run.
type Stats struct {
	Scanned    int
	Matched    int
	TotalBytes int64
}

type Lister struct {
	store     storage.Store
	recursive bool
}

func New(store storage.Store, recursive bool) *Lister {
	return &Lister{store: store, recursive: recursive}
}

// List returns the lazy entry sequence for directory.
func (l *Lister) List(ctx context.Context, container, directory string) iter.Seq2[models.DirectoryEntry, error] {
	return l.store.List(ctx, container, directory, l.recursive)
}

// Filter evaluates m against every entry under directory in listing order
// and calls report for each match as soon as it is seen. Entries are not
// retained. The first listing, integrity or report error stops the walk;
// matches already reported stay reported.
func (l *Lister) Filter(ctx context.Context, container, directory string, m Matcher, report func(Match) error) (Stats, error) {
	var stats Stats

	for entry, err := range l.List(ctx, container, directory) {
		if err != nil {
			return stats, err
		}
		stats.Scanned++

		display, err := DisplayName(directory, entry.Name)
		if err != nil {
			return stats, err
		}

		if !m.Match(entry) {
			continue
		}

		stats.Matched++
		stats.TotalBytes += entry.ContentLength
		if err := report(Match{Entry: entry, DisplayName: display}); err != nil {
			return stats, fmt.Errorf("failed to report %s: %w", entry.Name, err)
		}
	}

	return stats, nil
}

// DisplayName strips the directory and its separator from name.
func DisplayName(directory, name string) (string, error) {
	prefix := storage.Prefix(directory)
	if !strings.HasPrefix(name, prefix) || name == prefix {
		return "", fmt.Errorf("%w: %q is not under %q", ErrOutsideDirectory, name, storage.CleanDirectory(directory))
	}
	return strings.TrimPrefix(name, prefix), nil
}

// FormatLine renders a match as one line of the text report. Entries without
// a timestamp get an empty LastModified.
func FormatLine(m Match) string {
	var modified string
	if !m.Entry.LastModified.IsZero() {
		modified = m.Entry.LastModified.Local().Format(TimeLayout)
	}
	return fmt.Sprintf("Name: %s, LastModified: %s, Size: %d bytes",
		m.DisplayName, modified, m.Entry.ContentLength)
}
