package listing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blobtool/internal/filter"
	"blobtool/internal/models"
	"blobtool/internal/storage"
	"blobtool/internal/storage/storagetest"
)

var (
	jan20 = time.Date(2020, 1, 20, 23, 59, 0, 0, time.UTC)
	jan21 = time.Date(2020, 1, 21, 8, 0, 0, 0, time.UTC)
)

func seededStore() *storagetest.Memory {
	store := storagetest.NewMemory()
	store.PageSize = 2
	store.Put("files", "docs/Foo.json", []byte("foo"), jan20)
	store.Put("files", "docs/bar.csv", []byte("bar,baz"), jan21)
	store.Put("files", "docs/foo-old.json", []byte("old"), jan21)
	store.Put("files", "docs/2020/nested.json", []byte("nested"), jan20)
	store.Put("files", "docs/zeta.txt", []byte("z"), jan20)
	store.Put("files", "other/foo.json", []byte("elsewhere"), jan20)
	return store
}

func runFilter(t *testing.T, l *Lister, directory string, m Matcher) ([]Match, Stats, error) {
	t.Helper()
	var matches []Match
	stats, err := l.Filter(context.Background(), "files", directory, m, func(m Match) error {
		matches = append(matches, m)
		return nil
	})
	return matches, stats, err
}

func names(matches []Match) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.DisplayName)
	}
	return out
}

func TestFilter_ReportsMatchesInListingOrder(t *testing.T) {
	store := seededStore()
	p, err := filter.New(filter.NameContains, "FOO")
	require.NoError(t, err)

	matches, stats, err := runFilter(t, New(store, false), "docs", p)
	require.NoError(t, err)

	assert.Equal(t, []string{"Foo.json", "foo-old.json"}, names(matches))
	assert.Equal(t, 5, stats.Scanned)
	assert.Equal(t, 2, stats.Matched)
	assert.Equal(t, int64(6), stats.TotalBytes)
}

func TestFilter_EqualsUnfilteredSubset(t *testing.T) {
	store := seededStore()
	p, err := filter.NewInLocation(filter.Date, "2020-01-20", time.UTC)
	require.NoError(t, err)
	l := New(store, true)

	var want []string
	for entry, err := range l.List(context.Background(), "files", "docs") {
		require.NoError(t, err)
		if p.Match(entry) {
			display, err := DisplayName("docs", entry.Name)
			require.NoError(t, err)
			want = append(want, display)
		}
	}

	matches, _, err := runFilter(t, l, "docs", p)
	require.NoError(t, err)
	assert.Equal(t, []string{"2020/nested.json", "Foo.json", "zeta.txt"}, want)
	assert.Equal(t, want, names(matches))
}

func TestFilter_NonRecursiveYieldsDirectories(t *testing.T) {
	store := seededStore()
	p, err := filter.New(filter.NameContains, "2020")
	require.NoError(t, err)

	matches, _, err := runFilter(t, New(store, false), "docs", p)
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.Equal(t, "2020", matches[0].DisplayName)
	assert.True(t, matches[0].Entry.IsDirectory)
}

func TestFilter_ListingErrorIsTerminal(t *testing.T) {
	store := seededStore()
	store.ListErr = errors.New("connection reset by peer")
	store.FailOnPage = 2
	p, err := filter.New(filter.NameContains, "")
	require.NoError(t, err)

	matches, stats, err := runFilter(t, New(store, false), "docs", p)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset by peer")
	assert.Len(t, matches, 2, "matches from the first page were already reported")
	assert.Equal(t, 2, stats.Scanned)
	assert.Equal(t, 2, store.PageFetches)
}

func TestFilter_MissingContainer(t *testing.T) {
	store := seededStore()
	p, err := filter.New(filter.NameContains, "")
	require.NoError(t, err)

	_, err = New(store, false).Filter(context.Background(), "nope", "docs", p, func(Match) error { return nil })
	assert.ErrorIs(t, err, storage.ErrContainerNotFound)
}

func TestFilter_EntryOutsideDirectory(t *testing.T) {
	store := seededStore()
	store.AddStray("files", models.DirectoryEntry{Name: "elsewhere/x.json"})
	p, err := filter.New(filter.NameContains, "")
	require.NoError(t, err)

	_, _, err = runFilter(t, New(store, false), "docs", p)
	assert.ErrorIs(t, err, ErrOutsideDirectory)
}

func TestFilter_ReportErrorStopsWalk(t *testing.T) {
	store := seededStore()
	p, err := filter.New(filter.NameContains, "")
	require.NoError(t, err)

	calls := 0
	_, err = New(store, false).Filter(context.Background(), "files", "docs", p, func(Match) error {
		calls++
		return errors.New("broken pipe")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, store.PageFetches)
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		directory string
		name      string
		want      string
		wantErr   bool
	}{
		{"docs", "docs/a.json", "a.json", false},
		{"docs/", "docs/2020/b.json", "2020/b.json", false},
		{"", "a.json", "a.json", false},
		{"docs", "docsx/a.json", "", true},
		{"docs", "other/a.json", "", true},
		{"docs", "docs/", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.directory+"|"+tt.name, func(t *testing.T) {
			got, err := DisplayName(tt.directory, tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrOutsideDirectory)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatLine(t *testing.T) {
	m := Match{
		Entry:       models.DirectoryEntry{Name: "docs/Foo.json", LastModified: jan20, ContentLength: 42},
		DisplayName: "Foo.json",
	}

	want := "Name: Foo.json, LastModified: " + jan20.Local().Format(TimeLayout) + ", Size: 42 bytes"
	assert.Equal(t, want, FormatLine(m))
}

func TestFormatLine_DirectoryHasNoTimestamp(t *testing.T) {
	m := Match{
		Entry:       models.DirectoryEntry{Name: "docs/2020", IsDirectory: true},
		DisplayName: "2020",
	}

	assert.Equal(t, "Name: 2020, LastModified: , Size: 0 bytes", FormatLine(m))
}
