// Package storagetest provides an in-memory storage.Store for tests.
package storagetest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"iter"
	"sort"
	"strings"
	"time"

	"blobtool/internal/models"
	"blobtool/internal/storage"
)

// Object is a stored blob.
type Object struct {
	Key          string
	Data         []byte
	LastModified time.Time
}

// Memory is a storage.Store that serves pages from memory and records how it
// was used. It is not safe for concurrent use.
type Memory struct {
	// PageSize is the number of entries per listing page. Zero means 1000.
	PageSize int

	// ListErr, when set, is returned in place of the page numbered FailOnPage
	// (1-based; 0 fails the first page).
	ListErr    error
	FailOnPage int

	// OpenErr, when set, is returned by Open.
	OpenErr error

	// BreakAfter, when positive, makes object streams fail with ReadErr after
	// that many bytes.
	BreakAfter int
	ReadErr    error

	ListCalls   int
	PageFetches int
	OpenCalls   int

	objects map[string]map[string]Object
	strays  map[string][]models.DirectoryEntry
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string]map[string]Object),
		strays:  make(map[string][]models.DirectoryEntry),
	}
}

// Put stores data under container/key.
func (m *Memory) Put(container, key string, data []byte, modified time.Time) {
	if m.objects[container] == nil {
		m.objects[container] = make(map[string]Object)
	}
	m.objects[container][key] = Object{Key: key, Data: data, LastModified: modified}
}

// AddStray appends an entry to every listing of container regardless of the
// requested directory, imitating a misbehaving listing API.
func (m *Memory) AddStray(container string, entry models.DirectoryEntry) {
	m.strays[container] = append(m.strays[container], entry)
}

func (m *Memory) List(ctx context.Context, container, directory string, recursive bool) iter.Seq2[models.DirectoryEntry, error] {
	m.ListCalls++
	return func(yield func(models.DirectoryEntry, error) bool) {
		objects, ok := m.objects[container]
		if !ok {
			yield(models.DirectoryEntry{}, storage.NewError("list", container, "", storage.ErrContainerNotFound,
				errors.New("The specified container does not exist.")))
			return
		}

		entries := append(m.entries(objects, directory, recursive), m.strays[container]...)

		size := m.PageSize
		if size <= 0 {
			size = 1000
		}

		for page := 1; len(entries) > 0 || page == 1; page++ {
			if err := ctx.Err(); err != nil {
				yield(models.DirectoryEntry{}, err)
				return
			}
			m.PageFetches++
			if m.ListErr != nil && (m.FailOnPage == page || (m.FailOnPage == 0 && page == 1)) {
				yield(models.DirectoryEntry{}, storage.NewError("list", container, "", nil, m.ListErr))
				return
			}

			n := min(size, len(entries))
			for _, e := range entries[:n] {
				if !yield(e, nil) {
					return
				}
			}
			entries = entries[n:]
			if len(entries) == 0 {
				return
			}
		}
	}
}

func (m *Memory) entries(objects map[string]Object, directory string, recursive bool) []models.DirectoryEntry {
	prefix := storage.Prefix(directory)

	keys := make([]string, 0, len(objects))
	for key := range objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var out []models.DirectoryEntry
	seenDirs := make(map[string]bool)
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) || key == prefix {
			continue
		}
		rest := strings.TrimPrefix(key, prefix)
		if i := strings.Index(rest, storage.Separator); i >= 0 && !recursive {
			dir := prefix + rest[:i]
			if !seenDirs[dir] {
				seenDirs[dir] = true
				out = append(out, models.DirectoryEntry{Name: dir, IsDirectory: true})
			}
			continue
		}
		obj := objects[key]
		out = append(out, models.DirectoryEntry{
			Name:          key,
			LastModified:  obj.LastModified,
			ContentLength: int64(len(obj.Data)),
		})
	}
	return out
}

func (m *Memory) Open(ctx context.Context, container, key string) (io.ReadCloser, error) {
	m.OpenCalls++
	if m.OpenErr != nil {
		return nil, m.OpenErr
	}
	obj, ok := m.objects[container][key]
	if !ok {
		return nil, storage.NewError("open", container, key, storage.ErrNotFound,
			errors.New("The specified key does not exist."))
	}

	var r io.Reader = bytes.NewReader(obj.Data)
	if m.BreakAfter > 0 {
		readErr := m.ReadErr
		if readErr == nil {
			readErr = io.ErrUnexpectedEOF
		}
		r = io.MultiReader(io.LimitReader(r, int64(m.BreakAfter)), &failingReader{err: readErr})
	}
	return io.NopCloser(r), nil
}

type failingReader struct {
	err error
}

func (f *failingReader) Read([]byte) (int, error) {
	return 0, f.err
}
