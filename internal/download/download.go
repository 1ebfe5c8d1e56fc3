// Package download streams one remote object to a local file through a
// fixed-size buffer.
//
// The local file is created (or truncated) only after the remote stream has
// been opened. Nothing is verified against the remote size, and a failed copy
// leaves whatever was written on disk.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"blobtool/internal/models"
	"blobtool/internal/storage"
	"blobtool/pkg/utils"
)

// BufferSize is the number of bytes moved per read.
const BufferSize = 4096

// Request identifies one remote object and where to put it.
type Request struct {
	Container string
	Directory string
	FileName  string

	// Destination is the local directory; empty means the working directory.
	Destination string
}

// RemoteKey is the object key the request resolves to.
func (r Request) RemoteKey() string {
	return storage.Key(r.Directory, r.FileName)
}

// LocalPath is where the object is written.
func (r Request) LocalPath() string {
	if r.Destination == "" {
		return r.FileName
	}
	return filepath.Join(r.Destination, r.FileName)
}

// LocalIOError is a failure writing the local file.
type LocalIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *LocalIOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LocalIOError) Unwrap() error {
	return e.Err
}

// ProgressFunc is called after every write with the running byte count.
type ProgressFunc func(written int64)

type Downloader struct {
	store    storage.Store
	progress ProgressFunc
}

func New(store storage.Store) *Downloader {
	return &Downloader{store: store}
}

// WithProgress sets a callback invoked after each buffer is written.
func (d *Downloader) WithProgress(fn ProgressFunc) *Downloader {
	d.progress = fn
	return d
}

func (d *Downloader) Download(ctx context.Context, req Request) (*models.DownloadResult, error) {
	start := time.Now()
	key := req.RemoteKey()
	localPath := req.LocalPath()

	body, err := d.store.Open(ctx, req.Container, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	file, err := os.Create(localPath)
	if err != nil {
		return nil, &LocalIOError{Op: "create", Path: localPath, Err: err}
	}

	written, sniff, err := d.stream(file, body, req)
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	if err := file.Sync(); err != nil {
		_ = file.Close()
		return nil, &LocalIOError{Op: "flush", Path: localPath, Err: err}
	}
	if err := file.Close(); err != nil {
		return nil, &LocalIOError{Op: "close", Path: localPath, Err: err}
	}

	return &models.DownloadResult{
		Container:        req.Container,
		RemotePath:       key,
		LocalPath:        localPath,
		Size:             written,
		SizeHuman:        utils.FormatBytes(written),
		ContentType:      mimetype.Detect(sniff).String(),
		OperationTime:    utils.FormatTime(start),
		DownloadDuration: time.Since(start).String(),
	}, nil
}

// stream moves src to dst BufferSize bytes at a time until src reports
// io.EOF. It returns the byte count and the first buffer's content for type
// sniffing.
func (d *Downloader) stream(dst io.Writer, src io.Reader, req Request) (int64, []byte, error) {
	buf := make([]byte, BufferSize)
	var sniff []byte
	var written int64

	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if sniff == nil {
				sniff = append([]byte(nil), buf[:n]...)
			}
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return written, sniff, &LocalIOError{Op: "write", Path: req.LocalPath(), Err: werr}
			}
			written += int64(n)
			if d.progress != nil {
				d.progress(written)
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				return written, sniff, nil
			}
			if storage.IsRemote(rerr) {
				return written, sniff, rerr
			}
			return written, sniff, storage.NewError("read", req.Container, req.RemoteKey(), storage.ErrTransport,
				fmt.Errorf("stream broke after %d bytes: %w", written, rerr))
		}
	}
}
