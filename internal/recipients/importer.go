package recipients

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/atomic"
)

// AcceptedExtensions lists the file types offered by the import picker.
// Both are read as plain line-oriented text.
var AcceptedExtensions = []string{".txt", ".csv"}

// FileHandle is a file chosen through the platform file picker.
type FileHandle interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// LocalFile is a FileHandle backed by a path on the local filesystem.
type LocalFile string

// Name returns the base name of the file.
func (f LocalFile) Name() string {
	return filepath.Base(string(f))
}

// Open opens the file for reading.
func (f LocalFile) Open() (io.ReadCloser, error) {
	return os.Open(string(f))
}

// Accepted reports whether name carries one of AcceptedExtensions.
func Accepted(name string) bool {
	return slices.Contains(AcceptedExtensions, strings.ToLower(filepath.Ext(name)))
}

// ReadFile reads the entire contents of h as text. A nil handle means the
// user dismissed the picker. Every failure, cancellation included, is
// returned as a *FileReadError.
func ReadFile(ctx context.Context, h FileHandle) (string, error) {
	if h == nil {
		return "", &FileReadError{Err: ErrCancelled}
	}

	name := h.Name()
	if !Accepted(name) {
		return "", &FileReadError{Name: name, Err: ErrUnsupportedFile}
	}
	if err := ctx.Err(); err != nil {
		return "", &FileReadError{Name: name, Err: err}
	}

	rc, err := h.Open()
	if err != nil {
		return "", &FileReadError{Name: name, Err: err}
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", &FileReadError{Name: name, Err: err}
	}

	return string(data), nil
}

// Importer serializes file imports for one editor. While an import is
// outstanding, further requests are rejected rather than queued so that a
// late read can never overwrite newer state.
type Importer struct {
	busy *atomic.Bool
}

// NewImporter creates an idle Importer.
func NewImporter() *Importer {
	return &Importer{busy: atomic.NewBool(false)}
}

// Busy reports whether an import is currently running.
func (im *Importer) Busy() bool {
	return im.busy.Load()
}

// Import reads h like ReadFile. It returns ErrImportInProgress without
// touching h when another import has not completed.
func (im *Importer) Import(ctx context.Context, h FileHandle) (string, error) {
	if !im.busy.CompareAndSwap(false, true) {
		return "", ErrImportInProgress
	}
	defer im.busy.Store(false)

	text, err := ReadFile(ctx, h)
	if err != nil {
		slog.WarnContext(ctx, "recipient import failed", "error", err)
		return "", err
	}

	return text, nil
}
