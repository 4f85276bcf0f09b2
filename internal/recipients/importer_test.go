package recipients

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingFile hands out its content only after release is closed.
type blockingFile struct {
	name    string
	content string
	opened  chan struct{}
	release chan struct{}
}

func (f *blockingFile) Name() string { return f.name }

func (f *blockingFile) Open() (io.ReadCloser, error) {
	close(f.opened)
	<-f.release
	return io.NopCloser(strings.NewReader(f.content)), nil
}

type failingFile struct{ name string }

func (f failingFile) Name() string { return f.name }

func (f failingFile) Open() (io.ReadCloser, error) {
	return nil, os.ErrPermission
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "list.csv")
	require.NoError(t, os.WriteFile(path, []byte("a@x.com,b@x.com\n"), 0o644))

	text, err := ReadFile(context.Background(), LocalFile(path))
	require.NoError(t, err)
	assert.Equal(t, "a@x.com,b@x.com\n", text)
}

func TestReadFileErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("cancelled", func(t *testing.T) {
		_, err := ReadFile(ctx, nil)
		assert.True(t, IsFileReadError(err))
		assert.ErrorIs(t, err, ErrCancelled)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := ReadFile(ctx, LocalFile("/tmp/list.xlsx"))
		assert.True(t, IsFileReadError(err))
		assert.ErrorIs(t, err, ErrUnsupportedFile)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadFile(ctx, LocalFile(filepath.Join(t.TempDir(), "gone.txt")))
		assert.True(t, IsFileReadError(err))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("open failure", func(t *testing.T) {
		_, err := ReadFile(ctx, failingFile{name: "list.TXT"})
		var readErr *FileReadError
		require.True(t, errors.As(err, &readErr))
		assert.Equal(t, "list.TXT", readErr.Name)
		assert.ErrorIs(t, err, os.ErrPermission)
	})

	t.Run("context done", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := ReadFile(cctx, failingFile{name: "list.txt"})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestImporterSerializesImports(t *testing.T) {
	im := NewImporter()
	slow := &blockingFile{
		name:    "first.txt",
		content: "a@x.com",
		opened:  make(chan struct{}),
		release: make(chan struct{}),
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := im.Import(context.Background(), slow)
		done <- result{text, err}
	}()

	<-slow.opened
	assert.True(t, im.Busy())

	_, err := im.Import(context.Background(), failingFile{name: "second.txt"})
	assert.ErrorIs(t, err, ErrImportInProgress)

	close(slow.release)
	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, "a@x.com", res.text)
	assert.False(t, im.Busy())

	// The importer is usable again once the first import finished.
	_, err = im.Import(context.Background(), failingFile{name: "third.txt"})
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.False(t, im.Busy())
}

func TestAccepted(t *testing.T) {
	assert.True(t, Accepted("emails.txt"))
	assert.True(t, Accepted("EMAILS.CSV"))
	assert.False(t, Accepted("emails"))
	assert.False(t, Accepted("emails.json"))
}
