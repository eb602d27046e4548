package source_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Melown/libhttp/core/sink"
	"github.com/Melown/libhttp/core/source"
)

func TestBytes(t *testing.T) {
	t.Parallel()

	t.Run("known_size", func(t *testing.T) {
		t.Parallel()

		src := source.Bytes([]byte("hello world"), sink.FileInfo{ContentType: "text/plain"})
		assert.Equal(t, int64(11), src.Size())
		assert.Equal(t, "text/plain", src.Stat().ContentType)
		assert.Equal(t, "memory", src.Name())
		require.NoError(t, src.Close())
	})

	t.Run("reads_at_offsets", func(t *testing.T) {
		t.Parallel()

		src := source.Bytes([]byte("hello world"), sink.FileInfo{})
		buf := make([]byte, 5)

		n, err := src.ReadAt(buf, 0)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.Equal(t, "hello", string(buf[:n]))

		n, err = src.ReadAt(buf, 6)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.Equal(t, "world", string(buf[:n]))
	})

	t.Run("zero_read_at_end", func(t *testing.T) {
		t.Parallel()

		src := source.Bytes([]byte("abc"), sink.FileInfo{})
		buf := make([]byte, 4)

		n, err := src.ReadAt(buf, 3)
		require.NoError(t, err)
		assert.Zero(t, n)

		n, err = src.ReadAt(buf, 100)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("with_name", func(t *testing.T) {
		t.Parallel()

		src := source.Bytes(nil, sink.FileInfo{}, source.WithName("cached-index"))
		assert.Equal(t, "cached-index", src.Name())
	})

	t.Run("empty_buffer", func(t *testing.T) {
		t.Parallel()

		src := source.Bytes(nil, sink.FileInfo{})
		assert.Zero(t, src.Size())
	})
}

func TestFile(t *testing.T) {
	t.Parallel()

	t.Run("size_and_metadata_from_fstat", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "page.html")
		require.NoError(t, os.WriteFile(path, []byte("<html></html>"), 0o644))

		src, err := source.File(path, sink.FileInfo{})
		require.NoError(t, err)
		defer src.Close()

		assert.Equal(t, int64(13), src.Size())
		assert.Contains(t, src.Stat().ContentType, "text/html")
		assert.False(t, src.Stat().LastModified.IsZero())
		assert.WithinDuration(t, time.Now(), src.Stat().LastModified, time.Minute)
	})

	t.Run("explicit_metadata_wins", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "data.bin")
		require.NoError(t, os.WriteFile(path, []byte("xyz"), 0o644))

		modified := time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)
		src, err := source.File(path, sink.FileInfo{
			ContentType:  "application/x-custom",
			LastModified: modified,
		})
		require.NoError(t, err)
		defer src.Close()

		assert.Equal(t, "application/x-custom", src.Stat().ContentType)
		assert.Equal(t, modified, src.Stat().LastModified)
	})

	t.Run("unknown_extension_is_octet_stream", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "blob.zzz-unknown")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

		src, err := source.File(path, sink.FileInfo{})
		require.NoError(t, err)
		defer src.Close()

		assert.Equal(t, "application/octet-stream", src.Stat().ContentType)
	})

	t.Run("end_of_file_is_zero_read", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "short.txt")
		require.NoError(t, os.WriteFile(path, []byte("ab"), 0o644))

		src, err := source.File(path, sink.FileInfo{})
		require.NoError(t, err)
		defer src.Close()

		buf := make([]byte, 8)
		n, err := src.ReadAt(buf, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = src.ReadAt(buf, 2)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("missing_file", func(t *testing.T) {
		t.Parallel()

		_, err := source.File(filepath.Join(t.TempDir(), "absent"), sink.FileInfo{})
		require.Error(t, err)
	})
}

func TestReader(t *testing.T) {
	t.Parallel()

	t.Run("unknown_size", func(t *testing.T) {
		t.Parallel()

		src := source.Reader(strings.NewReader("streamed"), sink.FileInfo{})
		assert.Negative(t, src.Size())
		assert.Equal(t, "stream", src.Name())
	})

	t.Run("sequential_reads_until_zero", func(t *testing.T) {
		t.Parallel()

		src := source.Reader(strings.NewReader("streamed data"), sink.FileInfo{})
		var got []byte
		buf := make([]byte, 4)
		var off int64
		for {
			n, err := src.ReadAt(buf, off)
			require.NoError(t, err)
			if n == 0 {
				break
			}
			got = append(got, buf[:n]...)
			off += int64(n)
		}
		assert.Equal(t, "streamed data", string(got))
	})

	t.Run("offset_regression_rejected", func(t *testing.T) {
		t.Parallel()

		src := source.Reader(strings.NewReader("abcdef"), sink.FileInfo{})
		buf := make([]byte, 3)

		n, err := src.ReadAt(buf, 0)
		require.NoError(t, err)
		require.Equal(t, 3, n)

		_, err = src.ReadAt(buf, 1)
		require.Error(t, err)
	})

	t.Run("gap_skips_forward", func(t *testing.T) {
		t.Parallel()

		src := source.Reader(strings.NewReader("abcdef"), sink.FileInfo{})
		buf := make([]byte, 3)

		n, err := src.ReadAt(buf, 3)
		require.NoError(t, err)
		assert.Equal(t, "def", string(buf[:n]))
	})

	t.Run("closes_underlying_closer", func(t *testing.T) {
		t.Parallel()

		rc := &closeTracker{Reader: strings.NewReader("x")}
		src := source.Reader(rc, sink.FileInfo{})
		require.NoError(t, src.Close())
		assert.True(t, rc.closed)
	})
}

type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestSourceRoundTrip(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte("0123456789"), 1000)
	src := source.Bytes(payload, sink.FileInfo{})

	var out bytes.Buffer
	n, err := source.Consume(&out, src, source.WithBufferSize(64))
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)
	assert.Equal(t, payload, out.Bytes())
}
