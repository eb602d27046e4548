package source

import (
	"fmt"
	"io"

	"github.com/Melown/libhttp/core/abort"
	"github.com/Melown/libhttp/core/sink"
)

// DefaultBufferSize is the read-buffer size Consume uses unless overridden.
const DefaultBufferSize = 32 * 1024

// ConsumeOption configures a Consume run.
type ConsumeOption func(*consumeConfig)

type consumeConfig struct {
	bufSize int
	signal  *abort.Signal
}

// WithBufferSize sets the size of the buffer used for individual pulls.
func WithBufferSize(n int) ConsumeOption {
	return func(c *consumeConfig) {
		if n > 0 {
			c.bufSize = n
		}
	}
}

// WithAbort makes Consume poll sig between pulls and stop with
// sink.ErrClientAborted once it has fired, so long streams end without
// wasting further reads.
func WithAbort(sig *abort.Signal) ConsumeOption {
	return func(c *consumeConfig) {
		c.signal = sig
	}
}

// Consume pulls src to completion and writes the bytes to w, returning the
// byte count written. Framing follows the declared size, queried exactly
// once before the first read:
//
//   - size N >= 0: exactly N bytes are copied. A zero-byte read before N is
//     a truncated source and fails with io.ErrUnexpectedEOF; reads never
//     request bytes past N even if the source could produce more.
//   - size < 0: pulls continue strictly until a zero-byte read.
//
// Consume does not close src: close discipline belongs to the caller that
// owns the source. Offsets passed to ReadAt are non-decreasing, as the
// protocol requires.
func Consume(w io.Writer, src sink.DataSource, opts ...ConsumeOption) (int64, error) {
	cfg := consumeConfig{bufSize: DefaultBufferSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	size := src.Size()
	buf := make([]byte, cfg.bufSize)
	var written int64

	for {
		if cfg.signal != nil && cfg.signal.Fired() {
			return written, sink.ErrClientAborted
		}

		chunk := buf
		if size >= 0 {
			remaining := size - written
			if remaining == 0 {
				return written, nil
			}
			if remaining < int64(len(chunk)) {
				chunk = chunk[:remaining]
			}
		}

		n, err := src.ReadAt(chunk, written)
		if err != nil {
			return written, fmt.Errorf("read data source %s at offset %d: %w", src.Name(), written, err)
		}
		if n == 0 {
			if size >= 0 {
				return written, fmt.Errorf("data source %s truncated after %d of %d bytes: %w",
					src.Name(), written, size, io.ErrUnexpectedEOF)
			}
			return written, nil
		}

		wn, werr := w.Write(chunk[:n])
		written += int64(wn)
		if werr != nil {
			return written, fmt.Errorf("write response body: %w", werr)
		}
	}
}
