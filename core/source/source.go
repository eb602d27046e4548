package source

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/Melown/libhttp/core/sink"
)

// Option customizes a source created by this package.
type Option func(*options)

type options struct {
	name string
}

// WithName sets the diagnostic name reported by DataSource.Name.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func applyOptions(name string, opts []Option) options {
	o := options{name: name}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Bytes returns a DataSource over an in-memory buffer. Its size is known, so
// the transport uses content-length framing. The buffer is not copied; the
// caller must not mutate it while the source is being consumed.
func Bytes(data []byte, fi sink.FileInfo, opts ...Option) sink.DataSource {
	return &bytesSource{
		data: data,
		fi:   fi,
		opts: applyOptions("memory", opts),
	}
}

type bytesSource struct {
	data []byte
	fi   sink.FileInfo
	opts options
}

func (s *bytesSource) Stat() sink.FileInfo { return s.fi }

func (s *bytesSource) Size() int64 { return int64(len(s.data)) }

func (s *bytesSource) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(s.data)) {
		return 0, nil
	}
	return copy(p, s.data[off:]), nil
}

func (s *bytesSource) Name() string { return s.opts.name }

func (s *bytesSource) Close() error { return nil }

// File opens path and returns a DataSource over its contents. The size is
// fixed by fstat at open time. When fi.ContentType is empty it is derived
// from the file extension, and the zero LastModified resolves to the file's
// modification time rather than send time.
func File(path string, fi sink.FileInfo, opts ...Option) (sink.DataSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data source: %w", err)
	}
	src, err := Open(f, fi, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	return src, nil
}

// Open wraps an already opened file as a DataSource. The source takes
// ownership of f and closes it when the transport is done.
func Open(f *os.File, fi sink.FileInfo, opts ...Option) (sink.DataSource, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat data source: %w", err)
	}
	if fi.ContentType == "" {
		fi.ContentType = mime.TypeByExtension(filepath.Ext(f.Name()))
		if fi.ContentType == "" {
			fi.ContentType = "application/octet-stream"
		}
	}
	if fi.LastModified.IsZero() {
		fi.LastModified = info.ModTime()
	}
	return &fileSource{
		f:    f,
		size: info.Size(),
		fi:   fi,
		opts: applyOptions(f.Name(), opts),
	}, nil
}

type fileSource struct {
	f    *os.File
	size int64
	fi   sink.FileInfo
	opts options
}

func (s *fileSource) Stat() sink.FileInfo { return s.fi }

func (s *fileSource) Size() int64 { return s.size }

func (s *fileSource) ReadAt(p []byte, off int64) (int, error) {
	n, err := s.f.ReadAt(p, off)
	if err == io.EOF {
		// End-of-data is signalled by a zero-byte read, not an error.
		if n > 0 {
			return n, nil
		}
		return 0, nil
	}
	return n, err
}

func (s *fileSource) Name() string { return s.opts.name }

func (s *fileSource) Close() error { return s.f.Close() }

// Reader adapts a sequential stream of unknown length, so the transport
// falls back to chunked framing and drains it until a zero-byte read. If r
// is an io.Closer it is closed with the source. Offsets must not decrease;
// gaps are skipped by discarding the intervening bytes.
func Reader(r io.Reader, fi sink.FileInfo, opts ...Option) sink.DataSource {
	return &readerSource{
		r:    r,
		fi:   fi,
		opts: applyOptions("stream", opts),
	}
}

type readerSource struct {
	r    io.Reader
	fi   sink.FileInfo
	off  int64
	done bool
	opts options
}

func (s *readerSource) Stat() sink.FileInfo { return s.fi }

func (s *readerSource) Size() int64 { return -1 }

func (s *readerSource) ReadAt(p []byte, off int64) (int, error) {
	if off < s.off {
		return 0, fmt.Errorf("data source %s: offset moved backwards (%d after %d)", s.Name(), off, s.off)
	}
	if s.done {
		return 0, nil
	}
	if off > s.off {
		skipped, err := io.CopyN(io.Discard, s.r, off-s.off)
		s.off += skipped
		if err == io.EOF {
			s.done = true
			return 0, nil
		}
		if err != nil {
			return 0, err
		}
	}
	for {
		n, err := s.r.Read(p)
		s.off += int64(n)
		if err == io.EOF {
			s.done = true
			if n > 0 {
				return n, nil
			}
			return 0, nil
		}
		if err != nil {
			return n, err
		}
		if n > 0 {
			return n, nil
		}
		// Zero-byte read with nil error from the underlying reader: retry,
		// a zero return from this source would mean end-of-data.
	}
}

func (s *readerSource) Name() string { return s.opts.name }

func (s *readerSource) Close() error {
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
