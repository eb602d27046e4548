package sink

import (
	"fmt"
	"time"

	"github.com/Melown/libhttp/core/listing"
)

// FileInfo describes a delivered payload. It never determines the payload's
// length; the emitted length always derives from the buffer or data source.
type FileInfo struct {
	// ContentType is the payload's media type.
	ContentType string

	// LastModified is the modification timestamp. The zero value means "now"
	// and is resolved by the transport at send time.
	LastModified time.Time

	// Expires is the expiration timestamp. The zero value means "never";
	// the transport omits the corresponding header.
	Expires time.Time
}

// DefaultFileInfo returns the metadata used when a handler has nothing more
// specific to say: an octet-stream modified now that never expires.
func DefaultFileInfo() FileInfo {
	return FileInfo{ContentType: "application/octet-stream"}
}

// DataSource is a pull-based byte sequence of known or unknown length,
// exclusively owned by the delivery it is handed to. The transport queries
// Stat and Size once, drives ReadAt with monotonically non-decreasing
// offsets, and calls Close exactly once after the final read or on early
// abort or error.
type DataSource interface {
	// Stat returns the payload metadata. Queried once per delivery.
	Stat() FileInfo

	// Size reports the total byte count. A non-negative value fixes
	// content-length framing: the consumer reads exactly that many bytes
	// regardless of what further reads would return. A negative value means
	// the length is unknown and chunked framing applies: the consumer reads
	// until a zero-byte result. Queried once, before the first read.
	Size() int64

	// ReadAt copies up to len(p) bytes starting at the logical offset off
	// and returns the count copied. Returning 0 with a nil error
	// unambiguously signals end-of-data. Successive calls use non-decreasing
	// offsets. ReadAt may block on external resources; timeout policy
	// belongs to the transport driving the pulls.
	ReadAt(p []byte, off int64) (int, error)

	// Name returns a diagnostic identifier for logs.
	Name() string

	// Close releases any underlying resource. Called exactly once.
	Close() error
}

// Sink is the shared content-delivery contract. Each method is a terminal
// operation: exactly one may succeed per sink instance, and a second terminal
// call fails with a contract violation. Terminal calls must be externally
// serialized; the interface provides no handler-side locking.
type Sink interface {
	// Content delivers a fully materialized payload. The emitted length is
	// always len(data); fi carries no length. The implementation may retain
	// data after the call returns.
	Content(data []byte, fi FileInfo) error

	// ContentNoCopy delivers caller-owned memory without copying. The caller
	// must keep data valid and unmodified until the call returns; the
	// implementation must not access it afterwards.
	ContentNoCopy(data []byte, fi FileInfo) error

	// Error forwards a failure to the client. ErrNotModified maps to a 304
	// with an empty body, ErrClientAborted is a distinct quiet outcome, and
	// any other value yields an error status with a diagnostic body.
	Error(err error) error

	// SeeOther instructs the client to retry the request at url.
	SeeOther(url string) error
}

// ServerSink extends Sink with streaming delivery, directory listings and
// cooperative abort detection. Transports serving requests implement it.
type ServerSink interface {
	Sink

	// ContentSource delivers a payload pulled from src. The sink takes
	// ownership of src and closes it exactly once. Framing follows
	// src.Size; see DataSource.
	ContentSource(src DataSource) error

	// Listing emits a directory listing. Entries are sorted (directories
	// first, then lexicographically by name) before rendering.
	Listing(entries listing.Listing) error

	// CheckAborted polls the request's cancellation signal without blocking.
	// It returns ErrClientAborted once the client has disconnected and nil
	// before that. Long-running handlers call it between units of work.
	CheckAborted() error

	// SetAborter registers fn to be invoked at most once, asynchronously,
	// when the transport observes client disconnection. fn runs on the
	// transport's goroutine and must only signal; it must not touch
	// handler-owned state without the handler's own synchronization.
	// CheckAborted and the callback observe the same underlying signal.
	SetAborter(fn func())
}

// ClientSink extends Sink with the conditional-response short circuit used
// when this process acts as an HTTP client feeding a cache.
type ClientSink interface {
	Sink

	// NotModified reports that content has not changed. Its observable
	// result is identical to Error(ErrNotModified): status 304, empty body.
	NotModified() error
}

// ContentString delivers a string payload through s.
func ContentString(s Sink, data string, fi FileInfo) error {
	return s.Content([]byte(data), fi)
}

// Errorf boxes an arbitrary failure description as an application error and
// forwards it through s.
func Errorf(s Sink, format string, args ...any) error {
	return s.Error(fmt.Errorf(format, args...))
}
