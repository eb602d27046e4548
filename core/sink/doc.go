// Package sink defines the response-production contract between request
// handlers and the transport that serializes responses to the wire.
//
// A transport creates one sink per in-flight request and hands it to the
// handler. The handler invokes exactly one terminal operation on it: Content,
// ContentSource, Error, SeeOther, Listing or NotModified. The first terminal
// call commits the sink; any later terminal call is a contract violation and
// is reported, never silently ignored.
//
// The package is transport-agnostic: it fixes the semantics (framing
// selection, buffer lifetime, error taxonomy, cancellation observability)
// while concrete transports own wire serialization. See the httpsink package
// for the net/http realization and sinktest for an in-memory test double.
//
// # Terminal operations
//
//	func hello(r *http.Request, s *httpsink.Sink) {
//		s.Content([]byte("hello"), sink.FileInfo{ContentType: "text/plain"})
//	}
//
// # Data sources
//
// Large or lazily produced bodies are delivered through DataSource, a
// pull-based abstraction consumed by the transport. DataSource.Size decides
// framing once, before the first read: a non-negative size fixes
// content-length framing and exactly that many bytes are consumed; a negative
// size selects chunked framing and consumption continues until a zero-byte
// read.
//
// # Cancellation
//
// Client disconnects surface through two views of one trigger-once signal:
// CheckAborted for polling between units of work, and SetAborter for an
// asynchronous callback. Both observe the same underlying event.
package sink
