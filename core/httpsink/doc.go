// Package httpsink is the net/http realization of the sink contract: it
// turns terminal operations into wire responses, owns framing and header
// emission, and feeds client disconnects into the abort signal.
//
// # Usage
//
//	h := httpsink.Handle(func(r *http.Request, s *httpsink.Sink) {
//		src, err := source.File("report.pdf", sink.FileInfo{})
//		if err != nil {
//			s.Error(err)
//			return
//		}
//		s.ContentSource(src)
//	}, httpsink.WithLogger(log))
//
//	http.ListenAndServe(":8080", h)
//
// # Framing
//
// Buffer deliveries and listings are always content-length framed; the
// length derives from the payload, never from FileInfo. Streamed deliveries
// follow DataSource.Size: a non-negative size sets Content-Length and
// exactly that many bytes are pulled, a negative size leaves the length
// unset so net/http falls back to chunked transfer and pulls continue until
// a zero-byte read.
//
// # Failure mapping
//
// sink.ErrNotModified answers 304 with an empty body, sink.ErrClientAborted
// commits quietly without a wire response, failures carrying fs.ErrNotExist
// answer 404, and any other failure answers 500 with a diagnostic body.
// Contract violations are logged at error level and never swallowed. A
// DataSource failure after transmission has begun is unrecoverable: the
// connection is torn down via http.ErrAbortHandler.
package httpsink
