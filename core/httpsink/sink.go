package httpsink

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Melown/libhttp/core/abort"
	"github.com/Melown/libhttp/core/listing"
	"github.com/Melown/libhttp/core/logger"
	"github.com/Melown/libhttp/core/sink"
	"github.com/Melown/libhttp/core/source"
)

// Sink is the net/http realization of the response-production contract. One
// Sink is created per request by Handle; it implements both sink.ServerSink
// and sink.ClientSink.
type Sink struct {
	w   http.ResponseWriter
	r   *http.Request
	log *slog.Logger
	cfg *config

	committer sink.Committer
	signal    *abort.Signal
}

var (
	_ sink.ServerSink = (*Sink)(nil)
	_ sink.ClientSink = (*Sink)(nil)
)

// Request returns the request this sink answers.
func (s *Sink) Request() *http.Request { return s.r }

// Log returns the request-scoped logger.
func (s *Sink) Log() *slog.Logger { return s.log }

// Content delivers a fully materialized payload with content-length framing.
// The emitted length is always len(data); fi carries no length.
func (s *Sink) Content(data []byte, fi sink.FileInfo) error {
	return s.deliver(data, fi, "content")
}

// ContentNoCopy delivers caller-owned memory. The write happens entirely
// within this call; the sink retains no reference to data afterwards, so the
// caller may invalidate the buffer as soon as the call returns.
func (s *Sink) ContentNoCopy(data []byte, fi sink.FileInfo) error {
	return s.deliver(data, fi, "content")
}

func (s *Sink) deliver(data []byte, fi sink.FileInfo, op string) error {
	if err := s.committer.Commit(op); err != nil {
		return s.violation(err)
	}
	s.writeEntityHeaders(fi, int64(len(data)))
	s.w.WriteHeader(http.StatusOK)
	var written int64
	if len(data) > 0 {
		n, err := s.w.Write(data)
		written = int64(n)
		if err != nil {
			s.finish("content", written)
			return err
		}
	}
	s.finish("content", written)
	return nil
}

// ContentSource streams a payload pulled from src. The sink takes ownership
// of src and closes it exactly once. A non-negative src.Size fixes
// content-length framing; a negative size leaves the length unset so net/http
// switches to chunked transfer. A source failure before the first body byte
// is routed through the error path and yields a clean status line; a failure
// after transmission has begun tears the connection down.
func (s *Sink) ContentSource(src sink.DataSource) error {
	if err := s.committer.Commit("content_source"); err != nil {
		src.Close()
		return s.violation(err)
	}
	defer src.Close()

	fi := src.Stat()
	size := src.Size()
	s.writeEntityHeaders(fi, size)

	s.cfg.metrics.streamStarted()
	defer s.cfg.metrics.streamDone()

	// Headers are flushed lazily by net/http on the first body write, so a
	// failure before any byte still gets a clean status line.
	written, err := source.Consume(s.w, src,
		source.WithBufferSize(s.cfg.bufSize),
		source.WithAbort(s.signal),
	)
	switch {
	case err == nil:
		if written == 0 {
			// Empty body: force the header flush Write never triggered.
			s.w.WriteHeader(http.StatusOK)
		}
		s.finish("content", written)
		return nil

	case errors.Is(err, sink.ErrClientAborted):
		s.log.Debug("response streaming aborted by client",
			logger.Source(src.Name()), logger.Bytes(written))
		s.finish("aborted", written)
		return sink.ErrClientAborted

	case written == 0:
		// Nothing transmitted yet: recoverable into a clean error status.
		s.resetEntityHeaders()
		s.emitError(err)
		return err

	default:
		// Mid-transmission failure is unrecoverable for this response; tear
		// the connection down rather than buffer or retry.
		s.log.Error("response streaming failed mid-transmission",
			logger.Error(err), logger.Source(src.Name()), logger.Bytes(written))
		s.finish("stream_failure", written)
		panic(http.ErrAbortHandler)
	}
}

// Error forwards a failure to the client. See sink.Classify for the status
// mapping. A nil err is boxed as a generic application failure.
func (s *Sink) Error(err error) error {
	if err == nil {
		err = errors.New("unspecified failure")
	}
	if cerr := s.committer.Commit("error"); cerr != nil {
		return s.violation(cerr)
	}
	s.emitError(err)
	return nil
}

// SeeOther instructs the client to retry the request at url with 303 See
// Other.
func (s *Sink) SeeOther(url string) error {
	if err := s.committer.Commit("see_other"); err != nil {
		return s.violation(err)
	}
	http.Redirect(s.w, s.r, url, http.StatusSeeOther)
	s.finish("redirect", 0)
	return nil
}

// Listing sorts entries (directories first, then names) and delivers them
// through the configured ListingRenderer. The listing is rendered up front
// so the response is content-length framed and render failures still get a
// clean status line.
func (s *Sink) Listing(entries listing.Listing) error {
	if err := s.committer.Commit("listing"); err != nil {
		return s.violation(err)
	}

	sorted := entries.Sorted()
	var buf bytes.Buffer
	if err := s.cfg.renderer.Render(&buf, sorted); err != nil {
		s.emitError(err)
		return err
	}

	s.writeEntityHeaders(sink.FileInfo{ContentType: s.cfg.renderer.ContentType()}, int64(buf.Len()))
	s.w.WriteHeader(http.StatusOK)
	n, err := s.w.Write(buf.Bytes())
	s.finish("listing", int64(n))
	return err
}

// NotModified reports unchanged content. It shares the error machinery with
// Error(sink.ErrNotModified) so both produce the identical 304/empty-body
// result.
func (s *Sink) NotModified() error {
	if err := s.committer.Commit("not_modified"); err != nil {
		return s.violation(err)
	}
	s.emitError(sink.ErrNotModified)
	return nil
}

// CheckAborted polls the disconnect signal, returning sink.ErrClientAborted
// once it has fired. Never blocks.
func (s *Sink) CheckAborted() error {
	return s.signal.Err()
}

// SetAborter registers fn with the disconnect signal. fn is invoked at most
// once, from the transport's watcher goroutine, the moment client
// disconnection is observed; registering after the fact invokes it
// immediately.
func (s *Sink) SetAborter(fn func()) {
	s.signal.Subscribe(fn)
}

// emitError writes the wire form of a classified failure. Callers must have
// committed the sink already.
func (s *Sink) emitError(err error) {
	switch sink.Classify(err) {
	case sink.KindNotModified:
		s.resetEntityHeaders()
		s.w.WriteHeader(http.StatusNotModified)
		s.finish("not_modified", 0)

	case sink.KindClientAborted:
		// Not an application fault; nothing to transmit, nothing to log
		// above debug.
		s.log.Debug("request aborted by client")
		s.finish("aborted", 0)

	case sink.KindContractViolation:
		s.log.Error("contract violation forwarded as response failure", logger.Error(err))
		http.Error(s.w, "internal server error", http.StatusInternalServerError)
		s.finish("contract_violation", 0)

	default:
		// Missing entities are the one application failure with a better
		// status than 500; everything else stays unmapped.
		if errors.Is(err, fs.ErrNotExist) {
			s.log.Debug("requested entity not found", logger.Error(err))
			http.Error(s.w, err.Error(), http.StatusNotFound)
			s.finish("not_found", 0)
			return
		}
		s.log.Error("request failed", logger.Error(err))
		http.Error(s.w, err.Error(), http.StatusInternalServerError)
		s.finish("error", 0)
	}
}

// violation reports an attempted second terminal operation. It is never
// silently ignored: the diagnostic channel gets an error-level record and the
// caller gets the violation back.
func (s *Sink) violation(err error) error {
	s.log.Error("sink contract violation", logger.Error(err), logger.Outcome(s.committer.Op()))
	s.cfg.metrics.observe("contract_violation")
	return err
}

func (s *Sink) finish(outcome string, written int64) {
	s.cfg.metrics.observe(outcome)
	s.cfg.metrics.addBytes(written)
}

// writeEntityHeaders maps FileInfo to response headers. A negative length
// leaves Content-Length unset, selecting chunked transfer.
func (s *Sink) writeEntityHeaders(fi sink.FileInfo, length int64) {
	h := s.w.Header()
	ct := fi.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	lm := fi.LastModified
	if lm.IsZero() {
		lm = time.Now()
	}
	h.Set("Last-Modified", lm.UTC().Format(http.TimeFormat))

	if !fi.Expires.IsZero() {
		h.Set("Expires", fi.Expires.UTC().Format(http.TimeFormat))
	}
	if length >= 0 {
		h.Set("Content-Length", strconv.FormatInt(length, 10))
	}
}

func (s *Sink) resetEntityHeaders() {
	h := s.w.Header()
	h.Del("Content-Type")
	h.Del("Content-Length")
	h.Del("Last-Modified")
	h.Del("Expires")
}
