// Package sinktest provides an in-memory sink implementation for handler
// tests, in the spirit of httptest: handlers run against a Recorder instead
// of a live transport and tests inspect the single committed outcome.
package sinktest

import (
	"bytes"
	"errors"

	"github.com/Melown/libhttp/core/abort"
	"github.com/Melown/libhttp/core/listing"
	"github.com/Melown/libhttp/core/sink"
	"github.com/Melown/libhttp/core/source"
)

// Outcome names the terminal operation that committed a Recorder.
type Outcome string

const (
	OutcomeNone        Outcome = ""
	OutcomeContent     Outcome = "content"
	OutcomeError       Outcome = "error"
	OutcomeRedirect    Outcome = "redirect"
	OutcomeListing     Outcome = "listing"
	OutcomeNotModified Outcome = "not_modified"
	OutcomeAborted     Outcome = "aborted"
)

// Recorder implements sink.ServerSink and sink.ClientSink entirely in
// memory. It enforces the same single-terminal-call contract as a live
// transport and records what the handler delivered.
type Recorder struct {
	committer sink.Committer
	signal    *abort.Signal

	outcome      Outcome
	body         []byte
	bodyLen      int64
	fi           sink.FileInfo
	redirectURL  string
	entries      listing.Listing
	err          error
	chunked      bool
	sourceName   string
	sourceClosed bool
}

var (
	_ sink.ServerSink = (*Recorder)(nil)
	_ sink.ClientSink = (*Recorder)(nil)
)

// NewRecorder returns an open recorder with an unfired abort signal.
func NewRecorder() *Recorder {
	return &Recorder{signal: abort.New()}
}

// Content records a copy of data. Content-length framing is implied.
func (r *Recorder) Content(data []byte, fi sink.FileInfo) error {
	if err := r.committer.Commit("content"); err != nil {
		return err
	}
	r.outcome = OutcomeContent
	r.body = bytes.Clone(data)
	r.bodyLen = int64(len(data))
	r.fi = fi
	return nil
}

// ContentNoCopy honors the borrow rule: only the length is recorded and no
// reference to data survives the call, so lifetime tests may invalidate the
// buffer immediately after return.
func (r *Recorder) ContentNoCopy(data []byte, fi sink.FileInfo) error {
	if err := r.committer.Commit("content"); err != nil {
		return err
	}
	r.outcome = OutcomeContent
	r.bodyLen = int64(len(data))
	r.fi = fi
	return nil
}

// ContentSource consumes src through the shared pull loop, recording the
// bytes, the framing decision and whether the source got closed.
func (r *Recorder) ContentSource(src sink.DataSource) error {
	if err := r.committer.Commit("content_source"); err != nil {
		src.Close()
		r.sourceClosed = true
		return err
	}
	defer func() {
		src.Close()
		r.sourceClosed = true
	}()

	r.fi = src.Stat()
	r.chunked = src.Size() < 0
	r.sourceName = src.Name()

	var buf bytes.Buffer
	written, err := source.Consume(&buf, src, source.WithAbort(r.signal))
	r.body = buf.Bytes()
	r.bodyLen = written
	if err != nil {
		r.err = err
		if errors.Is(err, sink.ErrClientAborted) {
			r.outcome = OutcomeAborted
		} else {
			r.outcome = OutcomeError
		}
		return err
	}
	r.outcome = OutcomeContent
	return nil
}

// Error records a forwarded failure, classified the same way a live
// transport classifies it.
func (r *Recorder) Error(err error) error {
	if err == nil {
		err = errors.New("unspecified failure")
	}
	if cerr := r.committer.Commit("error"); cerr != nil {
		return cerr
	}
	r.err = err
	switch sink.Classify(err) {
	case sink.KindNotModified:
		r.outcome = OutcomeNotModified
	case sink.KindClientAborted:
		r.outcome = OutcomeAborted
	default:
		r.outcome = OutcomeError
	}
	return nil
}

// SeeOther records a redirect.
func (r *Recorder) SeeOther(url string) error {
	if err := r.committer.Commit("see_other"); err != nil {
		return err
	}
	r.outcome = OutcomeRedirect
	r.redirectURL = url
	return nil
}

// Listing records the sorted listing.
func (r *Recorder) Listing(entries listing.Listing) error {
	if err := r.committer.Commit("listing"); err != nil {
		return err
	}
	r.outcome = OutcomeListing
	r.entries = entries.Sorted()
	return nil
}

// NotModified is the default realization: identical to
// Error(sink.ErrNotModified).
func (r *Recorder) NotModified() error {
	return r.Error(sink.ErrNotModified)
}

// CheckAborted polls the recorder's abort signal.
func (r *Recorder) CheckAborted() error {
	return r.signal.Err()
}

// SetAborter subscribes fn to the recorder's abort signal.
func (r *Recorder) SetAborter(fn func()) {
	r.signal.Subscribe(fn)
}

// Abort fires the abort signal, simulating a client disconnect.
func (r *Recorder) Abort() {
	r.signal.Trigger()
}

// Committed reports whether a terminal operation has succeeded.
func (r *Recorder) Committed() bool { return r.committer.Committed() }

// Outcome returns the committed outcome, or OutcomeNone while open.
func (r *Recorder) Outcome() Outcome { return r.outcome }

// Body returns the recorded body bytes. Nil for borrow deliveries.
func (r *Recorder) Body() []byte { return r.body }

// BodyLen returns the emitted body length.
func (r *Recorder) BodyLen() int64 { return r.bodyLen }

// FileInfo returns the delivered metadata.
func (r *Recorder) FileInfo() sink.FileInfo { return r.fi }

// RedirectURL returns the recorded redirect target.
func (r *Recorder) RedirectURL() string { return r.redirectURL }

// Entries returns the sorted listing as handed to the renderer.
func (r *Recorder) Entries() listing.Listing { return r.entries }

// Err returns the forwarded failure, if any.
func (r *Recorder) Err() error { return r.err }

// Chunked reports whether the consumed source selected chunked framing.
func (r *Recorder) Chunked() bool { return r.chunked }

// SourceClosed reports whether the consumed source was closed.
func (r *Recorder) SourceClosed() bool { return r.sourceClosed }

// SourceName returns the diagnostic name of the consumed source.
func (r *Recorder) SourceName() string { return r.sourceName }
