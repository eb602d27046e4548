package httpsink

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/Melown/libhttp/core/abort"
	"github.com/Melown/libhttp/core/logger"
	"github.com/Melown/libhttp/core/source"
)

// Handler produces exactly one response outcome on the sink it receives.
type Handler func(r *http.Request, s *Sink)

// Option configures the transport created by Handle.
type Option func(*config)

type config struct {
	log      *slog.Logger
	metrics  *Metrics
	renderer ListingRenderer
	bufSize  int
}

// WithLogger sets the diagnostic logger. Defaults to a no-op logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}

// WithMetrics enables Prometheus reporting for committed responses.
func WithMetrics(m *Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithListingRenderer overrides the listing encoding. Defaults to
// HTMLRenderer.
func WithListingRenderer(r ListingRenderer) Option {
	return func(c *config) {
		if r != nil {
			c.renderer = r
		}
	}
}

// WithStreamBufferSize sets the pull-buffer size for DataSource deliveries.
func WithStreamBufferSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.bufSize = n
		}
	}
}

// Handle adapts a sink Handler to net/http. Each request gets a fresh Sink
// with a request-scoped logger and an abort signal fed by the request
// context, which net/http cancels when the client disconnects.
//
// A handler that returns without committing any terminal operation gets an
// internal-error response emitted on its behalf; a panicking handler is
// routed through the error path when the sink is still open.
func Handle(h Handler, opts ...Option) http.Handler {
	cfg := &config{
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		renderer: HTMLRenderer{},
		bufSize:  source.DefaultBufferSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := &Sink{
			w:      w,
			r:      r,
			log:    cfg.log.With(logger.Component("httpsink"), logger.RequestID(uuid.NewString())),
			cfg:    cfg,
			signal: abort.New(),
		}

		finished := make(chan struct{})
		defer close(finished)
		go func() {
			select {
			case <-r.Context().Done():
				s.signal.Trigger()
			case <-finished:
			}
		}()

		defer func() {
			if v := recover(); v != nil {
				if err, ok := v.(error); ok && err == http.ErrAbortHandler {
					panic(v)
				}
				if s.committer.Committed() {
					s.log.Error("handler panicked after committing a response",
						slog.Any("panic", v), logger.Outcome(s.committer.Op()))
					return
				}
				s.Error(fmt.Errorf("handler panic: %v", v))
				return
			}
			if !s.committer.Committed() {
				s.log.Error("handler returned without producing a response")
				s.Error(fmt.Errorf("handler produced no response"))
			}
		}()

		h(r, s)
	})
}
