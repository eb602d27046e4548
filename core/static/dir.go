// Package static serves a directory tree through the sink contract: files
// become streamed deliveries, directories become listings, missing paths go
// through the error path, and conditional requests short-circuit with the
// not-modified outcome.
package static

import (
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/Melown/libhttp/core/httpsink"
	"github.com/Melown/libhttp/core/listing"
	"github.com/Melown/libhttp/core/sink"
	"github.com/Melown/libhttp/core/source"
)

type dirConfig struct {
	root        string
	stripPrefix string
	indexFile   string
	listings    bool
	notFound    httpsink.Handler
}

// DirOption configures directory serving behavior.
type DirOption func(*dirConfig)

// WithStripPrefix removes the given prefix from the URL path before
// resolving it against the root, for handlers mounted under a route prefix.
func WithStripPrefix(prefix string) DirOption {
	return func(c *dirConfig) {
		c.stripPrefix = prefix
	}
}

// WithIndexFile serves the named file instead of a listing when a directory
// contains it.
func WithIndexFile(name string) DirOption {
	return func(c *dirConfig) {
		c.indexFile = name
	}
}

// WithListings enables directory listings. Disabled by default; a directory
// without an index file then answers through the error path.
func WithListings() DirOption {
	return func(c *dirConfig) {
		c.listings = true
	}
}

// WithNotFound sets a custom handler for missing paths, for custom 404 pages
// or fallback behavior. Without it, missing paths go through the sink's
// error path and answer 404.
func WithNotFound(h httpsink.Handler) DirOption {
	return func(c *dirConfig) {
		c.notFound = h
	}
}

// Dir creates a handler that serves files from a directory tree.
// Panics at startup if the directory doesn't exist.
func Dir(root string, opts ...DirOption) httpsink.Handler {
	cfg := &dirConfig{root: filepath.Clean(root)}
	for _, opt := range opts {
		opt(cfg)
	}

	info, err := os.Stat(cfg.root)
	if err != nil {
		if os.IsNotExist(err) {
			panic("static.Dir: directory does not exist: " + cfg.root)
		}
		panic("static.Dir: error accessing directory: " + err.Error())
	}
	if !info.IsDir() {
		panic("static.Dir: path is not a directory: " + cfg.root)
	}

	return func(r *http.Request, s *httpsink.Sink) {
		urlPath := path.Clean("/" + strings.TrimPrefix(r.URL.Path, cfg.stripPrefix))
		full := filepath.Join(cfg.root, filepath.FromSlash(strings.TrimPrefix(urlPath, "/")))

		// Clean plus Join keeps the path under root; verify anyway so a
		// future refactor cannot silently reopen traversal.
		if full != cfg.root && !strings.HasPrefix(full, cfg.root+string(filepath.Separator)) {
			s.Error(fmt.Errorf("path %q escapes serving root", urlPath))
			return
		}

		info, err := os.Stat(full)
		if err != nil {
			if cfg.notFound != nil && os.IsNotExist(err) {
				cfg.notFound(r, s)
				return
			}
			s.Error(fmt.Errorf("stat %q: %w", urlPath, err))
			return
		}

		if info.IsDir() {
			serveDir(cfg, r, s, urlPath, full)
			return
		}
		serveFile(r, s, full, info)
	}
}

func serveDir(cfg *dirConfig, r *http.Request, s *httpsink.Sink, urlPath, full string) {
	// Directory URLs are canonical with a trailing slash so relative links
	// in listings resolve. The redirect keeps the original mount prefix so
	// the client stays inside the handler's route.
	if !strings.HasSuffix(r.URL.Path, "/") {
		s.SeeOther(path.Clean(r.URL.Path) + "/")
		return
	}

	if cfg.indexFile != "" {
		index := filepath.Join(full, cfg.indexFile)
		if info, err := os.Stat(index); err == nil && !info.IsDir() {
			serveFile(r, s, index, info)
			return
		}
	}

	if !cfg.listings {
		// Hide index-less directories rather than reveal their existence.
		s.Error(fmt.Errorf("listing disabled for %q: %w", urlPath, fs.ErrNotExist))
		return
	}

	dirents, err := os.ReadDir(full)
	if err != nil {
		s.Error(fmt.Errorf("read dir %q: %w", urlPath, err))
		return
	}
	entries := make(listing.Listing, 0, len(dirents))
	for _, de := range dirents {
		kind := listing.File
		if de.IsDir() {
			kind = listing.Dir
		}
		entries = append(entries, listing.Entry{Name: de.Name(), Kind: kind})
	}
	s.Listing(entries)
}

func serveFile(r *http.Request, s *httpsink.Sink, full string, info os.FileInfo) {
	if notModifiedSince(r, info.ModTime()) {
		s.Error(sink.ErrNotModified)
		return
	}

	src, err := source.File(full, sink.FileInfo{})
	if err != nil {
		s.Error(err)
		return
	}
	s.ContentSource(src)
}

// notModifiedSince implements the If-Modified-Since check. Header time has
// second precision, so the modification time is truncated before comparing.
func notModifiedSince(r *http.Request, modTime time.Time) bool {
	ims := r.Header.Get("If-Modified-Since")
	if ims == "" {
		return false
	}
	t, err := http.ParseTime(ims)
	if err != nil {
		return false
	}
	return !modTime.Truncate(time.Second).After(t)
}
