package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"time"

	"github.com/jjfont/jjfont/core"
	"golang.org/x/net/netutil"
)

// Requester delivers resolution tables, resolving them on demand.
type Requester interface {
	Request(ctx context.Context, name string) ([]byte, time.Time, error)
}

// Handler serves resolution tables.
type Handler struct {
	pattern *regexp.Regexp
	tables  Requester
}

// NewHandler creates a handler for request paths matching pattern. The
// first sub-match of pattern is the font name.
func NewHandler(tables Requester, pattern string) (*Handler, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "invalid font pattern %q", pattern)
	}
	if re.NumSubexp() < 1 {
		return nil, core.Error(core.EINVALID, "font pattern %q has no sub-match for the font name", pattern)
	}
	return &Handler{pattern: re, tables: tables}, nil
}

func setCORS(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET")
	h.Set("Access-Control-Allow-Headers", "Date, Etag, Content-Type, Content-Length")
	h.Set("Access-Control-Max-Age", "86400")
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	m := h.pattern.FindStringSubmatch(r.URL.Path)
	if m == nil {
		tracer().Debugf("refusing %s", r.URL.Path)
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	name := m[1]
	data, mtime, err := h.tables.Request(r.Context(), name)
	if err != nil {
		if !core.Is(err, core.EMISSING) {
			tracer().Errorf("cannot serve table for font %s: %v", name, err)
		}
		notFound(w, r)
		return
	}
	header := w.Header()
	setCORS(header)
	header.Set("Content-Type", "application/json; charset=utf-8")
	header.Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, name+".json", mtime, bytes.NewReader(data))
}

const notFoundPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>404 Not Found</title></head>
<body><h1>Not Found</h1><p>The font table is not available yet. Please try again later.</p></body>
</html>
`

func notFound(w http.ResponseWriter, r *http.Request) {
	header := w.Header()
	setCORS(header)
	header.Set("Cache-Control", "public, max-age=600")
	header.Set("Content-Type", "text/html; charset=utf-8")
	header.Set("Content-Length", fmt.Sprint(len(notFoundPage)))
	w.WriteHeader(http.StatusNotFound)
	if r.Method != http.MethodHead {
		fmt.Fprint(w, notFoundPage)
	}
}

// logged wraps a handler with request tracing.
func logged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		tracer().Infof("%s %s %s %d %s", r.RemoteAddr, r.Method, r.URL.Path, rec.status,
			time.Since(start).Round(time.Millisecond))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// Config holds the settings of a server.
type Config struct {
	Addr        string // host:port to listen on
	Connections int    // concurrent connections; 0 for no limit
}

// ListenAndServe serves h until ctx is done, then shuts down gracefully.
func ListenAndServe(ctx context.Context, conf Config, h http.Handler) error {
	ln, err := net.Listen("tcp", conf.Addr)
	if err != nil {
		return core.WrapError(err, core.ECONNECTION, "cannot listen on %s", conf.Addr)
	}
	return Serve(ctx, ln, conf.Connections, h)
}

// Serve serves h on ln until ctx is done, then shuts down gracefully.
// At most maxConn connections are accepted at a time.
func Serve(ctx context.Context, ln net.Listener, maxConn int, h http.Handler) error {
	if maxConn > 0 {
		ln = netutil.LimitListener(ln, maxConn)
	}
	srv := &http.Server{
		Handler:           logged(h),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		tracer().Infof("serving on %s", ln.Addr())
		errc <- srv.Serve(ln)
	}()
	select {
	case err := <-errc:
		return core.WrapError(err, core.ECONNECTION, "server failed")
	case <-ctx.Done():
	}
	tracer().Infof("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return core.WrapError(err, core.EINTERNAL, "server shutdown failed")
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return core.WrapError(err, core.ECONNECTION, "server failed")
	}
	return nil
}
