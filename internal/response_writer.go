package internal

import (
	"bufio"
	"net"
	"net/http"
	"sync/atomic"
)

// ResponseWriter records what a handler wrote so middleware and the error
// path can tell whether the response has started.
type ResponseWriter struct {
	http.ResponseWriter
	status  atomic.Int32
	size    atomic.Int64
	started atomic.Bool
}

// NewResponseWriter wraps w. Wrapping a *ResponseWriter returns it as is.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	if rw, ok := w.(*ResponseWriter); ok {
		return rw
	}
	rw := &ResponseWriter{ResponseWriter: w}
	rw.status.Store(http.StatusOK)
	return rw
}

// WriteHeader sends code on the first call only.
func (w *ResponseWriter) WriteHeader(code int) {
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	w.status.Store(int32(code))
	w.ResponseWriter.WriteHeader(code)
}

// Write sends an implicit 200 before the first body bytes.
func (w *ResponseWriter) Write(b []byte) (int, error) {
	if w.started.CompareAndSwap(false, true) {
		w.ResponseWriter.WriteHeader(int(w.status.Load()))
	}
	n, err := w.ResponseWriter.Write(b)
	w.size.Add(int64(n))
	return n, err
}

// Status is the status sent, or 200 before anything was written.
func (w *ResponseWriter) Status() int { return int(w.status.Load()) }

// Size is the number of body bytes written.
func (w *ResponseWriter) Size() int64 { return w.size.Load() }

// Written reports whether the header has been sent.
func (w *ResponseWriter) Written() bool { return w.started.Load() }

// Flush implements http.Flusher when the wrapped writer does.
func (w *ResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		if !w.Written() {
			w.WriteHeader(http.StatusOK)
		}
		f.Flush()
	}
}

// Hijack implements http.Hijacker when the wrapped writer does.
func (w *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := w.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Unwrap lets http.ResponseController reach the wrapped writer.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
