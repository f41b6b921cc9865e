package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResponseWriter_WriteHeader(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	rw := NewResponseWriter(w)

	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusOK)

	require.Equal(t, http.StatusNotFound, rw.Status())
	require.Equal(t, http.StatusNotFound, w.Code)
	require.True(t, rw.Written())
}

func TestResponseWriter_Write(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	rw := NewResponseWriter(w)
	require.False(t, rw.Written())

	n, err := rw.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, int64(5), rw.Size())
	require.Equal(t, http.StatusOK, rw.Status())
	require.True(t, rw.Written())
}

func TestNewResponseWriter_Reuses(t *testing.T) {
	t.Parallel()

	rw := NewResponseWriter(httptest.NewRecorder())
	require.Same(t, rw, NewResponseWriter(rw))
	require.NotNil(t, rw.Unwrap())
}
