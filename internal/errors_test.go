package internal_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/waymark/internal"
	"github.com/dmitrymomot/waymark/pkg/route"
)

func TestHTTPError(t *testing.T) {
	t.Parallel()

	cause := errors.New("row not found")
	err := internal.ErrNotFound("post not found",
		internal.WithError(cause),
		internal.WithErrorCode("post_missing"),
	)

	require.Equal(t, http.StatusNotFound, err.Code)
	require.Equal(t, "post not found", err.Error())
	require.Equal(t, "post_missing", err.ErrorCode)
	require.Equal(t, "Not Found", err.StatusText())
	require.ErrorIs(t, err, cause)
}

func TestNewHTTPError_DefaultMessage(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Not Found", internal.ErrNotFound("").Message)
}

func TestStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"http error", internal.ErrBadRequest("bad"), http.StatusBadRequest},
		{"wrapped http error", fmt.Errorf("load: %w", internal.ErrForbidden("no")), http.StatusForbidden},
		{"internal", internal.ErrInternal("no"), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"missing param", &route.MissingParamError{Name: "id"}, http.StatusInternalServerError},
		{"zero code", &internal.HTTPError{Message: "x"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, internal.StatusCode(tt.err))
		})
	}
}
