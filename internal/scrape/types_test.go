package scrape

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOutcomeConstructors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		got    Outcome
		text   string
		kind   Kind
		label  string
		reason string
	}{
		{
			name:  "success",
			got:   Succeeded("https://example.com", "Title"),
			text:  "Title",
			kind:  KindSuccess,
			label: "success",
		},
		{
			name:  "not found",
			got:   NotFound("https://example.com"),
			text:  TextNotFound,
			kind:  KindSuccess,
			label: "not_found",
		},
		{
			name:   "http failure",
			got:    HTTPFailed("https://example.com", http.StatusNotFound),
			text:   TextPageFailed,
			kind:   KindHTTPFailure,
			label:  "http_failure",
			reason: TextPageFailed,
		},
		{
			name:   "network error",
			got:    NetworkErrored("https://example.com", errors.New("connection refused")),
			text:   "Error: connection refused",
			kind:   KindNetworkError,
			label:  "network_error",
			reason: "Error: connection refused",
		},
		{
			name:   "unexpected error",
			got:    UnexpectedErrored("https://example.com", errors.New("bad expression")),
			text:   "Unexpected Error: bad expression",
			kind:   KindUnexpectedError,
			label:  "unexpected_error",
			reason: "Unexpected Error: bad expression",
		},
		{
			name:   "recovered panic",
			got:    Recovered("https://example.com", errors.New("panic: boom")),
			text:   "Error: panic: boom",
			kind:   KindUnexpectedError,
			label:  "unexpected_error",
			reason: "Error: panic: boom",
		},
		{
			name:   "nil error still has text",
			got:    NetworkErrored("https://example.com", nil),
			text:   "Error: unknown error",
			kind:   KindNetworkError,
			label:  "network_error",
			reason: "Error: unknown error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, "https://example.com", tc.got.URL)
			require.Equal(t, tc.text, tc.got.Text)
			require.Equal(t, tc.kind, tc.got.Kind)
			require.Equal(t, tc.label, tc.got.Label())
			require.Equal(t, tc.reason, tc.got.Reason())
		})
	}
}

func TestTransportErrorUnwraps(t *testing.T) {
	t.Parallel()

	root := errors.New("dial tcp 127.0.0.1:1: connect: connection refused")
	err := fmt.Errorf("fetch: %w", &TransportError{URL: "http://127.0.0.1:1", Err: root})

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	require.ErrorIs(t, err, root)
	require.Equal(t, root.Error(), transportErr.Error())
	require.Equal(t, "request to x failed", (&TransportError{URL: "x"}).Error())
}
