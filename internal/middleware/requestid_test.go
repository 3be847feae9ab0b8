package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serveWithRequestID runs one request through the middleware and returns
// the ID the inner handler saw plus the recorder.
func serveWithRequestID(t *testing.T, headerID string) (string, *httptest.ResponseRecorder) {
	t.Helper()
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/v1/check", nil)
	if headerID != "" {
		req.Header.Set("X-Request-ID", headerID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return seen, rec
}

func TestRequestID_MintsUUIDWhenAbsent(t *testing.T) {
	seen, rec := serveWithRequestID(t, "")
	require.NotEmpty(t, seen)
	_, err := uuid.Parse(seen)
	assert.NoError(t, err, "generated ID should be a UUID")
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
}

func TestRequestID_EchoesWellFormedID(t *testing.T) {
	seen, rec := serveWithRequestID(t, "register-7_txn-0042")
	assert.Equal(t, "register-7_txn-0042", seen)
	assert.Equal(t, "register-7_txn-0042", rec.Header().Get("X-Request-ID"))
}

func TestRequestID_ReplacesUnsafeIDs(t *testing.T) {
	unsafe := []string{
		"evil\nid", // newline would forge log lines
		"evil\rid",
		"has spaces",
		"<script>alert(1)</script>",
		strings.Repeat("x", maxRequestIDLength+1),
	}
	for _, id := range unsafe {
		seen, _ := serveWithRequestID(t, id)
		require.NotEmpty(t, seen)
		assert.NotEqual(t, id, seen, "unsafe ID %q should be replaced", id)
	}

	// Exactly at the cap still echoes through.
	max := strings.Repeat("x", maxRequestIDLength)
	seen, _ := serveWithRequestID(t, max)
	assert.Equal(t, max, seen)
}

func TestRequestIDFromContext_Bare(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}
