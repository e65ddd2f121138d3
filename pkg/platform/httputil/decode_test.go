package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "ridelink/pkg/domain-errors"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type etaRequest struct {
	Minutes int    `json:"minutes"`
	Note    string `json:"note"`
}

type handleRequest struct {
	Handle string `json:"handle"`
	err    error
}

func (r *handleRequest) Normalize() {
	r.Handle = strings.ToLower(strings.TrimSpace(r.Handle))
}

func (r *handleRequest) Validate() error {
	if r.err != nil {
		return r.err
	}
	if r.Handle == "" {
		return errors.New("handle is required")
	}
	return nil
}

type codedRequest struct {
	Code string `json:"code"`
}

func (r *codedRequest) Validate() error {
	if r.Code == "" {
		return dErrors.New(dErrors.CodeInvalidTemplate, "code is required")
	}
	return nil
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestDecodeJSON(t *testing.T) {
	t.Run("decodes a single object", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"minutes":3,"note":"traffic"}`))
		w := httptest.NewRecorder()

		got, ok := DecodeJSON[etaRequest](w, r, discard, r.Context(), "req-1")

		require.True(t, ok)
		assert.Equal(t, &etaRequest{Minutes: 3, Note: "traffic"}, got)
	})

	tests := []struct {
		name        string
		body        string
		description string
	}{
		{"empty body", "", "request body is required"},
		{"malformed", `{minutes}`, "invalid request body"},
		{"wrong field type", `{"minutes":"soon"}`, "minutes has the wrong type"},
		{"trailing object", `{"minutes":1}{"minutes":2}`, "request body must be a single JSON object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			got, ok := DecodeJSON[etaRequest](w, r, discard, r.Context(), "req-1")

			assert.False(t, ok)
			assert.Nil(t, got)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, "bad_request", resp.Error)
			assert.Equal(t, tt.description, resp.ErrorDescription)
		})
	}

	t.Run("oversized body", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"note":"`+strings.Repeat("x", 64)+`"}`))
		r.Body = http.MaxBytesReader(w, r.Body, 16)

		_, ok := DecodeJSON[etaRequest](w, r, discard, r.Context(), "req-1")

		assert.False(t, ok)
		assert.Equal(t, "request body exceeds 16 bytes", decodeError(t, w).ErrorDescription)
	})
}

func TestDecodeAndPrepare(t *testing.T) {
	t.Run("normalizes before validating", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"handle":"  Driver-1 "}`))
		w := httptest.NewRecorder()

		got, ok := DecodeAndPrepare[handleRequest](w, r, discard, r.Context(), "req-1")

		require.True(t, ok)
		assert.Equal(t, "driver-1", got.Handle)
	})

	t.Run("plain validation error becomes validation_error", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"handle":"   "}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[handleRequest](w, r, discard, r.Context(), "req-1")

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "validation_error", resp.Error)
		assert.Equal(t, "handle is required", resp.ErrorDescription)
	})

	t.Run("domain error keeps its code", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[codedRequest](w, r, discard, r.Context(), "req-1")

		assert.False(t, ok)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "code is required", decodeError(t, w).ErrorDescription)
	})

	t.Run("decode failure skips preparation", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`[`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[handleRequest](w, r, discard, r.Context(), "req-1")

		assert.False(t, ok)
		assert.Equal(t, "bad_request", decodeError(t, w).Error)
	})
}

func TestPrepareRequest_IgnoresPlainTypes(t *testing.T) {
	assert.NoError(t, PrepareRequest(&etaRequest{}))
}
