package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "ridelink/pkg/domain-errors"
	"ridelink/pkg/requestcontext"
)

func TestWriteError_StatusMapping(t *testing.T) {
	cases := []struct {
		code   dErrors.Code
		status int
	}{
		{dErrors.CodeAlreadyRegistered, http.StatusConflict},
		{dErrors.CodeConflict, http.StatusConflict},
		{dErrors.CodeUnauthorized, http.StatusForbidden},
		{dErrors.CodeKYCRequired, http.StatusForbidden},
		{dErrors.CodeNotThreadMember, http.StatusForbidden},
		{dErrors.CodeThreadInactive, http.StatusGone},
		{dErrors.CodeInvalidStatus, http.StatusUnprocessableEntity},
		{dErrors.CodeInvalidTemplate, http.StatusUnprocessableEntity},
		{dErrors.CodeReplyNotEnabled, http.StatusUnprocessableEntity},
		{dErrors.CodeInsufficientFunds, http.StatusPaymentRequired},
		{dErrors.CodeNotFound, http.StatusNotFound},
		{dErrors.CodeInvalidInput, http.StatusBadRequest},
		{dErrors.CodeRateLimited, http.StatusTooManyRequests},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, dErrors.New(tc.code, "details"))

			assert.Equal(t, tc.status, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "details", body.ErrorDescription)
		})
	}
}

func TestWriteError_HidesInternalDetails(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, dErrors.Wrap(errors.New("pq: connection refused"), dErrors.CodeInternal, "failed to save message"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal_error"}`, w.Body.String())
}

func TestWriteError_PlainError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequireCaller(t *testing.T) {
	_, err := RequireCaller(context.Background(), nil)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))

	caller, err := RequireCaller(requestcontext.WithCaller(context.Background(), "rider"), nil)
	require.NoError(t, err)
	assert.Equal(t, "rider", caller.String())
}
