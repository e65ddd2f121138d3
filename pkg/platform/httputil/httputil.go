package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	id "ridelink/pkg/domain"
	dErrors "ridelink/pkg/domain-errors"
	"ridelink/pkg/requestcontext"
)

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	_ = json.NewEncoder(w).Encode(response)
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteError centralizes domain error translation to HTTP responses.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		resp := ErrorResponse{Error: DomainCodeToHTTPCode(domainErr.Code)}
		// Internal failures never leak their message.
		if domainErr.Code != dErrors.CodeInternal {
			resp.ErrorDescription = domainErr.Message
		}
		WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), resp)
		return
	}

	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: DomainCodeToHTTPCode(dErrors.CodeInternal),
	})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
// Unauthorized is a role failure on an authenticated request, so it maps to 403;
// missing credentials are rejected with 401 by the auth middleware.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeConflict, dErrors.CodeAlreadyRegistered:
		return http.StatusConflict
	case dErrors.CodeUnauthorized, dErrors.CodeForbidden, dErrors.CodeKYCRequired, dErrors.CodeNotThreadMember:
		return http.StatusForbidden
	case dErrors.CodeThreadInactive:
		return http.StatusGone
	case dErrors.CodeInvalidStatus, dErrors.CodeInvalidTemplate, dErrors.CodeReplyNotEnabled:
		return http.StatusUnprocessableEntity
	case dErrors.CodeInsufficientFunds:
		return http.StatusPaymentRequired
	case dErrors.CodeRateLimited:
		return http.StatusTooManyRequests
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// DomainCodeToHTTPCode translates domain error codes to the JSON "error" field.
func DomainCodeToHTTPCode(code dErrors.Code) string {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput:
		return "bad_request"
	case dErrors.CodeValidation:
		return "validation_error"
	case dErrors.CodeNotFound, dErrors.CodeConflict, dErrors.CodeUnauthorized, dErrors.CodeForbidden,
		dErrors.CodeTimeout, dErrors.CodeRateLimited, dErrors.CodeAlreadyRegistered, dErrors.CodeKYCRequired,
		dErrors.CodeNotThreadMember, dErrors.CodeInvalidStatus, dErrors.CodeInvalidTemplate,
		dErrors.CodeReplyNotEnabled, dErrors.CodeThreadInactive, dErrors.CodeInsufficientFunds:
		return string(code)
	default:
		return "internal_error"
	}
}

// RequireCaller extracts the authenticated caller handle from context.
// The auth middleware guarantees presence on protected routes, so absence is an internal error.
func RequireCaller(ctx context.Context, logger *slog.Logger) (id.Handle, error) {
	caller := requestcontext.Caller(ctx)
	if caller.IsNil() {
		if logger != nil {
			logger.ErrorContext(ctx, "caller missing from context despite auth middleware",
				"request_id", requestcontext.RequestID(ctx))
		}
		return "", dErrors.New(dErrors.CodeInternal, "authentication context error")
	}
	return caller, nil
}
