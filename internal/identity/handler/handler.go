package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ridelink/internal/identity/models"
	id "ridelink/pkg/domain"
	dErrors "ridelink/pkg/domain-errors"
	"ridelink/pkg/platform/httputil"
	"ridelink/pkg/platform/middleware/requesttime"
	"ridelink/pkg/requestcontext"
)

// Service defines the identity registry operations used over HTTP.
type Service interface {
	Register(ctx context.Context, handle id.Handle, displayName, proofRef string, now time.Time) (*models.Record, error)
	AddProof(ctx context.Context, handle id.Handle, proofRef string, caller id.Handle, now time.Time) (*models.Record, error)
	UpdateStatus(ctx context.Context, handle id.Handle, status models.Status, caller id.Handle, now time.Time) (*models.Record, error)
	AdjustReputation(ctx context.Context, handle id.Handle, delta int64, now time.Time) (uint64, error)
	Get(ctx context.Context, handle id.Handle) (*models.Record, error)
	IsAdmin(h id.Handle) bool
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts routes that need no bearer token.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/identities", h.HandleRegister)
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/identities/{handle}", h.HandleGet)
	r.Post("/identities/{handle}/proofs", h.HandleAddProof)
	r.Put("/identities/{handle}/status", h.HandleUpdateStatus)
	r.Post("/identities/{handle}/reputation", h.HandleAdjustReputation)
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.service.Register(ctx, id.Handle(req.Handle), req.DisplayName, req.ProofRef, requesttime.Now(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "register identity failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toIdentityResponse(rec))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	handle, ok := h.pathHandle(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Get(ctx, handle)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toIdentityResponse(rec))
}

func (h *Handler) HandleAddProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	handle, ok := h.pathHandle(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[AddProofRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.service.AddProof(ctx, handle, req.ProofRef, caller, requesttime.Now(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "add proof failed", "error", err, "request_id", requestID, "handle", handle)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toIdentityResponse(rec))
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	handle, ok := h.pathHandle(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateStatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.service.UpdateStatus(ctx, handle, req.status(), caller, requesttime.Now(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "update kyc status failed", "error", err, "request_id", requestID, "handle", handle)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toIdentityResponse(rec))
}

// HandleAdjustReputation is restricted to the registry admin over HTTP; the
// service operation itself is unconditional for in-process collaborators.
func (h *Handler) HandleAdjustReputation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !h.service.IsAdmin(caller) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "only the registry admin can adjust reputation"))
		return
	}
	handle, ok := h.pathHandle(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeJSON[AdjustReputationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	reputation, err := h.service.AdjustReputation(ctx, handle, req.Delta, requesttime.Now(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &ReputationResponse{Handle: handle.String(), Reputation: reputation})
}

func (h *Handler) pathHandle(w http.ResponseWriter, r *http.Request) (id.Handle, bool) {
	handle, err := id.ParseHandle(chi.URLParam(r, "handle"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid handle"))
		return "", false
	}
	return handle, true
}
