package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	msgmodels "ridelink/internal/message/models"
	"ridelink/internal/thread/models"
	id "ridelink/pkg/domain"
	dErrors "ridelink/pkg/domain-errors"
	"ridelink/pkg/platform/httputil"
	"ridelink/pkg/platform/middleware/requesttime"
	"ridelink/pkg/requestcontext"
)

// Service defines the thread operations used over HTTP.
type Service interface {
	Create(ctx context.Context, rideID id.RideID, driver, passenger id.Handle, now time.Time) (*models.Thread, error)
	Get(ctx context.Context, threadID id.ThreadID) (*models.Thread, error)
	ActiveForRide(ctx context.Context, rideID id.RideID, caller id.Handle) (*models.Thread, error)
	UpdateETA(ctx context.Context, threadID id.ThreadID, minutesAway uint32, caller id.Handle, now time.Time) (*models.Thread, []*msgmodels.Message, error)
	Deactivate(ctx context.Context, threadID id.ThreadID, caller id.Handle, now time.Time) (*models.Thread, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/threads", h.HandleCreate)
	r.Get("/threads/{id}", h.HandleGet)
	r.Get("/rides/{id}/thread", h.HandleGetForRide)
	r.Post("/threads/{id}/eta", h.HandleUpdateETA)
	r.Post("/threads/{id}/close", h.HandleDeactivate)
}

// HandleCreate opens a thread with the caller as driver.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateThreadRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	t, err := h.service.Create(ctx, id.RideID(req.RideID), caller, id.Handle(req.Passenger), requesttime.Now(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "create thread failed", "error", err, "request_id", requestID, "ride_id", req.RideID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toThreadResponse(t))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	threadID, ok := pathThreadID(w, r)
	if !ok {
		return
	}

	t, err := h.service.Get(ctx, threadID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := t.RequireMember(caller); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toThreadResponse(t))
}

// HandleGetForRide looks up the open thread of a ride for one of its participants.
func (h *Handler) HandleGetForRide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rideID := id.RideID(chi.URLParam(r, "id"))

	t, err := h.service.ActiveForRide(ctx, rideID, caller)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toThreadResponse(t))
}

func (h *Handler) HandleUpdateETA(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	threadID, ok := pathThreadID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateETARequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	t, sent, err := h.service.UpdateETA(ctx, threadID, *req.MinutesAway, caller, requesttime.Now(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "update eta failed", "error", err, "request_id", requestID, "thread_id", threadID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUpdateETAResponse(t, sent))
}

func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	threadID, ok := pathThreadID(w, r)
	if !ok {
		return
	}

	t, err := h.service.Deactivate(ctx, threadID, caller, requesttime.Now(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "close thread failed", "error", err, "request_id", requestID, "thread_id", threadID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toThreadResponse(t))
}

func pathThreadID(w http.ResponseWriter, r *http.Request) (id.ThreadID, bool) {
	threadID, err := id.ParseThreadID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid thread id"))
		return id.ThreadID{}, false
	}
	return threadID, true
}
