package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"ridelink/internal/receipt/models"
	id "ridelink/pkg/domain"
	dErrors "ridelink/pkg/domain-errors"
	"ridelink/pkg/platform/httputil"
	"ridelink/pkg/platform/middleware/requesttime"
	"ridelink/pkg/requestcontext"
	"ridelink/pkg/validation"
)

type Service interface {
	Acknowledge(ctx context.Context, messageID id.MessageID, reader id.Handle, now time.Time) (*models.Receipt, error)
	SetStatus(ctx context.Context, messageID id.MessageID, status models.Status, reader id.Handle, now time.Time) (*models.Receipt, error)
	List(ctx context.Context, messageID id.MessageID) ([]*models.Receipt, error)
	Latest(ctx context.Context, messageID id.MessageID, reader id.Handle) (*models.Receipt, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/messages/{id}/ack", h.HandleAcknowledge)
	r.Post("/messages/{id}/status", h.HandleSetStatus)
	r.Get("/messages/{id}/receipts", h.HandleList)
	r.Get("/messages/{id}/receipts/latest", h.HandleLatest)
}

// SetStatusRequest leaves enumeration checks to the service.
type SetStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (r *SetStatusRequest) Normalize() {
	if r != nil {
		r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	}
}

func (r *SetStatusRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

type ReceiptResponse struct {
	ID         string        `json:"id"`
	MessageID  string        `json:"message_id"`
	Reader     string        `json:"reader"`
	Recipient  string        `json:"recipient"`
	Status     models.Status `json:"status"`
	RecordedAt time.Time     `json:"recorded_at"`
}

type ReceiptListResponse struct {
	Receipts []*ReceiptResponse `json:"receipts"`
}

func toReceiptResponse(r *models.Receipt) *ReceiptResponse {
	return &ReceiptResponse{
		ID:         r.ID.String(),
		MessageID:  r.MessageID.String(),
		Reader:     r.Reader.String(),
		Recipient:  r.Recipient.String(),
		Status:     r.Status,
		RecordedAt: r.RecordedAt,
	}
}

func (h *Handler) HandleAcknowledge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	messageID, ok := pathMessageID(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Acknowledge(ctx, messageID, caller, requesttime.Now(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "acknowledge failed", "error", err, "request_id", requestID, "message_id", messageID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toReceiptResponse(rec))
}

func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	messageID, ok := pathMessageID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[SetStatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.service.SetStatus(ctx, messageID, models.Status(req.Status), caller, requesttime.Now(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "set delivery status failed", "error", err, "request_id", requestID, "message_id", messageID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toReceiptResponse(rec))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	messageID, ok := pathMessageID(w, r)
	if !ok {
		return
	}

	receipts, err := h.service.List(ctx, messageID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := &ReceiptListResponse{Receipts: make([]*ReceiptResponse, 0, len(receipts))}
	for _, rec := range receipts {
		resp.Receipts = append(resp.Receipts, toReceiptResponse(rec))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleLatest reports the current status for ?reader=, defaulting to the caller.
func (h *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	messageID, ok := pathMessageID(w, r)
	if !ok {
		return
	}
	reader := caller
	if raw := r.URL.Query().Get("reader"); raw != "" {
		if reader, err = id.ParseHandle(raw); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	rec, err := h.service.Latest(ctx, messageID, reader)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toReceiptResponse(rec))
}

func pathMessageID(w http.ResponseWriter, r *http.Request) (id.MessageID, bool) {
	messageID, err := id.ParseMessageID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid message id"))
		return id.MessageID{}, false
	}
	return messageID, true
}
