package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	id "ridelink/pkg/domain"
	dErrors "ridelink/pkg/domain-errors"
	"ridelink/pkg/platform/httputil"
	"ridelink/pkg/platform/middleware/requesttime"
	"ridelink/pkg/requestcontext"
	"ridelink/pkg/validation"
)

type Service interface {
	Deposit(ctx context.Context, handle id.Handle, amount int64) (int64, error)
	Balance(ctx context.Context, handle id.Handle) int64
	Transfer(ctx context.Context, from, to id.Handle, amount int64, caller id.Handle, now time.Time) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/wallet", h.HandleBalance)
	r.Post("/wallet/deposit", h.HandleDeposit)
	r.Post("/wallet/transfer", h.HandleTransfer)
}

type DepositRequest struct {
	Amount int64 `json:"amount" validate:"gt=0"`
}

func (r *DepositRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

type TransferRequest struct {
	To     string `json:"to" validate:"required,max=64"`
	Amount int64  `json:"amount" validate:"gt=0"`
}

func (r *TransferRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

type BalanceResponse struct {
	Handle  string `json:"handle"`
	Balance int64  `json:"balance"`
}

func (h *Handler) HandleBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &BalanceResponse{Handle: caller.String(), Balance: h.service.Balance(ctx, caller)})
}

// HandleDeposit funds the caller's own wallet.
func (h *Handler) HandleDeposit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[DepositRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	balance, err := h.service.Deposit(ctx, caller, req.Amount)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &BalanceResponse{Handle: caller.String(), Balance: balance})
}

// HandleTransfer pays from the caller's wallet.
func (h *Handler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[TransferRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.Transfer(ctx, caller, id.Handle(req.To), req.Amount, caller, requesttime.Now(ctx)); err != nil {
		h.logger.WarnContext(ctx, "transfer failed", "error", err, "request_id", requestID, "to", req.To)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &BalanceResponse{Handle: caller.String(), Balance: h.service.Balance(ctx, caller)})
}
