package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ridelink/internal/message/models"
	id "ridelink/pkg/domain"
	dErrors "ridelink/pkg/domain-errors"
	"ridelink/pkg/platform/httputil"
	"ridelink/pkg/platform/middleware/requesttime"
	"ridelink/pkg/requestcontext"
)

// Service defines the message, template and quick-reply operations used over HTTP.
type Service interface {
	SendDirect(ctx context.Context, sender, recipient id.Handle, kind models.Kind, contentRef string, now time.Time) (*models.Message, error)
	SendInThread(ctx context.Context, threadID id.ThreadID, sender id.Handle, contentRef string, now time.Time) (*models.Message, error)
	SendDriverTemplate(ctx context.Context, threadID id.ThreadID, code uint8, caller id.Handle, now time.Time) ([]*models.Message, error)
	SendQuickReply(ctx context.Context, threadID id.ThreadID, code models.QuickReply, enabled models.ReplySet, caller id.Handle, now time.Time) ([]*models.Message, error)
	EnabledReplies(ctx context.Context, handle id.Handle) (models.ReplySet, error)
	SetEnabledReplies(ctx context.Context, handle id.Handle, codes []models.QuickReply) (models.ReplySet, error)
	Expire(ctx context.Context, messageID id.MessageID, now time.Time, threshold time.Duration) (bool, error)
	Lookup(ctx context.Context, messageID id.MessageID) (*models.Message, error)
	Inbox(ctx context.Context, recipient id.Handle) ([]*models.Message, error)
	ListThread(ctx context.Context, threadID id.ThreadID, caller id.Handle) ([]*models.Message, error)
}

type Option func(*Handler)

type Handler struct {
	service   Service
	logger    *slog.Logger
	sendLimit func(http.Handler) http.Handler
}

func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// WithSendLimit wraps the in-thread send route, typically with a per-caller rate limiter.
func WithSendLimit(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) { h.sendLimit = mw }
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/threads/{id}/messages", h.HandleListThread)
	if h.sendLimit != nil {
		r.With(h.sendLimit).Post("/threads/{id}/messages", h.HandleSendInThread)
	} else {
		r.Post("/threads/{id}/messages", h.HandleSendInThread)
	}
	r.Post("/threads/{id}/templates", h.HandleSendDriverTemplate)
	r.Post("/threads/{id}/quick-replies", h.HandleSendQuickReply)

	r.Get("/me/inbox", h.HandleInbox)
	r.Get("/me/quick-replies", h.HandleGetQuickReplies)
	r.Put("/me/quick-replies", h.HandleSetQuickReplies)

	r.Post("/messages", h.HandleSendDirect)
	r.Get("/messages/{id}", h.HandleLookup)
	r.Delete("/messages/{id}", h.HandleExpire)
}

func (h *Handler) HandleSendInThread(w http.ResponseWriter, r *http.Request) {
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

	req, ok := httputil.DecodeAndPrepare[SendInThreadRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	m, err := h.service.SendInThread(ctx, threadID, caller, req.ref(), requesttime.Now(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "send in thread failed", "error", err, "request_id", requestID, "thread_id", threadID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toMessageResponse(m))
}

func (h *Handler) HandleListThread(w http.ResponseWriter, r *http.Request) {
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

	msgs, err := h.service.ListThread(ctx, threadID, caller)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toMessageListResponse(msgs))
}

func (h *Handler) HandleSendDriverTemplate(w http.ResponseWriter, r *http.Request) {
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

	req, ok := httputil.DecodeAndPrepare[CodeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sent, err := h.service.SendDriverTemplate(ctx, threadID, *req.Code, caller, requesttime.Now(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "send driver template failed", "error", err, "request_id", requestID, "thread_id", threadID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toMessageListResponse(sent))
}

// HandleSendQuickReply checks the code against the caller's stored allow-list.
func (h *Handler) HandleSendQuickReply(w http.ResponseWriter, r *http.Request) {
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

	req, ok := httputil.DecodeAndPrepare[CodeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	enabled, err := h.service.EnabledReplies(ctx, caller)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sent, err := h.service.SendQuickReply(ctx, threadID, models.QuickReply(*req.Code), enabled, caller, requesttime.Now(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "send quick reply failed", "error", err, "request_id", requestID, "thread_id", threadID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toMessageListResponse(sent))
}

func (h *Handler) HandleGetQuickReplies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	set, err := h.service.EnabledReplies(ctx, caller)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toQuickRepliesResponse(set))
}

func (h *Handler) HandleSetQuickReplies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[QuickRepliesRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	set, err := h.service.SetEnabledReplies(ctx, caller, req.replies())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toQuickRepliesResponse(set))
}

func (h *Handler) HandleSendDirect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[SendDirectRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	m, err := h.service.SendDirect(ctx, caller, id.Handle(req.Recipient), models.Kind(req.Kind), req.ref(), requesttime.Now(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "send direct failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toMessageResponse(m))
}

// HandleLookup only reveals a message to its sender or recipient.
func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
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

	m, err := h.service.Lookup(ctx, messageID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if caller != m.Sender && caller != m.Recipient {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "message belongs to other participants"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toMessageResponse(m))
}

// HandleExpire deletes the message once it is older than the threshold query
// parameter (a Go duration such as "24h"). Unknown messages report expired=false.
func (h *Handler) HandleExpire(w http.ResponseWriter, r *http.Request) {
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
	threshold, err := time.ParseDuration(r.URL.Query().Get("threshold"))
	if err != nil || threshold < 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "threshold must be a non-negative duration"))
		return
	}

	m, err := h.service.Lookup(ctx, messageID)
	switch {
	case dErrors.HasCode(err, dErrors.CodeNotFound):
		httputil.WriteJSON(w, http.StatusOK, &ExpireResponse{MessageID: messageID.String()})
		return
	case err != nil:
		httputil.WriteError(w, err)
		return
	case caller != m.Sender && caller != m.Recipient:
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "message belongs to other participants"))
		return
	}

	expired, err := h.service.Expire(ctx, messageID, requesttime.Now(ctx), threshold)
	if err != nil {
		h.logger.WarnContext(ctx, "expire message failed", "error", err, "request_id", requestID, "message_id", messageID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &ExpireResponse{MessageID: messageID.String(), Expired: expired})
}

func (h *Handler) HandleInbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	msgs, err := h.service.Inbox(ctx, caller)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toMessageListResponse(msgs))
}

func pathThreadID(w http.ResponseWriter, r *http.Request) (id.ThreadID, bool) {
	threadID, err := id.ParseThreadID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid thread id"))
		return id.ThreadID{}, false
	}
	return threadID, true
}

func pathMessageID(w http.ResponseWriter, r *http.Request) (id.MessageID, bool) {
	messageID, err := id.ParseMessageID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid message id"))
		return id.MessageID{}, false
	}
	return messageID, true
}
