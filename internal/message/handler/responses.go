package handler

import (
	"time"

	"ridelink/internal/message/models"
)

type MessageResponse struct {
	ID           string      `json:"id"`
	ThreadID     string      `json:"thread_id,omitempty"`
	Sender       string      `json:"sender"`
	Recipient    string      `json:"recipient"`
	Kind         models.Kind `json:"kind"`
	ContentRef   string      `json:"content_ref"`
	Content      string      `json:"content,omitempty"`
	TemplateCode *uint8      `json:"template_code,omitempty"`
	IsTemplate   bool        `json:"is_template"`
	CreatedAt    time.Time   `json:"created_at"`
}

type MessageListResponse struct {
	Messages []*MessageResponse `json:"messages"`
}

type ExpireResponse struct {
	MessageID string `json:"message_id"`
	Expired   bool   `json:"expired"`
}

type QuickRepliesResponse struct {
	Codes []int    `json:"codes"`
	Names []string `json:"names"`
}

func toMessageResponse(m *models.Message) *MessageResponse {
	resp := &MessageResponse{
		ID:           m.ID.String(),
		Sender:       m.Sender.String(),
		Recipient:    m.Recipient.String(),
		Kind:         m.Kind,
		ContentRef:   m.ContentRef,
		TemplateCode: m.TemplateCode,
		IsTemplate:   m.IsTemplate,
		CreatedAt:    m.CreatedAt,
	}
	if !m.IsDirect() {
		resp.ThreadID = m.ThreadID.String()
	}
	if content, ok := m.CatalogueContent(); ok {
		resp.Content = content
	}
	return resp
}

func toMessageListResponse(msgs []*models.Message) *MessageListResponse {
	out := make([]*MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResponse(m))
	}
	return &MessageListResponse{Messages: out}
}

func toQuickRepliesResponse(set models.ReplySet) *QuickRepliesResponse {
	resp := &QuickRepliesResponse{Codes: []int{}, Names: []string{}}
	for _, q := range set.Codes() {
		resp.Codes = append(resp.Codes, int(q.Code()))
		resp.Names = append(resp.Names, q.String())
	}
	return resp
}
