package handler

import (
	"time"

	msgmodels "ridelink/internal/message/models"
	"ridelink/internal/thread/models"
)

type ThreadResponse struct {
	ID         string     `json:"id"`
	RideID     string     `json:"ride_id"`
	Driver     string     `json:"driver"`
	Passenger  string     `json:"passenger"`
	Active     bool       `json:"active"`
	ETAMinutes uint32     `json:"eta_minutes"`
	CreatedAt  time.Time  `json:"created_at"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
}

// SentMessage summarises a template message produced by an ETA update.
type SentMessage struct {
	ID           string `json:"id"`
	Recipient    string `json:"recipient"`
	TemplateCode uint8  `json:"template_code"`
	ContentRef   string `json:"content_ref"`
}

type UpdateETAResponse struct {
	Thread   *ThreadResponse `json:"thread"`
	Template string          `json:"template"`
	Messages []SentMessage   `json:"messages"`
}

func toThreadResponse(t *models.Thread) *ThreadResponse {
	return &ThreadResponse{
		ID:         t.ID.String(),
		RideID:     t.RideID.String(),
		Driver:     t.Driver.String(),
		Passenger:  t.Passenger.String(),
		Active:     t.Active,
		ETAMinutes: t.ETAMinutes,
		CreatedAt:  t.CreatedAt,
		ClosedAt:   t.ClosedAt,
	}
}

func toUpdateETAResponse(t *models.Thread, sent []*msgmodels.Message) *UpdateETAResponse {
	resp := &UpdateETAResponse{
		Thread:   toThreadResponse(t),
		Template: msgmodels.ETATemplate(t.ETAMinutes).String(),
		Messages: make([]SentMessage, 0, len(sent)),
	}
	for _, m := range sent {
		sm := SentMessage{ID: m.ID.String(), Recipient: m.Recipient.String(), ContentRef: m.ContentRef}
		if m.TemplateCode != nil {
			sm.TemplateCode = *m.TemplateCode
		}
		resp.Messages = append(resp.Messages, sm)
	}
	return resp
}
