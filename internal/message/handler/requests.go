package handler

import (
	"math"
	"strings"

	"ridelink/internal/message/models"
	"ridelink/pkg/contentref"
	id "ridelink/pkg/domain"
	dErrors "ridelink/pkg/domain-errors"
	"ridelink/pkg/validation"
)

// contentFields lets clients send a precomputed content reference, raw content
// from which the reference is derived, or both when the reference matches.
type contentFields struct {
	ContentRef string `json:"content_ref"`
	Content    string `json:"content"`
}

func (c *contentFields) normalize() {
	c.ContentRef = strings.TrimSpace(c.ContentRef)
}

func (c *contentFields) validate() error {
	switch {
	case c.ContentRef == "" && c.Content == "":
		return dErrors.New(dErrors.CodeValidation, "one of content_ref or content is required")
	case c.ContentRef != "" && c.Content != "" && !contentref.Matches(c.ContentRef, []byte(c.Content)):
		return dErrors.New(dErrors.CodeValidation, "content_ref does not match content")
	}
	if err := validation.CheckStringLength("content_ref", c.ContentRef, validation.MaxContentRefLength); err != nil {
		return err
	}
	return validation.CheckStringLength("content", c.Content, validation.MaxBodySize)
}

func (c *contentFields) ref() string {
	if c.ContentRef != "" {
		return c.ContentRef
	}
	return contentref.OfString(c.Content)
}

type SendInThreadRequest struct {
	contentFields
}

func (r *SendInThreadRequest) Normalize() {
	if r != nil {
		r.normalize()
	}
}

func (r *SendInThreadRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return r.validate()
}

type SendDirectRequest struct {
	contentFields
	Recipient string `json:"recipient" validate:"required,notblank"`
	Kind      string `json:"kind" validate:"required"`
}

func (r *SendDirectRequest) Normalize() {
	if r == nil {
		return
	}
	r.normalize()
	r.Recipient = strings.TrimSpace(r.Recipient)
	r.Kind = strings.ToLower(strings.TrimSpace(r.Kind))
}

func (r *SendDirectRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.Validate(r); err != nil {
		return err
	}
	if _, err := id.ParseHandle(r.Recipient); err != nil {
		return err
	}
	if _, err := models.ParseKind(r.Kind); err != nil {
		return err
	}
	return r.validate()
}

// CodeRequest carries a template or quick-reply code. Catalogue membership is
// checked by the service so the caller sees invalid_template or reply_not_enabled.
type CodeRequest struct {
	Code *uint8 `json:"code" validate:"required"`
}

func (r *CodeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

// QuickRepliesRequest replaces the caller's allow-list. Codes are ints so
// JSON arrays decode as numbers rather than base64 bytes.
type QuickRepliesRequest struct {
	Codes []int `json:"codes"`
}

func (r *QuickRepliesRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.CheckSliceCount("codes", len(r.Codes), len(models.AllQuickReplies())); err != nil {
		return err
	}
	for _, c := range r.Codes {
		if c < 0 || c > math.MaxUint8 || !models.QuickReply(c).IsValid() {
			return dErrors.New(dErrors.CodeValidation, "unknown quick reply code")
		}
	}
	return nil
}

func (r *QuickRepliesRequest) replies() []models.QuickReply {
	out := make([]models.QuickReply, len(r.Codes))
	for i, c := range r.Codes {
		out[i] = models.QuickReply(c)
	}
	return out
}
