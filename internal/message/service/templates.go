package service

import (
	"context"
	"time"

	"ridelink/internal/message/models"
	threadmodels "ridelink/internal/thread/models"
	"ridelink/pkg/contentref"
	id "ridelink/pkg/domain"
	dErrors "ridelink/pkg/domain-errors"
	"ridelink/pkg/platform/tracing"
)

// SendDriverTemplate broadcasts a catalogue template from the driver to both
// participants.
func (s *Service) SendDriverTemplate(ctx context.Context, threadID id.ThreadID, code uint8, caller id.Handle, now time.Time) (sent []*models.Message, err error) {
	ctx, span := s.tracer.Start(ctx, "message.send_driver_template",
		tracing.String("thread_id", threadID.String()),
		tracing.Int("code", int(code)),
	)
	defer func() { span.End(err) }()

	tmpl, err := models.ParseDriverTemplate(code)
	if err != nil {
		return nil, err
	}

	return s.broadcast(ctx, threadID, caller, now, broadcastPlan{
		operation: "send_driver_template",
		kind:      models.KindSupportTemplate,
		code:      tmpl.Code(),
		content:   tmpl.Content(),
		template:  true,
		authorize: func(ctx context.Context, t *threadmodels.Thread) error {
			if !t.IsDriver(caller) {
				s.deny("send_driver_template", dErrors.CodeUnauthorized)
				return dErrors.New(dErrors.CodeUnauthorized, "only the driver can send templates")
			}
			return s.requireApproved(ctx, caller, "send_driver_template")
		},
	})
}

// SendQuickReply broadcasts a passenger quick reply, provided it is in enabled.
func (s *Service) SendQuickReply(ctx context.Context, threadID id.ThreadID, code models.QuickReply, enabled models.ReplySet, caller id.Handle, now time.Time) (sent []*models.Message, err error) {
	ctx, span := s.tracer.Start(ctx, "message.send_quick_reply",
		tracing.String("thread_id", threadID.String()),
		tracing.Int("code", int(code)),
	)
	defer func() { span.End(err) }()

	if !enabled.Contains(code) {
		s.deny("send_quick_reply", dErrors.CodeReplyNotEnabled)
		return nil, dErrors.New(dErrors.CodeReplyNotEnabled, "quick reply is not enabled")
	}

	return s.broadcast(ctx, threadID, caller, now, broadcastPlan{
		operation: "send_quick_reply",
		kind:      models.KindQuickReply,
		code:      code.Code(),
		content:   code.Content(),
		authorize: func(_ context.Context, t *threadmodels.Thread) error {
			if !t.IsPassenger(caller) {
				s.deny("send_quick_reply", dErrors.CodeUnauthorized)
				return dErrors.New(dErrors.CodeUnauthorized, "only the passenger can send quick replies")
			}
			return nil
		},
	})
}

// EnabledReplies returns the caller's allow-list, or the full catalogue when
// no preference store is configured.
func (s *Service) EnabledReplies(ctx context.Context, handle id.Handle) (models.ReplySet, error) {
	if s.preferences == nil {
		return models.DefaultReplySet(), nil
	}
	set, err := s.preferences.EnabledReplies(ctx, handle)
	if err != nil {
		return models.ReplySet{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load quick reply preferences")
	}
	return set, nil
}

func (s *Service) SetEnabledReplies(ctx context.Context, handle id.Handle, codes []models.QuickReply) (models.ReplySet, error) {
	for _, c := range codes {
		if !c.IsValid() {
			return models.ReplySet{}, dErrors.New(dErrors.CodeInvalidInput, "unknown quick reply code")
		}
	}
	if s.preferences == nil {
		return models.ReplySet{}, dErrors.New(dErrors.CodeInternal, "quick reply preferences are not configured")
	}
	set := models.NewReplySet(codes...)
	if err := s.preferences.SetEnabledReplies(ctx, handle, set); err != nil {
		return models.ReplySet{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store quick reply preferences")
	}
	return set, nil
}

type broadcastPlan struct {
	operation string
	kind      models.Kind
	code      uint8
	content   string
	template  bool
	authorize func(ctx context.Context, t *threadmodels.Thread) error
}

// broadcast validates the thread then stores one message per participant as a
// single batch.
func (s *Service) broadcast(ctx context.Context, threadID id.ThreadID, caller id.Handle, now time.Time, plan broadcastPlan) ([]*models.Message, error) {
	var (
		thread *threadmodels.Thread
		sent   []*models.Message
	)
	err := s.tx.RunInTx(ctx, threadID.String(), func(ctx context.Context) error {
		var err error
		thread, err = s.loadThread(ctx, threadID)
		if err != nil {
			return err
		}
		if err := thread.RequireMember(caller); err != nil {
			s.deny(plan.operation, dErrors.CodeNotThreadMember)
			return err
		}
		if err := plan.authorize(ctx, thread); err != nil {
			return err
		}
		if err := thread.RequireActive(); err != nil {
			return err
		}

		ref := contentref.OfString(plan.content)
		for _, participant := range thread.Participants() {
			code := plan.code
			sent = append(sent, &models.Message{
				ID:           id.NewMessageID(),
				ThreadID:     threadID,
				Sender:       caller,
				Recipient:    participant,
				Kind:         plan.kind,
				ContentRef:   ref,
				TemplateCode: &code,
				IsTemplate:   plan.template,
				CreatedAt:    now,
			})
		}
		if err := s.store.SaveAll(ctx, sent); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store broadcast")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emitThreadMessage(ctx, thread, plan.kind, now)
	for _, m := range sent {
		s.recordSent(ctx, m)
	}
	s.logger.InfoContext(ctx, "broadcast sent",
		"thread_id", threadID,
		"kind", plan.kind,
		"code", plan.code,
		"sender", caller,
	)
	return sent, nil
}
