package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	As(handle string)
	Do(method, path string, body any) error
	Remember(name, value string)
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
}

// RegisterSteps registers thread, message and receipt step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &messagingSteps{tc: tc}

	// Threads
	ctx.Step(`^"([^"]*)" opens a thread with "([^"]*)" for ride "([^"]*)"$`, steps.opensThread)
	ctx.Step(`^"([^"]*)" reports an ETA of (\d+) minutes?$`, steps.reportsETA)
	ctx.Step(`^"([^"]*)" closes the thread$`, steps.closesThread)

	// Messages
	ctx.Step(`^"([^"]*)" sends "([^"]*)" in the thread$`, steps.sendsInThread)
	ctx.Step(`^"([^"]*)" sends driver template (\d+)$`, steps.sendsTemplate)
	ctx.Step(`^"([^"]*)" sends quick reply (\d+)$`, steps.sendsQuickReply)
	ctx.Step(`^"([^"]*)" enables quick replies "([^"]*)"$`, steps.enablesQuickReplies)
	ctx.Step(`^"([^"]*)" sends a direct "([^"]*)" message "([^"]*)" to "([^"]*)"$`, steps.sendsDirect)
	ctx.Step(`^"([^"]*)" should have (\d+) messages? in the inbox$`, steps.inboxShouldHave)
	ctx.Step(`^"([^"]*)" should see (\d+) messages? in the thread$`, steps.threadShouldHave)
	ctx.Step(`^the last inbox message of "([^"]*)" should have kind "([^"]*)"$`, steps.lastInboxKind)

	// Receipts
	ctx.Step(`^"([^"]*)" acknowledges the last message$`, steps.acknowledges)
}

type messagingSteps struct {
	tc TestContext
}

func (s *messagingSteps) opensThread(ctx context.Context, driver, passenger, rideID string) error {
	s.tc.As(driver)
	if err := s.tc.Do("POST", "/threads", map[string]string{"ride_id": rideID, "passenger": passenger}); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != 201 {
		return nil
	}
	threadID, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	s.tc.Remember("thread", fmt.Sprint(threadID))
	return nil
}

func (s *messagingSteps) reportsETA(ctx context.Context, handle string, minutes int) error {
	s.tc.As(handle)
	return s.tc.Do("POST", "/threads/{thread}/eta", map[string]int{"minutes_away": minutes})
}

func (s *messagingSteps) closesThread(ctx context.Context, handle string) error {
	s.tc.As(handle)
	return s.tc.Do("POST", "/threads/{thread}/close", nil)
}

func (s *messagingSteps) sendsInThread(ctx context.Context, handle, content string) error {
	s.tc.As(handle)
	if err := s.tc.Do("POST", "/threads/{thread}/messages", map[string]string{"content": content}); err != nil {
		return err
	}
	return s.rememberMessage()
}

func (s *messagingSteps) sendsTemplate(ctx context.Context, handle string, code int) error {
	s.tc.As(handle)
	return s.tc.Do("POST", "/threads/{thread}/templates", map[string]int{"code": code})
}

func (s *messagingSteps) sendsQuickReply(ctx context.Context, handle string, code int) error {
	s.tc.As(handle)
	return s.tc.Do("POST", "/threads/{thread}/quick-replies", map[string]int{"code": code})
}

func (s *messagingSteps) enablesQuickReplies(ctx context.Context, handle, list string) error {
	codes := []int{}
	for _, part := range strings.Split(list, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return fmt.Errorf("quick reply code %q: %w", part, err)
		}
		codes = append(codes, n)
	}
	s.tc.As(handle)
	if err := s.tc.Do("PUT", "/me/quick-replies", map[string][]int{"codes": codes}); err != nil {
		return err
	}
	return s.expect(200)
}

func (s *messagingSteps) sendsDirect(ctx context.Context, sender, kind, content, recipient string) error {
	s.tc.As(sender)
	if err := s.tc.Do("POST", "/messages", map[string]string{"recipient": recipient, "kind": kind, "content": content}); err != nil {
		return err
	}
	return s.rememberMessage()
}

func (s *messagingSteps) inboxShouldHave(ctx context.Context, handle string, n int) error {
	msgs, err := s.list(handle, "/me/inbox")
	if err != nil {
		return err
	}
	if len(msgs) != n {
		return fmt.Errorf("%s inbox: expected %d messages but got %d", handle, n, len(msgs))
	}
	return nil
}

func (s *messagingSteps) threadShouldHave(ctx context.Context, handle string, n int) error {
	msgs, err := s.list(handle, "/threads/{thread}/messages")
	if err != nil {
		return err
	}
	if len(msgs) != n {
		return fmt.Errorf("thread seen by %s: expected %d messages but got %d", handle, n, len(msgs))
	}
	return nil
}

func (s *messagingSteps) lastInboxKind(ctx context.Context, handle, kind string) error {
	msgs, err := s.list(handle, "/me/inbox")
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return fmt.Errorf("%s inbox is empty", handle)
	}
	if got := msgs[len(msgs)-1].Kind; got != kind {
		return fmt.Errorf("expected kind %s but got %s", kind, got)
	}
	return nil
}

func (s *messagingSteps) acknowledges(ctx context.Context, handle string) error {
	s.tc.As(handle)
	return s.tc.Do("POST", "/messages/{message}/ack", nil)
}

type listedMessage struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

func (s *messagingSteps) list(handle, path string) ([]listedMessage, error) {
	s.tc.As(handle)
	if err := s.tc.Do("GET", path, nil); err != nil {
		return nil, err
	}
	if err := s.expect(200); err != nil {
		return nil, err
	}
	var resp struct {
		Messages []listedMessage `json:"messages"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse message list: %w", err)
	}
	return resp.Messages, nil
}

// rememberMessage saves the id of a freshly created message as "message".
func (s *messagingSteps) rememberMessage() error {
	if s.tc.GetLastResponseStatus() != 201 {
		return nil
	}
	messageID, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	s.tc.Remember("message", fmt.Sprint(messageID))
	return nil
}

func (s *messagingSteps) expect(status int) error {
	if got := s.tc.GetLastResponseStatus(); got != status {
		return fmt.Errorf("expected status %d but got %d\nResponse: %s", status, got, string(s.tc.GetLastResponseBody()))
	}
	return nil
}
