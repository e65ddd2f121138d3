package common

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	As(handle string)
	Do(method, path string, body any) error
	Remember(name, value string)
	Advance(d time.Duration)
	GetResponseField(field string) (any, error)
	ResponseContains(text string) bool
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	EventCount(eventType string) int
}

// RegisterSteps registers common step definitions used across features
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	// Background steps
	ctx.Step(`^ridelink is running$`, steps.ridelinkIsRunning)
	ctx.Step(`^I am "([^"]*)"$`, steps.iAm)
	ctx.Step(`^I am anonymous$`, steps.iAmAnonymous)

	// Generic request steps
	ctx.Step(`^I (GET|POST|DELETE) "([^"]*)"$`, steps.request)
	ctx.Step(`^I (POST|PUT) "([^"]*)" with:$`, steps.requestWithBody)

	// Response assertion steps
	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, steps.responseShouldContain)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, steps.responseFieldShouldEqual)
	ctx.Step(`^the response field "([^"]*)" should have (\d+) items?$`, steps.responseFieldShouldHaveItems)
	ctx.Step(`^I remember the response field "([^"]*)" as "([^"]*)"$`, steps.rememberField)

	// Clock and events
	ctx.Step(`^(\d+) minutes pass$`, steps.minutesPass)
	ctx.Step(`^(\d+) "([^"]*)" events? should have been published$`, steps.eventsPublished)
	ctx.Step(`^log "([^"]*)"$`, steps.logMessage)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) ridelinkIsRunning(ctx context.Context) error {
	return nil
}

func (s *commonSteps) iAm(ctx context.Context, handle string) error {
	s.tc.As(handle)
	return nil
}

func (s *commonSteps) iAmAnonymous(ctx context.Context) error {
	s.tc.As("")
	return nil
}

func (s *commonSteps) request(ctx context.Context, method, path string) error {
	return s.tc.Do(method, path, nil)
}

func (s *commonSteps) requestWithBody(ctx context.Context, method, path string, body *godog.DocString) error {
	var payload any
	if err := json.Unmarshal([]byte(body.Content), &payload); err != nil {
		return fmt.Errorf("request body is not JSON: %w", err)
	}
	return s.tc.Do(method, path, payload)
}

func (s *commonSteps) responseStatusShouldBe(ctx context.Context, expectedStatus int) error {
	actualStatus := s.tc.GetLastResponseStatus()
	if actualStatus != expectedStatus {
		return fmt.Errorf("expected status %d but got %d\nResponse: %s", expectedStatus, actualStatus, string(s.tc.GetLastResponseBody()))
	}
	return nil
}

func (s *commonSteps) responseShouldContain(ctx context.Context, text string) error {
	if !s.tc.ResponseContains(text) {
		return fmt.Errorf("response does not contain: %s\nResponse: %s", text, string(s.tc.GetLastResponseBody()))
	}
	return nil
}

func (s *commonSteps) responseFieldShouldEqual(ctx context.Context, field, expectedValue string) error {
	actualValue, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if fmt.Sprint(actualValue) != expectedValue {
		return fmt.Errorf("field %s: expected %s but got %v", field, expectedValue, actualValue)
	}
	return nil
}

func (s *commonSteps) responseFieldShouldHaveItems(ctx context.Context, field string, n int) error {
	value, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	items, ok := value.([]any)
	if !ok {
		return fmt.Errorf("field %s is not a list: %v", field, value)
	}
	if len(items) != n {
		return fmt.Errorf("field %s: expected %d items but got %d", field, n, len(items))
	}
	return nil
}

func (s *commonSteps) rememberField(ctx context.Context, field, name string) error {
	value, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	s.tc.Remember(name, fmt.Sprint(value))
	return nil
}

func (s *commonSteps) minutesPass(ctx context.Context, minutes int) error {
	s.tc.Advance(time.Duration(minutes) * time.Minute)
	return nil
}

func (s *commonSteps) eventsPublished(ctx context.Context, n int, eventType string) error {
	eventType = strings.ReplaceAll(eventType, " ", "_")
	if got := s.tc.EventCount(eventType); got != n {
		return fmt.Errorf("expected %d %s events but got %d", n, eventType, got)
	}
	return nil
}

func (s *commonSteps) logMessage(ctx context.Context, message string) error {
	fmt.Println(message)
	return nil
}
