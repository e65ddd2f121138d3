package identity

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

const adminHandle = "admin"

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	As(handle string)
	Do(method, path string, body any) error
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
}

// RegisterSteps registers identity registry step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &identitySteps{tc: tc}

	ctx.Step(`^"([^"]*)" is registered$`, steps.isRegistered)
	ctx.Step(`^"([^"]*)" registers as "([^"]*)"$`, steps.registers)
	ctx.Step(`^"([^"]*)" is an approved driver$`, steps.isApprovedDriver)
	ctx.Step(`^the admin sets the status of "([^"]*)" to "([^"]*)"$`, steps.adminSetsStatus)
	ctx.Step(`^the admin adjusts the reputation of "([^"]*)" by (-?\d+)$`, steps.adminAdjustsReputation)
}

type identitySteps struct {
	tc TestContext
}

func (s *identitySteps) registers(ctx context.Context, handle, displayName string) error {
	s.tc.As("")
	return s.tc.Do("POST", "/identities", map[string]string{
		"handle":       handle,
		"display_name": displayName,
	})
}

func (s *identitySteps) isRegistered(ctx context.Context, handle string) error {
	if err := s.registers(ctx, handle, handle); err != nil {
		return err
	}
	return s.expect(201)
}

func (s *identitySteps) isApprovedDriver(ctx context.Context, handle string) error {
	if err := s.isRegistered(ctx, handle); err != nil {
		return err
	}
	if err := s.adminSetsStatus(ctx, handle, "approved"); err != nil {
		return err
	}
	return s.expect(200)
}

func (s *identitySteps) adminSetsStatus(ctx context.Context, handle, status string) error {
	s.tc.As(adminHandle)
	return s.tc.Do("PUT", "/identities/"+handle+"/status", map[string]string{"status": status})
}

func (s *identitySteps) adminAdjustsReputation(ctx context.Context, handle string, delta int) error {
	s.tc.As(adminHandle)
	if err := s.tc.Do("POST", "/identities/"+handle+"/reputation", map[string]int{"delta": delta}); err != nil {
		return err
	}
	return s.expect(200)
}

func (s *identitySteps) expect(status int) error {
	if got := s.tc.GetLastResponseStatus(); got != status {
		return fmt.Errorf("expected status %d but got %d\nResponse: %s", status, got, string(s.tc.GetLastResponseBody()))
	}
	return nil
}
