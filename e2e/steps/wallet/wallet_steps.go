package wallet

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	As(handle string)
	Do(method, path string, body any) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
}

// RegisterSteps registers wallet step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &walletSteps{tc: tc}

	ctx.Step(`^"([^"]*)" deposits (\d+)$`, steps.deposits)
	ctx.Step(`^"([^"]*)" transfers (\d+) to "([^"]*)"$`, steps.transfers)
	ctx.Step(`^the balance of "([^"]*)" should be (\d+)$`, steps.balanceShouldBe)
}

type walletSteps struct {
	tc TestContext
}

func (s *walletSteps) deposits(ctx context.Context, handle string, amount int) error {
	s.tc.As(handle)
	if err := s.tc.Do("POST", "/wallet/deposit", map[string]int{"amount": amount}); err != nil {
		return err
	}
	if got := s.tc.GetLastResponseStatus(); got != 200 {
		return fmt.Errorf("deposit failed with status %d: %s", got, string(s.tc.GetLastResponseBody()))
	}
	return nil
}

func (s *walletSteps) transfers(ctx context.Context, from string, amount int, to string) error {
	s.tc.As(from)
	return s.tc.Do("POST", "/wallet/transfer", map[string]any{"to": to, "amount": amount})
}

func (s *walletSteps) balanceShouldBe(ctx context.Context, handle string, expected int) error {
	s.tc.As(handle)
	if err := s.tc.Do("GET", "/wallet", nil); err != nil {
		return err
	}
	balance, err := s.tc.GetResponseField("balance")
	if err != nil {
		return err
	}
	if fmt.Sprint(balance) != fmt.Sprint(expected) {
		return fmt.Errorf("%s balance: expected %d but got %v", handle, expected, balance)
	}
	return nil
}
