package e2e

import (
	"github.com/cucumber/godog"

	"ridelink/e2e/steps/common"
	"ridelink/e2e/steps/identity"
	"ridelink/e2e/steps/messaging"
	"ridelink/e2e/steps/wallet"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	identity.RegisterSteps(ctx, tc)
	messaging.RegisterSteps(ctx, tc)
	wallet.RegisterSteps(ctx, tc)
}
