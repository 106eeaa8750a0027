package e2e

import (
	"github.com/cucumber/godog"

	"flowguard/e2e/steps/common"
	"flowguard/e2e/steps/events"
	"flowguard/e2e/steps/policies"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (health, generic assertions)
	common.RegisterSteps(ctx, tc)

	// Register adverse-event and pause-lifecycle steps
	events.RegisterSteps(ctx, tc)

	// Register policy administration steps
	policies.RegisterSteps(ctx, tc)
}
