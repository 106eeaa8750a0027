package e2e

import (
	"context"
	"os"
	"testing"

	"github.com/cucumber/godog"
)

// The suite runs against a deployed stack: the flowguard service plus the
// flow runner and notifier it is configured against. Point FLOWGUARD_E2E_URL
// at the service and FLOWGUARD_E2E_ADMIN_SECRET at its admin JWT secret.
func TestFeatures(t *testing.T) {
	baseURL := os.Getenv("FLOWGUARD_E2E_URL")
	if baseURL == "" {
		t.Skip("FLOWGUARD_E2E_URL not set, skipping end to end suite")
	}
	adminSecret := os.Getenv("FLOWGUARD_E2E_ADMIN_SECRET")
	if adminSecret == "" {
		t.Fatal("FLOWGUARD_E2E_ADMIN_SECRET must be set when FLOWGUARD_E2E_URL is")
	}

	tc := NewTestContext(baseURL, adminSecret)

	suite := godog.TestSuite{
		ScenarioInitializer: func(ctx *godog.ScenarioContext) {
			ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
				tc.Reset()
				return c, nil
			})
			RegisterSteps(ctx, tc)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("end to end suite failed")
	}
}
