package policies

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any, headers map[string]string) error
	GET(path string, headers map[string]string) error
	DELETE(path string, headers map[string]string) error
	LastStatus() int
	LastBody() []byte
	GetResponseField(field string) (any, error)
	ResponseList(field string) ([]map[string]any, error)
	AdminToken() (string, error)
	SetVar(key, value string)
	Var(key string) string
}

// RegisterSteps registers policy administration step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &policySteps{tc: tc}

	ctx.Step(`^an admin pause policy for "([^"]*)" events at severity "([^"]*)" with action "([^"]*)"$`, steps.createPolicy)
	ctx.Step(`^I list the pause policies as admin$`, steps.listPoliciesAsAdmin)
	ctx.Step(`^I list the pause policies without a token$`, steps.listPoliciesWithoutToken)
	ctx.Step(`^I delete the created policy$`, steps.deleteCreatedPolicy)
	ctx.Step(`^the policy list should contain the created policy$`, steps.listContainsCreatedPolicy)
}

type policySteps struct {
	tc TestContext
}

func (s *policySteps) adminHeaders() (map[string]string, error) {
	token, err := s.tc.AdminToken()
	if err != nil {
		return nil, fmt.Errorf("mint admin token: %w", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}, nil
}

func (s *policySteps) createPolicy(ctx context.Context, eventType, severity, action string) error {
	headers, err := s.adminHeaders()
	if err != nil {
		return err
	}
	body := map[string]any{
		"event_type":            eventType,
		"minimum_severity":      severity,
		"action":                action,
		"notification_channels": []string{"email"},
	}
	if err := s.tc.POST("/admin/policies", body, headers); err != nil {
		return err
	}
	if s.tc.LastStatus() != 200 {
		return fmt.Errorf("policy upsert returned %d: %s", s.tc.LastStatus(), s.tc.LastBody())
	}
	policyID, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	s.tc.SetVar("policy_id", fmt.Sprintf("%v", policyID))
	return nil
}

func (s *policySteps) listPoliciesAsAdmin(ctx context.Context) error {
	headers, err := s.adminHeaders()
	if err != nil {
		return err
	}
	return s.tc.GET("/admin/policies", headers)
}

func (s *policySteps) listPoliciesWithoutToken(ctx context.Context) error {
	return s.tc.GET("/admin/policies", nil)
}

func (s *policySteps) deleteCreatedPolicy(ctx context.Context) error {
	policyID := s.tc.Var("policy_id")
	if policyID == "" {
		return fmt.Errorf("no policy created in this scenario")
	}
	headers, err := s.adminHeaders()
	if err != nil {
		return err
	}
	return s.tc.DELETE("/admin/policies/"+policyID, headers)
}

func (s *policySteps) listContainsCreatedPolicy(ctx context.Context) error {
	policies, err := s.tc.ResponseList("policies")
	if err != nil {
		return err
	}
	want := s.tc.Var("policy_id")
	for _, policy := range policies {
		if id, _ := policy["id"].(string); strings.EqualFold(id, want) {
			return nil
		}
	}
	return fmt.Errorf("policy %q not found among %d policies", want, len(policies))
}
