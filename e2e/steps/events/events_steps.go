package events

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any, headers map[string]string) error
	GET(path string, headers map[string]string) error
	LastStatus() int
	LastBody() []byte
	GetResponseField(field string) (any, error)
	ResponseList(field string) ([]map[string]any, error)
	SetVar(key, value string)
	Var(key string) string
}

// RegisterSteps registers adverse-event and pause-lifecycle step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &eventSteps{tc: tc}

	ctx.Step(`^a client "([^"]*)"$`, steps.aClient)
	ctx.Step(`^I report a "([^"]*)" adverse event of type "([^"]*)"$`, steps.reportAdverseEvent)
	ctx.Step(`^I report an adverse event with severity "([^"]*)"$`, steps.reportWithRawSeverity)
	ctx.Step(`^I list the client's paused flows$`, steps.listPausedFlows)
	ctx.Step(`^I list the client's adverse events$`, steps.listEvents)
	ctx.Step(`^I move the reported event to status "([^"]*)"$`, steps.moveEventToStatus)
	ctx.Step(`^I manually resume the first paused flow$`, steps.resumeFirstPausedFlow)

	ctx.Step(`^the event should be recorded with action "([^"]*)"$`, steps.eventRecordedWithAction)
	ctx.Step(`^the paused flow list should have (\d+) records?$`, steps.pausedFlowListShouldHaveN)
	ctx.Step(`^every paused record should belong to the client$`, steps.everyRecordBelongsToClient)
}

type eventSteps struct {
	tc TestContext
}

func (s *eventSteps) aClient(ctx context.Context, clientID string) error {
	s.tc.SetVar("client_id", clientID)
	return nil
}

func (s *eventSteps) reportAdverseEvent(ctx context.Context, severity, eventType string) error {
	body := map[string]any{
		"client_id":   s.tc.Var("client_id"),
		"type":        eventType,
		"severity":    severity,
		"description": "reported during automated end to end run",
	}
	if err := s.tc.POST("/events", body, nil); err != nil {
		return err
	}
	if s.tc.LastStatus() == 200 {
		eventID, err := s.tc.GetResponseField("event_id")
		if err != nil {
			return err
		}
		s.tc.SetVar("event_id", fmt.Sprintf("%v", eventID))
	}
	return nil
}

func (s *eventSteps) reportWithRawSeverity(ctx context.Context, severity string) error {
	body := map[string]any{
		"client_id":   s.tc.Var("client_id"),
		"type":        "injury",
		"severity":    severity,
		"description": "severity validation probe",
	}
	return s.tc.POST("/events", body, nil)
}

func (s *eventSteps) listPausedFlows(ctx context.Context) error {
	return s.tc.GET("/flows/paused?client_id="+s.tc.Var("client_id"), nil)
}

func (s *eventSteps) listEvents(ctx context.Context) error {
	return s.tc.GET("/events?client_id="+s.tc.Var("client_id"), nil)
}

func (s *eventSteps) moveEventToStatus(ctx context.Context, status string) error {
	eventID := s.tc.Var("event_id")
	if eventID == "" {
		return fmt.Errorf("no event reported yet in this scenario")
	}
	return s.tc.POST("/events/"+eventID+"/status", map[string]any{"status": status}, nil)
}

func (s *eventSteps) resumeFirstPausedFlow(ctx context.Context) error {
	if err := s.listPausedFlows(ctx); err != nil {
		return err
	}
	records, err := s.tc.ResponseList("records")
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no paused flows to resume")
	}
	flowID, ok := records[0]["flow_id"].(string)
	if !ok {
		return fmt.Errorf("paused record has no flow_id")
	}
	return s.tc.POST("/flows/"+flowID+"/resume", nil, nil)
}

func (s *eventSteps) eventRecordedWithAction(ctx context.Context, action string) error {
	got, err := s.tc.GetResponseField("action")
	if err != nil {
		return err
	}
	if fmt.Sprintf("%v", got) != action {
		return fmt.Errorf("expected action %q, got %v", action, got)
	}
	return nil
}

func (s *eventSteps) pausedFlowListShouldHaveN(ctx context.Context, count int) error {
	records, err := s.tc.ResponseList("records")
	if err != nil {
		return err
	}
	if len(records) != count {
		return fmt.Errorf("expected %d paused records, got %d", count, len(records))
	}
	return nil
}

func (s *eventSteps) everyRecordBelongsToClient(ctx context.Context) error {
	records, err := s.tc.ResponseList("records")
	if err != nil {
		return err
	}
	want := s.tc.Var("client_id")
	for _, record := range records {
		if got, _ := record["client_id"].(string); got != want {
			return fmt.Errorf("record %v belongs to client %q, expected %q", record["id"], got, want)
		}
	}
	return nil
}
