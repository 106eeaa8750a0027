package httptransport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	pauseconfig "flowguard/internal/pause/config"
	"flowguard/internal/pause/handler"
	"flowguard/internal/pause/models"
	"flowguard/internal/pause/ports"
	"flowguard/internal/pause/service/engine"
	"flowguard/internal/pause/service/policyadmin"
	"flowguard/internal/pause/service/resolver"
	ledgerstore "flowguard/internal/pause/store/ledger"
	policystore "flowguard/internal/pause/store/policy"
	timerstore "flowguard/internal/pause/store/timer"
	httptransport "flowguard/internal/transport/http"
	id "flowguard/pkg/domain"
)

const adminSecret = "router-test-secret"

// stubRunner is a minimal in-memory flow runner for HTTP-level tests.
type stubRunner struct {
	mu     sync.Mutex
	flows  map[id.FlowID]models.FlowRef
	paused map[id.FlowID]bool
	client id.ClientID
}

func (r *stubRunner) PauseFlow(_ context.Context, flowID id.FlowID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.flows[flowID]; !ok {
		return ports.ErrFlowNotFound
	}
	r.paused[flowID] = true
	return nil
}

func (r *stubRunner) ResumeFlow(_ context.Context, flowID id.FlowID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.flows[flowID]; !ok {
		return ports.ErrFlowNotFound
	}
	delete(r.paused, flowID)
	return nil
}

func (r *stubRunner) ListActiveFlows(_ context.Context, clientID id.ClientID) ([]models.FlowRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if clientID != r.client {
		return nil, nil
	}
	refs := make([]models.FlowRef, 0, len(r.flows))
	for _, ref := range r.flows {
		refs = append(refs, ref)
	}
	return refs, nil
}

type RouterSuite struct {
	suite.Suite

	server   *httptest.Server
	runner   *stubRunner
	ledger   *ledgerstore.InMemoryLedger
	clientID id.ClientID
	flowID   id.FlowID
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.clientID = id.NewClientID()
	s.flowID = id.NewFlowID()
	s.runner = &stubRunner{
		flows:  map[id.FlowID]models.FlowRef{s.flowID: {ID: s.flowID, Name: "morning-checkin"}},
		paused: map[id.FlowID]bool{},
		client: s.clientID,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	policies := policystore.New()
	s.ledger = ledgerstore.New()
	timers := timerstore.New()

	res, err := resolver.New(policies)
	s.Require().NoError(err)
	eng, err := engine.New(s.ledger, res, s.runner, nil, timers, pauseconfig.DefaultConfig().Engine, engine.WithLogger(logger))
	s.Require().NoError(err)
	admin, err := policyadmin.New(policies, policyadmin.WithLogger(logger))
	s.Require().NoError(err)

	h := handler.New(eng, admin, logger)
	router := httptransport.NewRouter(h, httptransport.Config{AdminJWTSecret: adminSecret}, logger)
	s.server = httptest.NewServer(router)
}

func (s *RouterSuite) TearDownTest() {
	s.server.Close()
}

func (s *RouterSuite) adminToken(role string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(adminSecret))
	s.Require().NoError(err)
	return signed
}

func (s *RouterSuite) do(method, path, token string, body any) *http.Response {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *RouterSuite) upsertPolicy(req models.UpsertPolicyRequest) {
	resp := s.do(http.MethodPost, "/admin/policies", s.adminToken("admin"), req)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)
}

func (s *RouterSuite) submitEvent(severity string) models.HandlingResult {
	resp := s.do(http.MethodPost, "/events", "", models.SubmitEventRequest{
		ClientID:    s.clientID.String(),
		Type:        "injury",
		Severity:    severity,
		Description: "fell during session",
	})
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var result models.HandlingResult
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&result))
	return result
}

func (s *RouterSuite) TestSubmitEventPausesFlows() {
	s.upsertPolicy(models.UpsertPolicyRequest{
		EventType:            "injury",
		MinimumSeverity:      "grave",
		Action:               "pause-all-flows",
		NotificationChannels: []string{"email"},
	})

	result := s.submitEvent("critica")
	s.Equal(models.ActionPauseAllFlows, result.Action)
	s.Equal([]id.FlowID{s.flowID}, result.FlowsPaused)

	resp := s.do(http.MethodGet, "/flows/paused?client_id="+s.clientID.String(), "", nil)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var paused models.PausedFlowsResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&paused))
	s.Require().Len(paused.Records, 1)
	s.Equal(s.flowID, paused.Records[0].FlowID)
}

func (s *RouterSuite) TestSubmitEventValidation() {
	s.Run("unknown severity", func() {
		resp := s.do(http.MethodPost, "/events", "", models.SubmitEventRequest{
			ClientID: s.clientID.String(),
			Type:     "injury",
			Severity: "catastrophic",
		})
		defer resp.Body.Close()
		s.Equal(http.StatusBadRequest, resp.StatusCode)
	})

	s.Run("malformed client id", func() {
		resp := s.do(http.MethodPost, "/events", "", models.SubmitEventRequest{
			ClientID: "not-a-uuid",
			Type:     "injury",
			Severity: "leve",
		})
		defer resp.Body.Close()
		s.Equal(http.StatusBadRequest, resp.StatusCode)
	})

	s.Run("malformed body", func() {
		req, err := http.NewRequest(http.MethodPost, s.server.URL+"/events", bytes.NewReader([]byte("{")))
		s.Require().NoError(err)
		resp, err := s.server.Client().Do(req)
		s.Require().NoError(err)
		defer resp.Body.Close()
		s.Equal(http.StatusBadRequest, resp.StatusCode)
	})
}

func (s *RouterSuite) TestManualResume() {
	s.upsertPolicy(models.UpsertPolicyRequest{
		EventType:            "injury",
		MinimumSeverity:      "grave",
		Action:               "pause-all-flows",
		NotificationChannels: []string{"email"},
	})
	s.submitEvent("grave")

	resp := s.do(http.MethodPost, fmt.Sprintf("/flows/%s/resume", s.flowID), "", nil)
	resp.Body.Close()
	s.Equal(http.StatusNoContent, resp.StatusCode)

	// Resuming a flow that is no longer paused is a caller error.
	resp = s.do(http.MethodPost, fmt.Sprintf("/flows/%s/resume", s.flowID), "", nil)
	resp.Body.Close()
	s.Equal(http.StatusConflict, resp.StatusCode)
}

func (s *RouterSuite) TestEventLifecycle() {
	result := s.submitEvent("leve")

	resp := s.do(http.MethodPost, fmt.Sprintf("/events/%s/status", result.EventID), "", models.UpdateEventStatusRequest{Status: "monitoring"})
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var event models.AdverseEvent
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&event))
	s.Equal(models.EventStatusMonitoring, event.Status)

	listResp := s.do(http.MethodGet, "/events?client_id="+s.clientID.String()+"&status=monitoring", "", nil)
	defer listResp.Body.Close()
	s.Require().Equal(http.StatusOK, listResp.StatusCode)
	var events models.EventListResponse
	s.Require().NoError(json.NewDecoder(listResp.Body).Decode(&events))
	s.Len(events.Events, 1)

	badResp := s.do(http.MethodPost, fmt.Sprintf("/events/%s/status", result.EventID), "", models.UpdateEventStatusRequest{Status: "active"})
	badResp.Body.Close()
	s.Equal(http.StatusConflict, badResp.StatusCode)
}

func (s *RouterSuite) TestAdminGuard() {
	s.Run("no token", func() {
		resp := s.do(http.MethodGet, "/admin/policies", "", nil)
		resp.Body.Close()
		s.Equal(http.StatusUnauthorized, resp.StatusCode)
	})

	s.Run("wrong role", func() {
		resp := s.do(http.MethodGet, "/admin/policies", s.adminToken("viewer"), nil)
		resp.Body.Close()
		s.Equal(http.StatusUnauthorized, resp.StatusCode)
	})

	s.Run("garbage token", func() {
		resp := s.do(http.MethodGet, "/admin/policies", "not.a.jwt", nil)
		resp.Body.Close()
		s.Equal(http.StatusUnauthorized, resp.StatusCode)
	})

	s.Run("admin role", func() {
		resp := s.do(http.MethodGet, "/admin/policies", s.adminToken("admin"), nil)
		defer resp.Body.Close()
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		var policies models.PolicyListResponse
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(&policies))
		s.Empty(policies.Policies)
	})
}

func (s *RouterSuite) TestPolicyAdminRoundTrip() {
	s.upsertPolicy(models.UpsertPolicyRequest{
		EventType:            "allergy",
		MinimumSeverity:      "moderada",
		Action:               "notify-only",
		NotificationChannels: []string{"email", "push"},
	})

	resp := s.do(http.MethodGet, "/admin/policies", s.adminToken("admin"), nil)
	var policies models.PolicyListResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&policies))
	resp.Body.Close()
	s.Require().Len(policies.Policies, 1)
	policyID := policies.Policies[0].ID

	s.Run("invalid policy rejected", func() {
		badResp := s.do(http.MethodPost, "/admin/policies", s.adminToken("admin"), models.UpsertPolicyRequest{
			EventType:       "allergy",
			MinimumSeverity: "moderada",
			Action:          "pause-specific-flows",
		})
		badResp.Body.Close()
		s.Equal(http.StatusBadRequest, badResp.StatusCode)
	})

	s.Run("delete", func() {
		delResp := s.do(http.MethodDelete, "/admin/policies/"+policyID.String(), s.adminToken("admin"), nil)
		delResp.Body.Close()
		s.Equal(http.StatusNoContent, delResp.StatusCode)

		again := s.do(http.MethodDelete, "/admin/policies/"+policyID.String(), s.adminToken("admin"), nil)
		again.Body.Close()
		s.Equal(http.StatusNotFound, again.StatusCode)
	})
}

func (s *RouterSuite) TestHealthz() {
	resp := s.do(http.MethodGet, "/healthz", "", nil)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}
