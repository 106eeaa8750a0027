// Package handler exposes the pause feature over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"flowguard/internal/pause/models"
	id "flowguard/pkg/domain"
	dErrors "flowguard/pkg/domain-errors"
	"flowguard/pkg/platform/httputil"
	"flowguard/pkg/requestcontext"
)

// EngineService defines the engine operations the handlers need.
type EngineService interface {
	Handle(ctx context.Context, event *models.AdverseEvent) (*models.HandlingResult, error)
	ResumeManually(ctx context.Context, flowID id.FlowID) (*models.FlowPauseRecord, error)
	CancelFlow(ctx context.Context, flowID id.FlowID) (*models.FlowPauseRecord, error)
	ListPausedFlows(ctx context.Context, clientID *id.ClientID) ([]*models.FlowPauseRecord, error)
	ListEvents(ctx context.Context, clientID *id.ClientID, status *models.EventStatus) ([]*models.AdverseEvent, error)
	UpdateEventStatus(ctx context.Context, eventID id.EventID, next models.EventStatus) (*models.AdverseEvent, error)
}

// PolicyService defines the policy administration operations.
type PolicyService interface {
	Upsert(ctx context.Context, policy *models.PausePolicy) error
	List(ctx context.Context) ([]*models.PausePolicy, error)
	Delete(ctx context.Context, policyID id.PolicyID) error
}

type Handler struct {
	engine   EngineService
	policies PolicyService
	logger   *slog.Logger
}

func New(engine EngineService, policies PolicyService, logger *slog.Logger) *Handler {
	return &Handler{
		engine:   engine,
		policies: policies,
		logger:   logger,
	}
}

// Register mounts the public routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/events", h.handleSubmitEvent)
	r.Get("/events", h.handleListEvents)
	r.Post("/events/{eventID}/status", h.handleUpdateEventStatus)
	r.Post("/flows/{flowID}/resume", h.handleResumeFlow)
	r.Post("/flows/{flowID}/cancel", h.handleCancelFlow)
	r.Get("/flows/paused", h.handleListPausedFlows)
}

// RegisterAdmin mounts the policy administration routes. The caller wraps
// them in the admin token middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/policies", h.handleListPolicies)
	r.Post("/policies", h.handleUpsertPolicy)
	r.Delete("/policies/{policyID}", h.handleDeletePolicy)
}

func (h *Handler) handleSubmitEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.SubmitEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	event, err := req.ToEvent(requestcontext.Now(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "invalid adverse event submission", "error", err.Error())
		httputil.WriteError(w, err)
		return
	}

	result, err := h.engine.Handle(ctx, event)
	if err != nil {
		h.logger.ErrorContext(ctx, "handling adverse event failed", "event_id", event.ID.String(), "error", err.Error())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var clientID *id.ClientID
	if raw := r.URL.Query().Get("client_id"); raw != "" {
		parsed, err := id.ParseClientID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		clientID = &parsed
	}

	var status *models.EventStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := models.EventStatus(raw)
		if !s.IsValid() {
			httputil.WriteError(w, dErrors.Newf(dErrors.CodeInvalidInput, "invalid event status %q", raw))
			return
		}
		status = &s
	}

	events, err := h.engine.ListEvents(ctx, clientID, status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if events == nil {
		events = []*models.AdverseEvent{}
	}
	httputil.WriteJSON(w, http.StatusOK, models.EventListResponse{Events: events})
}

func (h *Handler) handleUpdateEventStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req models.UpdateEventStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	event, err := h.engine.UpdateEventStatus(ctx, eventID, models.EventStatus(req.Status))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, event)
}

func (h *Handler) handleResumeFlow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	flowID, err := id.ParseFlowID(chi.URLParam(r, "flowID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if _, err := h.engine.ResumeManually(ctx, flowID); err != nil {
		if !dErrors.HasCode(err, dErrors.CodeConflict) {
			h.logger.ErrorContext(ctx, "manual resume failed", "flow_id", flowID.String(), "error", err.Error())
		}
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCancelFlow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	flowID, err := id.ParseFlowID(chi.URLParam(r, "flowID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if _, err := h.engine.CancelFlow(ctx, flowID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListPausedFlows(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var clientID *id.ClientID
	if raw := r.URL.Query().Get("client_id"); raw != "" {
		parsed, err := id.ParseClientID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		clientID = &parsed
	}

	records, err := h.engine.ListPausedFlows(ctx, clientID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if records == nil {
		records = []*models.FlowPauseRecord{}
	}
	httputil.WriteJSON(w, http.StatusOK, models.PausedFlowsResponse{Records: records})
}

func (h *Handler) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.policies.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if policies == nil {
		policies = []*models.PausePolicy{}
	}
	httputil.WriteJSON(w, http.StatusOK, models.PolicyListResponse{Policies: policies})
}

func (h *Handler) handleUpsertPolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.UpsertPolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	policy, err := req.ToPolicy()
	if err != nil {
		h.logger.WarnContext(ctx, "invalid policy upsert", "error", err.Error())
		httputil.WriteError(w, err)
		return
	}

	if err := h.policies.Upsert(ctx, policy); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, policy)
}

func (h *Handler) handleDeletePolicy(w http.ResponseWriter, r *http.Request) {
	policyID, err := id.ParsePolicyID(chi.URLParam(r, "policyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.policies.Delete(r.Context(), policyID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
