package models

// PolicyListResponse wraps the configured policies for the dashboard.
type PolicyListResponse struct {
	Policies []*PausePolicy `json:"policies"`
}

// PausedFlowsResponse wraps the currently paused ledger records.
type PausedFlowsResponse struct {
	Records []*FlowPauseRecord `json:"records"`
}

// EventListResponse wraps adverse events for the dashboard read model.
type EventListResponse struct {
	Events []*AdverseEvent `json:"events"`
}
