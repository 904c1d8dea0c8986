package workflow

import (
	"time"

	"go-leaveflow/internal/validation"
)

type StartRequest struct {
	PolicyID      string `json:"policy_id" binding:"required,uuid"`
	StartDate     string `json:"start_date" binding:"required,isodate"`
	EndDate       string `json:"end_date" binding:"required,isodate"`
	StartDayType  string `json:"start_day_type" binding:"omitempty,oneof=full first_half second_half"`
	EndDayType    string `json:"end_day_type" binding:"omitempty,oneof=full first_half second_half"`
	Reason        string `json:"reason" binding:"required,max=1000"`
	AttachmentURL string `json:"attachment_url" binding:"omitempty,url"`
}

type DecisionRequest struct {
	ThreadID string `json:"thread_id" binding:"required"`
	Decision string `json:"decision" binding:"required,oneof=approved rejected"`
	Remarks  string `json:"remarks" binding:"max=1000"`
}

type CancelRequest struct {
	ThreadID string `json:"thread_id" binding:"required"`
	Remarks  string `json:"remarks" binding:"max=1000"`
}

type StartResponse struct {
	ThreadID         string                 `json:"thread_id"`
	Status           Status                 `json:"status"`
	TotalDays        string                 `json:"total_days,omitempty"`
	RequestID        string                 `json:"request_id,omitempty"`
	RequiresHRReview bool                   `json:"requires_hr_review"`
	Violations       []validation.Violation `json:"violations,omitempty"`
	Message          string                 `json:"message"`
}

type DecisionResponse struct {
	ThreadID string `json:"thread_id"`
	Status   Status `json:"status"`
	Message  string `json:"message"`
}

type StatusResponse struct {
	ThreadID         string         `json:"thread_id"`
	Node             Node           `json:"node"`
	Status           Status         `json:"status"`
	EmployeeID       string         `json:"employee_id"`
	PolicyID         string         `json:"policy_id"`
	StartDate        string         `json:"start_date"`
	EndDate          string         `json:"end_date"`
	StartDayType     string         `json:"start_day_type"`
	EndDayType       string         `json:"end_day_type"`
	Reason           string         `json:"reason"`
	TotalDays        string         `json:"total_days"`
	RequiresHRReview bool           `json:"requires_hr_review"`
	ValidationErrors []string       `json:"validation_errors"`
	ManagerID        string         `json:"manager_id,omitempty"`
	ManagerDecision  Decision       `json:"manager_decision,omitempty"`
	ManagerRemarks   string         `json:"manager_remarks,omitempty"`
	HRID             string         `json:"hr_id,omitempty"`
	HRDecision       Decision       `json:"hr_decision,omitempty"`
	HRRemarks        string         `json:"hr_remarks,omitempty"`
	RequestID        string         `json:"request_id,omitempty"`
	History          []HistoryEntry `json:"history"`
	Message          string         `json:"message"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

type RunSummary struct {
	ThreadID  string    `json:"thread_id"`
	Status    Status    `json:"status"`
	PolicyID  string    `json:"policy_id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	TotalDays string    `json:"total_days"`
	CreatedAt time.Time `json:"created_at"`
}

func mapToStartResponse(st *State, violations []validation.Violation) StartResponse {
	resp := StartResponse{
		ThreadID:         st.ThreadID,
		Status:           st.Status,
		RequestID:        st.RequestID,
		RequiresHRReview: st.RequiresHRReview,
		Violations:       violations,
		Message:          st.Message(),
	}
	if st.Status != StatusValidationFailed {
		resp.TotalDays = st.RequestSnapshot.TotalDays.StringFixed(1)
	}
	return resp
}

func mapToDecisionResponse(st *State) DecisionResponse {
	return DecisionResponse{ThreadID: st.ThreadID, Status: st.Status, Message: st.Message()}
}

func mapToStatusResponse(st *State) StatusResponse {
	snap := st.RequestSnapshot
	return StatusResponse{
		ThreadID:         st.ThreadID,
		Node:             st.Node,
		Status:           st.Status,
		EmployeeID:       st.EmployeeID,
		PolicyID:         snap.PolicyID,
		StartDate:        snap.StartDate,
		EndDate:          snap.EndDate,
		StartDayType:     snap.StartDayType,
		EndDayType:       snap.EndDayType,
		Reason:           snap.Reason,
		TotalDays:        snap.TotalDays.StringFixed(1),
		RequiresHRReview: st.RequiresHRReview,
		ValidationErrors: st.ValidationErrors,
		ManagerID:        st.ManagerID,
		ManagerDecision:  st.ManagerDecision,
		ManagerRemarks:   st.ManagerRemarks,
		HRID:             st.HRID,
		HRDecision:       st.HRDecision,
		HRRemarks:        st.HRRemarks,
		RequestID:        st.RequestID,
		History:          st.History,
		Message:          st.Message(),
		CreatedAt:        st.CreatedAt,
		UpdatedAt:        st.UpdatedAt,
	}
}

func mapToRunSummaries(states []*State) []RunSummary {
	out := make([]RunSummary, 0, len(states))
	for _, st := range states {
		out = append(out, RunSummary{
			ThreadID:  st.ThreadID,
			Status:    st.Status,
			PolicyID:  st.RequestSnapshot.PolicyID,
			StartDate: st.RequestSnapshot.StartDate,
			EndDate:   st.RequestSnapshot.EndDate,
			TotalDays: st.RequestSnapshot.TotalDays.StringFixed(1),
			CreatedAt: st.CreatedAt,
		})
	}
	return out
}
