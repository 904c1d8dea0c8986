package workflow

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// HRReviewThresholdDays is the default number of days above which a
// manager-approved request also needs HR review.
var HRReviewThresholdDays = decimal.NewFromInt(5)

type Node string

const (
	NodeValidating     Node = "validating"
	NodePendingManager Node = "pending_manager"
	NodePendingHR      Node = "pending_hr"
	NodeDone           Node = "done"
)

// IsSuspended reports whether the run is waiting on a human decision.
func (n Node) IsSuspended() bool {
	return n == NodePendingManager || n == NodePendingHR
}

type Status string

const (
	StatusPendingValidation      Status = "pending_validation"
	StatusValidationFailed       Status = "validation_failed"
	StatusPendingManagerApproval Status = "pending_manager_approval"
	StatusPendingHRReview        Status = "pending_hr_review"
	StatusApproved               Status = "approved"
	StatusRejected               Status = "rejected"
	StatusCancelled              Status = "cancelled"
)

var statusNodes = map[Status]Node{
	StatusPendingValidation:      NodeValidating,
	StatusValidationFailed:       NodeDone,
	StatusPendingManagerApproval: NodePendingManager,
	StatusPendingHRReview:        NodePendingHR,
	StatusApproved:               NodeDone,
	StatusRejected:               NodeDone,
	StatusCancelled:              NodeDone,
}

func (s Status) IsValid() bool {
	_, ok := statusNodes[s]
	return ok
}

func (s Status) IsTerminal() bool {
	return statusNodes[s] == NodeDone
}

// Node returns the graph position a run with this status sits at.
func (s Status) Node() Node {
	return statusNodes[s]
}

type Trigger string

const (
	TriggerValidationPassed Trigger = "validation_passed"
	TriggerValidationFailed Trigger = "validation_failed"
	TriggerManagerApprove   Trigger = "manager_approve"
	TriggerManagerReject    Trigger = "manager_reject"
	TriggerHRApprove        Trigger = "hr_approve"
	TriggerHRReject         Trigger = "hr_reject"
	TriggerCancel           Trigger = "cancel"
)

type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

func (d Decision) IsValid() bool {
	return d == DecisionApproved || d == DecisionRejected
}

// RequestSnapshot holds what is needed to create or update the leave
// request. Dates are YYYY-MM-DD.
type RequestSnapshot struct {
	PolicyID      string          `json:"policy_id"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	StartDayType  string          `json:"start_day_type"`
	EndDayType    string          `json:"end_day_type"`
	Reason        string          `json:"reason"`
	AttachmentURL string          `json:"attachment_url,omitempty"`
	TotalDays     decimal.Decimal `json:"total_days"`
}

type HistoryEntry struct {
	From    Status    `json:"from"`
	To      Status    `json:"to"`
	Trigger Trigger   `json:"trigger"`
	ActorID string    `json:"actor_id,omitempty"`
	Remarks string    `json:"remarks,omitempty"`
	At      time.Time `json:"at"`
}

// State is the persisted unit of work for one approval run. It is only
// mutated by the Engine and is immutable once Node is NodeDone.
type State struct {
	ThreadID         string          `json:"thread_id"`
	CompanyID        string          `json:"company_id"`
	EmployeeID       string          `json:"employee_id"`
	Node             Node            `json:"node"`
	Status           Status          `json:"status"`
	RequestSnapshot  RequestSnapshot `json:"request_snapshot"`
	ValidationErrors []string        `json:"validation_errors"`
	ManagerID        string          `json:"manager_id,omitempty"`
	ManagerDecision  Decision        `json:"manager_decision,omitempty"`
	ManagerRemarks   string          `json:"manager_remarks,omitempty"`
	HRID             string          `json:"hr_id,omitempty"`
	HRDecision       Decision        `json:"hr_decision,omitempty"`
	HRRemarks        string          `json:"hr_remarks,omitempty"`
	RequestID        string          `json:"request_id,omitempty"`
	RequiresHRReview bool            `json:"requires_hr_review"`
	History          []HistoryEntry  `json:"history"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	c.ValidationErrors = append([]string(nil), s.ValidationErrors...)
	c.History = append([]HistoryEntry(nil), s.History...)
	return &c
}

// Message is the caller-facing summary of the run's current status.
func (s *State) Message() string {
	switch s.Status {
	case StatusValidationFailed:
		return "Validation failed: " + strings.Join(s.ValidationErrors, "; ")
	case StatusPendingManagerApproval:
		return "Leave request submitted. Awaiting approval from manager."
	case StatusPendingHRReview:
		return "Manager approved. Awaiting HR review."
	case StatusApproved:
		return "Leave approved! " + s.RequestSnapshot.TotalDays.StringFixed(1) + " days."
	case StatusRejected:
		return "Leave request was rejected."
	case StatusCancelled:
		return "Leave request was cancelled."
	default:
		return "Leave request is being validated."
	}
}

// ApproverRemarks joins manager and HR remarks for the leave request.
func (s *State) ApproverRemarks() *string {
	var parts []string
	if s.ManagerRemarks != "" {
		parts = append(parts, "Manager: "+s.ManagerRemarks)
	}
	if s.HRRemarks != "" {
		parts = append(parts, "HR: "+s.HRRemarks)
	}
	if len(parts) == 0 {
		return nil
	}
	joined := strings.Join(parts, "\n")
	return &joined
}

// overlaps reports whether the snapshot's date range intersects
// [start, end]. Both use YYYY-MM-DD, which orders lexically.
func (r RequestSnapshot) overlaps(start, end string) bool {
	return r.StartDate <= end && r.EndDate >= start
}
