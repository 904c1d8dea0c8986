package events

import "time"

const (
	LeaveWorkflowTransitionedTopic     = "leave.workflow.transitioned.v1"
	LeaveWorkflowTransitionedEventType = "leave_workflow_transitioned"
)

type LeaveWorkflowTransitionedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	ThreadID   string    `json:"thread_id"`
	CompanyID  string    `json:"company_id"`
	EmployeeID string    `json:"employee_id"`
	LeaveID    string    `json:"leave_request_id,omitempty"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Trigger    string    `json:"trigger"`
	ActorID    string    `json:"actor_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
