package workflow

import (
	"context"
	"encoding/json"

	"go-leaveflow/internal/events"
	"go-leaveflow/internal/messaging/kafka"
	"go-leaveflow/internal/shared/contextutil"

	"github.com/google/uuid"
)

const outboxAggregateType = "leave_workflow"

// OutboxRecorder writes each transition to the outbox in the step's
// transaction. The relay worker publishes it later.
type OutboxRecorder struct {
	outbox kafka.OutboxRepository
}

func NewOutboxRecorder(outbox kafka.OutboxRepository) *OutboxRecorder {
	return &OutboxRecorder{outbox: outbox}
}

func (r *OutboxRecorder) RecordTransition(ctx context.Context, event TransitionEvent) error {
	requestID := contextutil.GetRequestID(ctx)
	payload, err := json.Marshal(events.LeaveWorkflowTransitionedEvent{
		EventType:  events.LeaveWorkflowTransitionedEventType,
		RequestID:  requestID,
		ThreadID:   event.ThreadID,
		CompanyID:  event.CompanyID,
		EmployeeID: event.EmployeeID,
		LeaveID:    event.RequestID,
		FromStatus: string(event.From),
		ToStatus:   string(event.To),
		Trigger:    string(event.Trigger),
		ActorID:    event.ActorID,
		OccurredAt: event.OccurredAt,
	})
	if err != nil {
		return err
	}

	return r.outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     requestID,
		AggregateType: outboxAggregateType,
		AggregateID:   event.ThreadID,
		EventType:     events.LeaveWorkflowTransitionedEventType,
		Topic:         events.LeaveWorkflowTransitionedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
		CreatedAt:     event.OccurredAt,
		UpdatedAt:     event.OccurredAt,
	})
}
