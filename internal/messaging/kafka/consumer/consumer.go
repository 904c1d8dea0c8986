package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-leaveflow/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the subset of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type BalanceInitializer interface {
	InitializeYear(ctx context.Context, companyID, employeeID string, year int) (int, error)
}

// ConsumeEmployeeLifecycle seeds leave balances for newly created employees.
// Messages are committed only after the balances exist, so a crash replays
// the event and InitializeYear skips what is already there.
func ConsumeEmployeeLifecycle(
	ctx context.Context,
	reader MessageReader,
	initializer BalanceInitializer,
	logger *zap.Logger,
	now func() time.Time,
) {
	if now == nil {
		now = time.Now
	}
	log := logger.Named("kafka.consumer.employee_lifecycle")
	log.Info("employee lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("employee lifecycle consumer stopped")
				return
			}
			log.Error("fetch employee lifecycle message failed", zap.Error(err))
			continue
		}

		if err := HandleEmployeeCreated(ctx, msg, initializer, now().UTC()); err != nil {
			log.Error("initialize balances from employee_created failed",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit employee lifecycle message failed", zap.Error(err))
		}
	}
}

// HandleEmployeeCreated returns nil for messages that should be committed,
// including undecodable ones and other lifecycle event types.
func HandleEmployeeCreated(ctx context.Context, msg kafkago.Message, initializer BalanceInitializer, now time.Time) error {
	log := zap.L().Named("kafka.consumer.employee_lifecycle")

	var event events.EmployeeCreatedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode employee lifecycle event failed", zap.Error(err))
		return nil
	}
	if event.EventType != "" && event.EventType != events.EmployeeCreatedEventType {
		log.Debug("skipping lifecycle event", zap.String("event_type", event.EventType))
		return nil
	}
	if event.CompanyID == "" || event.EmployeeID == "" {
		log.Warn("employee_created event missing ids, skipping")
		return nil
	}

	created, err := initializer.InitializeYear(ctx, event.CompanyID, event.EmployeeID, now.Year())
	if err != nil {
		return fmt.Errorf("employee %s: %w", event.EmployeeID, err)
	}

	log.Info("leave balances initialized from employee_created event",
		zap.String("employee_id", event.EmployeeID),
		zap.String("company_id", event.CompanyID),
		zap.Int("created", created),
	)
	return nil
}
