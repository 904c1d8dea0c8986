package bootstrap

import (
	"context"
	"time"

	"go-leaveflow/internal/shared/contextutil"

	"go.uber.org/zap"
)

// AuditLog is a process level event worth keeping apart from request logs.
type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}

type StdoutAuditLogger struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewStdoutAuditLogger(logger ...*zap.Logger) *StdoutAuditLogger {
	l := zap.L().Named("audit")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit")
	}
	return &StdoutAuditLogger{
		logger: l,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (l *StdoutAuditLogger) Log(ctx context.Context, entry AuditLog) {
	fields := []zap.Field{
		zap.String("timestamp", l.now().Format(time.RFC3339)),
		zap.String("action", entry.Action),
		zap.String("message", entry.Message),
		zap.Any("meta", entry.Meta),
	}
	if md := contextutil.ExtractMetadata(ctx); md.RequestID != "" {
		fields = append(fields,
			zap.String("request_id", md.RequestID),
			zap.String("user_id", md.UserID),
			zap.String("company_id", md.CompanyID),
		)
	}
	l.logger.Info("audit event", fields...)
}
