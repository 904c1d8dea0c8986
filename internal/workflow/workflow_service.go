package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	employeeerrors "go-leaveflow/internal/employee/errors"
	"go-leaveflow/internal/leave"
	leaveerrors "go-leaveflow/internal/leave/errors"
	"go-leaveflow/internal/shared/apperror"
	"go-leaveflow/internal/shared/contextutil"
	"go-leaveflow/internal/validation"
	workflowerrors "go-leaveflow/internal/workflow/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Runner is the engine surface the service drives.
type Runner interface {
	Start(ctx context.Context, threadID string, in StartInput) (*State, []validation.Violation, error)
	SubmitManagerDecision(ctx context.Context, threadID string, actor Actor, decision Decision, remarks string) (*State, error)
	SubmitHRDecision(ctx context.Context, threadID string, actor Actor, decision Decision, remarks string) (*State, error)
	Cancel(ctx context.Context, threadID string, actor Actor, remarks string) (*State, error)
	Status(ctx context.Context, threadID string) (*State, error)
}

//go:generate mockgen -source=workflow_service.go -destination=mock/workflow_service_mock.go -package=mock
type Service interface {
	Start(ctx context.Context, actor Actor, req StartRequest) (StartResponse, error)
	SubmitManagerDecision(ctx context.Context, actor Actor, req DecisionRequest) (DecisionResponse, error)
	SubmitHRDecision(ctx context.Context, actor Actor, req DecisionRequest) (DecisionResponse, error)
	Cancel(ctx context.Context, actor Actor, req CancelRequest) (DecisionResponse, error)
	GetStatus(ctx context.Context, actor Actor, threadID string) (StatusResponse, error)
	ListRuns(ctx context.Context, actor Actor) ([]RunSummary, error)
}

type ServiceConfig struct {
	// MaxConflictRetries bounds how often a step is re-run after a
	// checkpoint version conflict before the conflict is returned.
	MaxConflictRetries int
	RetryBackoff       time.Duration
}

type service struct {
	runner Runner
	store  CheckpointStore
	cache  StatusCache
	sf     *singleflight.Group
	cfg    ServiceConfig
	now    func() time.Time
	logger *zap.Logger
}

// NewService wraps runner with retries, ownership checks and the status
// cache. cache may be nil.
func NewService(runner Runner, store CheckpointStore, cache StatusCache, cfg ServiceConfig, logger ...*zap.Logger) Service {
	l := zap.L().Named("workflow.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("workflow.service")
	}
	if cfg.MaxConflictRetries < 0 {
		cfg.MaxConflictRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 20 * time.Millisecond
	}
	return &service{
		runner: runner,
		store:  store,
		cache:  cache,
		sf:     &singleflight.Group{},
		cfg:    cfg,
		now:    func() time.Time { return time.Now().UTC() },
		logger: l,
	}
}

func (s *service) Start(ctx context.Context, actor Actor, req StartRequest) (StartResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("start leave workflow requested",
		zap.String("request_id", rid),
		zap.String("company_id", actor.CompanyID),
		zap.String("employee_id", actor.EmployeeID),
		zap.String("policy_id", req.PolicyID),
	)

	in, err := s.buildStartInput(actor, req)
	if err != nil {
		s.logger.Warn("start leave workflow invalid input", zap.String("request_id", rid), zap.Error(err))
		return StartResponse{}, err
	}

	var (
		st         *State
		violations []validation.Violation
	)
	err = s.withRetry(ctx, "start", "", func(attempt int) error {
		threadID := NewThreadID(actor.CompanyID, actor.EmployeeID, s.now().Add(time.Duration(attempt)*time.Millisecond))
		var err error
		st, violations, err = s.runner.Start(ctx, threadID, in)
		return err
	})
	if err != nil {
		s.logger.Error("start leave workflow failed",
			zap.String("request_id", rid),
			zap.String("employee_id", actor.EmployeeID),
			zap.Error(err),
		)
		return StartResponse{}, err
	}

	s.logger.Info("start leave workflow success",
		zap.String("request_id", rid),
		zap.String("thread_id", st.ThreadID),
		zap.String("status", string(st.Status)),
	)
	return mapToStartResponse(st, violations), nil
}

func (s *service) buildStartInput(actor Actor, req StartRequest) (StartInput, error) {
	if _, err := uuid.Parse(actor.CompanyID); err != nil {
		return StartInput{}, leaveerrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(actor.EmployeeID); err != nil {
		return StartInput{}, employeeerrors.ErrInvalidEmployeeID
	}
	if _, err := uuid.Parse(req.PolicyID); err != nil {
		return StartInput{}, leaveerrors.ErrInvalidPolicyID
	}

	start, err := leave.ParseDate(req.StartDate)
	if err != nil {
		return StartInput{}, leaveerrors.ErrInvalidDateFormat
	}
	end, err := leave.ParseDate(req.EndDate)
	if err != nil {
		return StartInput{}, leaveerrors.ErrInvalidDateFormat
	}

	startType, endType := req.StartDayType, req.EndDayType
	if startType == "" {
		startType = leave.DayTypeFull
	}
	if endType == "" {
		endType = leave.DayTypeFull
	}
	if !leave.IsValidDayType(startType) || !leave.IsValidDayType(endType) {
		return StartInput{}, leaveerrors.ErrInvalidDayType
	}

	return StartInput{
		CompanyID:     actor.CompanyID,
		EmployeeID:    actor.EmployeeID,
		PolicyID:      req.PolicyID,
		StartDate:     start,
		EndDate:       end,
		StartDayType:  startType,
		EndDayType:    endType,
		Reason:        req.Reason,
		AttachmentURL: req.AttachmentURL,
	}, nil
}

func (s *service) SubmitManagerDecision(ctx context.Context, actor Actor, req DecisionRequest) (DecisionResponse, error) {
	return s.transition(ctx, "manager_decision", actor, req.ThreadID, func() (*State, error) {
		return s.runner.SubmitManagerDecision(ctx, req.ThreadID, actor, Decision(req.Decision), req.Remarks)
	})
}

func (s *service) SubmitHRDecision(ctx context.Context, actor Actor, req DecisionRequest) (DecisionResponse, error) {
	return s.transition(ctx, "hr_decision", actor, req.ThreadID, func() (*State, error) {
		return s.runner.SubmitHRDecision(ctx, req.ThreadID, actor, Decision(req.Decision), req.Remarks)
	})
}

func (s *service) Cancel(ctx context.Context, actor Actor, req CancelRequest) (DecisionResponse, error) {
	return s.transition(ctx, "cancel", actor, req.ThreadID, func() (*State, error) {
		return s.runner.Cancel(ctx, req.ThreadID, actor, req.Remarks)
	})
}

func (s *service) transition(
	ctx context.Context,
	op string,
	actor Actor,
	threadID string,
	run func() (*State, error),
) (DecisionResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("leave workflow transition requested",
		zap.String("request_id", rid),
		zap.String("op", op),
		zap.String("thread_id", threadID),
		zap.String("actor_id", actor.EmployeeID),
	)

	if err := s.checkTenant(actor, threadID); err != nil {
		return DecisionResponse{}, err
	}

	var st *State
	err := s.withRetry(ctx, op, threadID, func(int) error {
		var err error
		st, err = run()
		return err
	})
	if err != nil {
		return DecisionResponse{}, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, threadID)
	}
	s.logger.Info("leave workflow transition success",
		zap.String("request_id", rid),
		zap.String("op", op),
		zap.String("thread_id", threadID),
		zap.String("status", string(st.Status)),
	)
	return mapToDecisionResponse(st), nil
}

func (s *service) GetStatus(ctx context.Context, actor Actor, threadID string) (StatusResponse, error) {
	if err := s.checkTenant(actor, threadID); err != nil {
		return StatusResponse{}, err
	}

	resp, err := s.loadStatus(ctx, threadID)
	if err != nil {
		return StatusResponse{}, err
	}
	if !canView(actor, resp) {
		s.logger.Warn("leave workflow status forbidden",
			zap.String("thread_id", threadID),
			zap.String("actor_id", actor.EmployeeID),
		)
		return StatusResponse{}, apperror.ErrForbidden
	}
	return resp, nil
}

func (s *service) loadStatus(ctx context.Context, threadID string) (StatusResponse, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, threadID); ok {
			return *cached, nil
		}
	}

	v, err, _ := s.sf.Do(GetStatusCacheKey(threadID), func() (any, error) {
		st, err := s.runner.Status(ctx, threadID)
		if err != nil {
			return nil, err
		}
		resp := mapToStatusResponse(st)
		// Open runs are not cached: a decision committed between this read
		// and Set would otherwise be hidden until the entry expires.
		if s.cache != nil && st.Status.IsTerminal() {
			s.cache.Set(ctx, resp)
		}
		return resp, nil
	})
	if err != nil {
		return StatusResponse{}, err
	}
	return v.(StatusResponse), nil
}

func (s *service) ListRuns(ctx context.Context, actor Actor) ([]RunSummary, error) {
	states, err := s.store.List(ctx, actor.CompanyID, actor.EmployeeID, false)
	if err != nil {
		s.logger.Error("list leave workflows failed",
			zap.String("employee_id", actor.EmployeeID),
			zap.Error(err),
		)
		return nil, err
	}
	return mapToRunSummaries(states), nil
}

// checkTenant hides runs of other companies behind NotFound.
func (s *service) checkTenant(actor Actor, threadID string) error {
	parsed, err := ParseThreadID(threadID)
	if err != nil {
		return err
	}
	if parsed.CompanyID != actor.CompanyID {
		return fmt.Errorf("%w: thread %s", workflowerrors.ErrWorkflowNotFound, threadID)
	}
	return nil
}

// withRetry re-runs fn while it fails with a version conflict, up to the
// configured bound. Other errors are returned at once.
func (s *service) withRetry(ctx context.Context, op, threadID string, fn func(attempt int) error) error {
	for attempt := 0; ; attempt++ {
		err := fn(attempt)
		if err == nil || !errors.Is(err, workflowerrors.ErrVersionConflict) || attempt >= s.cfg.MaxConflictRetries {
			return err
		}

		s.logger.Warn("leave workflow version conflict, retrying",
			zap.String("op", op),
			zap.String("thread_id", threadID),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)

		timer := time.NewTimer(s.cfg.RetryBackoff * time.Duration(attempt+1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func canView(actor Actor, resp StatusResponse) bool {
	return actor.IsPrivileged() ||
		actor.EmployeeID == resp.EmployeeID ||
		(resp.ManagerID != "" && actor.EmployeeID == resp.ManagerID)
}
