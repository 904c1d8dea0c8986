package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-leaveflow/internal/balance"
	balanceerrors "go-leaveflow/internal/balance/errors"
	"go-leaveflow/internal/employee"
	"go-leaveflow/internal/leave"
	"go-leaveflow/internal/shared/tracing"
	"go-leaveflow/internal/shared/transaction"
	"go-leaveflow/internal/validation"
	workflowerrors "go-leaveflow/internal/workflow/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type EmployeeLookup interface {
	FindByIDForUpdate(ctx context.Context, companyID, id string) (*employee.Employee, error)
}

type PolicyLookup interface {
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*leave.Policy, error)
}

type HolidayCalendar interface {
	Holidays(ctx context.Context, companyID string, from, to time.Time) (leave.HolidaySet, error)
}

type RequestStore interface {
	Create(ctx context.Context, l *leave.LeaveRequest) error
	Update(ctx context.Context, l *leave.LeaveRequest) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*leave.LeaveRequest, error)
	FindActiveOverlapping(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time) ([]leave.LeaveRequest, error)
}

// TransitionEvent describes one committed state change.
type TransitionEvent struct {
	ThreadID   string
	CompanyID  string
	EmployeeID string
	RequestID  string
	From       Status
	To         Status
	Trigger    Trigger
	ActorID    string
	OccurredAt time.Time
}

// TransitionRecorder is called inside the step transaction, before the
// checkpoint is saved.
type TransitionRecorder interface {
	RecordTransition(ctx context.Context, event TransitionEvent) error
}

type Dependencies struct {
	Tx          transaction.Manager
	Checkpoints CheckpointStore
	Employees   EmployeeLookup
	Policies    PolicyLookup
	Calendar    HolidayCalendar
	Requests    RequestStore
	Ledger      balance.Ledger
	// Recorder is optional.
	Recorder TransitionRecorder
}

type Option func(*Engine)

func WithHRReviewThreshold(days decimal.Decimal) Option {
	return func(e *Engine) {
		if days.IsPositive() {
			e.threshold = days
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger.Named("workflow.engine")
		}
	}
}

const (
	RoleHR    = "hr"
	RoleAdmin = "admin"
)

// Actor is the authenticated caller, taken from the access token claims.
type Actor struct {
	CompanyID  string
	EmployeeID string
	Role       string
}

func (a Actor) IsPrivileged() bool {
	return a.Role == RoleHR || a.Role == RoleAdmin
}

// StartInput is a candidate leave request. Dates are UTC calendar dates.
type StartInput struct {
	CompanyID     string
	EmployeeID    string
	PolicyID      string
	StartDate     time.Time
	EndDate       time.Time
	StartDayType  string
	EndDayType    string
	Reason        string
	AttachmentURL string
}

// Engine drives runs through the leave machine. It keeps no per-run memory
// and is safe to share between goroutines.
type Engine struct {
	deps      Dependencies
	machine   *Machine
	threshold decimal.Decimal
	now       func() time.Time
	logger    *zap.Logger
}

func NewEngine(deps Dependencies, opts ...Option) *Engine {
	e := &Engine{
		deps:      deps,
		machine:   NewLeaveMachine(),
		threshold: HRReviewThresholdDays,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    zap.L().Named("workflow.engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start validates the candidate and either finishes the run as
// validation_failed or creates the request, reserves the days and suspends
// at the manager. Both outcomes are checkpointed under threadID.
func (e *Engine) Start(ctx context.Context, threadID string, in StartInput) (st *State, violations []validation.Violation, err error) {
	ctx, span := tracing.StartSpan(ctx, "workflow.start",
		attribute.String("thread_id", threadID),
		attribute.String("employee_id", in.EmployeeID),
	)
	defer func() { tracing.End(span, err) }()

	now := e.now()
	st = &State{
		ThreadID:   threadID,
		CompanyID:  in.CompanyID,
		EmployeeID: in.EmployeeID,
		Node:       NodeValidating,
		Status:     StatusPendingValidation,
		RequestSnapshot: RequestSnapshot{
			PolicyID:      in.PolicyID,
			StartDate:     in.StartDate.Format(leave.DateLayout),
			EndDate:       in.EndDate.Format(leave.DateLayout),
			StartDayType:  in.StartDayType,
			EndDayType:    in.EndDayType,
			Reason:        in.Reason,
			AttachmentURL: in.AttachmentURL,
		},
		ValidationErrors: []string{},
		History:          []HistoryEntry{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = e.deps.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		emp, err := e.deps.Employees.FindByIDForUpdate(txCtx, in.CompanyID, in.EmployeeID)
		if err != nil {
			return err
		}
		policy, err := e.deps.Policies.FindByIDAndCompany(txCtx, in.CompanyID, in.PolicyID)
		if err != nil {
			return err
		}
		holidays, err := e.deps.Calendar.Holidays(txCtx, in.CompanyID, in.StartDate, in.EndDate)
		if err != nil {
			return err
		}

		total := leave.CountLeaveDays(in.StartDate, in.EndDate, in.StartDayType, in.EndDayType, holidays)
		st.RequestSnapshot.TotalDays = total
		st.RequiresHRReview = total.GreaterThan(e.threshold)
		st.ManagerID = emp.ManagerID()

		key := e.balanceKey(st, in.StartDate)
		bal, err := e.deps.Ledger.Get(txCtx, key)
		if err != nil {
			if !errors.Is(err, balanceerrors.ErrBalanceNotFound) {
				return err
			}
			bal = nil
		}
		existing, err := e.deps.Requests.FindActiveOverlapping(txCtx, in.CompanyID, in.EmployeeID, in.StartDate, in.EndDate)
		if err != nil {
			return err
		}

		violations = validation.Validate(validation.Input{
			Candidate: validation.Candidate{StartDate: in.StartDate, EndDate: in.EndDate, TotalDays: total},
			Employee:  emp,
			Policy:    policy,
			Balance:   bal,
			Existing:  existing,
			Today:     now,
		})

		if len(violations) > 0 {
			st.ValidationErrors = validation.Messages(violations)
			return e.advance(txCtx, st, 0, TriggerValidationFailed, in.EmployeeID, "", now)
		}

		if err := e.checkOpenRuns(txCtx, st); err != nil {
			return err
		}
		return e.advance(txCtx, st, 0, TriggerValidationPassed, in.EmployeeID, "", now)
	})
	if err != nil {
		e.logger.Warn("start leave workflow failed",
			zap.String("thread_id", threadID),
			zap.String("employee_id", in.EmployeeID),
			zap.Error(err),
		)
		return nil, nil, err
	}

	if len(violations) > 0 {
		e.logger.Info("leave workflow failed validation",
			zap.String("thread_id", threadID),
			zap.Strings("violations", st.ValidationErrors),
		)
	} else {
		e.logger.Info("leave workflow started",
			zap.String("thread_id", threadID),
			zap.String("request_id", st.RequestID),
			zap.String("total_days", st.RequestSnapshot.TotalDays.String()),
			zap.Bool("requires_hr_review", st.RequiresHRReview),
		)
	}
	return st, violations, nil
}

// checkOpenRuns rejects a start whose dates overlap another suspended run of
// the same employee, even when that run's request is not visible as pending.
func (e *Engine) checkOpenRuns(ctx context.Context, st *State) error {
	open, err := e.deps.Checkpoints.List(ctx, st.CompanyID, st.EmployeeID, true)
	if err != nil {
		return err
	}
	for _, other := range open {
		if other.ThreadID == st.ThreadID {
			continue
		}
		if other.RequestSnapshot.overlaps(st.RequestSnapshot.StartDate, st.RequestSnapshot.EndDate) {
			return fmt.Errorf("%w: thread %s covers %s..%s", workflowerrors.ErrOpenRunExists,
				other.ThreadID, other.RequestSnapshot.StartDate, other.RequestSnapshot.EndDate)
		}
	}
	return nil
}

func (e *Engine) SubmitManagerDecision(ctx context.Context, threadID string, actor Actor, decision Decision, remarks string) (*State, error) {
	if !decision.IsValid() {
		return nil, workflowerrors.ErrInvalidDecision
	}
	trigger := TriggerManagerReject
	if decision == DecisionApproved {
		trigger = TriggerManagerApprove
	}
	return e.resume(ctx, "workflow.manager_decision", threadID, trigger, actor.EmployeeID, remarks, func(st *State) error {
		switch {
		case actor.EmployeeID == st.EmployeeID:
			return fmt.Errorf("%w: thread %s cannot be decided by its requester", workflowerrors.ErrNotAssignedApprover, st.ThreadID)
		case st.ManagerID != "" && st.ManagerID != actor.EmployeeID:
			return fmt.Errorf("%w: thread %s", workflowerrors.ErrNotAssignedApprover, st.ThreadID)
		case st.ManagerID == "" && !actor.IsPrivileged():
			return fmt.Errorf("%w: thread %s has no reporting manager", workflowerrors.ErrNotAssignedApprover, st.ThreadID)
		case st.ManagerID == "":
			st.ManagerID = actor.EmployeeID
		}
		st.ManagerDecision = decision
		st.ManagerRemarks = remarks
		return nil
	})
}

func (e *Engine) SubmitHRDecision(ctx context.Context, threadID string, actor Actor, decision Decision, remarks string) (*State, error) {
	if !decision.IsValid() {
		return nil, workflowerrors.ErrInvalidDecision
	}
	trigger := TriggerHRReject
	if decision == DecisionApproved {
		trigger = TriggerHRApprove
	}
	return e.resume(ctx, "workflow.hr_decision", threadID, trigger, actor.EmployeeID, remarks, func(st *State) error {
		if !actor.IsPrivileged() {
			return fmt.Errorf("%w: thread %s needs an hr reviewer", workflowerrors.ErrNotAssignedApprover, st.ThreadID)
		}
		if actor.EmployeeID == st.EmployeeID {
			return fmt.Errorf("%w: thread %s cannot be decided by its requester", workflowerrors.ErrNotAssignedApprover, st.ThreadID)
		}
		st.HRID = actor.EmployeeID
		st.HRDecision = decision
		st.HRRemarks = remarks
		return nil
	})
}

// Cancel withdraws a suspended run on behalf of the requesting employee.
func (e *Engine) Cancel(ctx context.Context, threadID string, actor Actor, remarks string) (*State, error) {
	return e.resume(ctx, "workflow.cancel", threadID, TriggerCancel, actor.EmployeeID, remarks, func(st *State) error {
		if st.EmployeeID != actor.EmployeeID {
			return fmt.Errorf("%w: thread %s", workflowerrors.ErrNotRunOwner, st.ThreadID)
		}
		return nil
	})
}

func (e *Engine) Status(ctx context.Context, threadID string) (*State, error) {
	st, _, err := e.deps.Checkpoints.Load(ctx, threadID)
	return st, err
}

// resume runs one load, fire, effect, save cycle in a single transaction.
// authorize may reject the actor and records decision fields on the state.
func (e *Engine) resume(
	ctx context.Context,
	spanName, threadID string,
	trigger Trigger,
	actorID, remarks string,
	authorize func(st *State) error,
) (st *State, err error) {
	ctx, span := tracing.StartSpan(ctx, spanName,
		attribute.String("thread_id", threadID),
		attribute.String("trigger", string(trigger)),
	)
	defer func() { tracing.End(span, err) }()

	err = e.deps.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		loaded, version, err := e.deps.Checkpoints.Load(txCtx, threadID)
		if err != nil {
			return err
		}
		if _, err := e.machine.Fire(loaded, trigger); err != nil {
			return err
		}
		if err := authorize(loaded); err != nil {
			return err
		}
		if err := e.advance(txCtx, loaded, version, trigger, actorID, remarks, e.now()); err != nil {
			return err
		}
		st = loaded
		return nil
	})
	if err != nil {
		if errors.Is(err, balanceerrors.ErrInsufficientBalance) || errors.Is(err, balanceerrors.ErrLedgerInvariant) {
			e.logger.Error("ledger inconsistent with workflow",
				zap.String("thread_id", threadID),
				zap.String("trigger", string(trigger)),
				zap.Error(err),
			)
		} else {
			e.logger.Warn("leave workflow transition rejected",
				zap.String("thread_id", threadID),
				zap.String("trigger", string(trigger)),
				zap.String("actor_id", actorID),
				zap.Error(err),
			)
		}
		return nil, err
	}

	e.logger.Info("leave workflow transitioned",
		zap.String("thread_id", threadID),
		zap.String("trigger", string(trigger)),
		zap.String("status", string(st.Status)),
	)
	return st, nil
}

// advance takes trigger from st's status: ledger effect, request write,
// transition event and finally the checkpoint save.
func (e *Engine) advance(
	ctx context.Context,
	st *State,
	version int64,
	trigger Trigger,
	actorID, remarks string,
	now time.Time,
) error {
	t, err := e.machine.Fire(st, trigger)
	if err != nil {
		return err
	}
	if err := e.applyEffect(ctx, st, t, actorID, now); err != nil {
		return fmt.Errorf("thread %s %s -> %s: %w", st.ThreadID, t.From, t.To, err)
	}

	st.Status = t.To
	st.Node = t.To.Node()
	st.UpdatedAt = now
	st.History = append(st.History, HistoryEntry{
		From:    t.From,
		To:      t.To,
		Trigger: trigger,
		ActorID: actorID,
		Remarks: remarks,
		At:      now,
	})

	if e.deps.Recorder != nil {
		if err := e.deps.Recorder.RecordTransition(ctx, TransitionEvent{
			ThreadID:   st.ThreadID,
			CompanyID:  st.CompanyID,
			EmployeeID: st.EmployeeID,
			RequestID:  st.RequestID,
			From:       t.From,
			To:         t.To,
			Trigger:    trigger,
			ActorID:    actorID,
			OccurredAt: now,
		}); err != nil {
			return err
		}
	}

	_, err = e.deps.Checkpoints.Save(ctx, st, version)
	return err
}

func (e *Engine) applyEffect(ctx context.Context, st *State, t Transition, actorID string, now time.Time) error {
	switch t.Effect {
	case EffectNone:
		return nil
	case EffectCreateAndReserve:
		return e.createAndReserve(ctx, st, now)
	case EffectCommit, EffectRelease:
		return e.settle(ctx, st, t, actorID, now)
	default:
		return fmt.Errorf("unknown effect %q", t.Effect)
	}
}

func (e *Engine) createAndReserve(ctx context.Context, st *State, now time.Time) error {
	snap := st.RequestSnapshot
	companyID, err := uuid.Parse(st.CompanyID)
	if err != nil {
		return err
	}
	employeeID, err := uuid.Parse(st.EmployeeID)
	if err != nil {
		return err
	}
	policyID, err := uuid.Parse(snap.PolicyID)
	if err != nil {
		return err
	}
	start, err := leave.ParseDate(snap.StartDate)
	if err != nil {
		return err
	}
	end, err := leave.ParseDate(snap.EndDate)
	if err != nil {
		return err
	}

	req := &leave.LeaveRequest{
		ID:           uuid.New(),
		CompanyID:    companyID,
		EmployeeID:   employeeID,
		PolicyID:     policyID,
		ThreadID:     st.ThreadID,
		StartDate:    start,
		EndDate:      end,
		StartDayType: snap.StartDayType,
		EndDayType:   snap.EndDayType,
		TotalDays:    snap.TotalDays,
		Reason:       snap.Reason,
		Status:       leave.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if snap.AttachmentURL != "" {
		url := snap.AttachmentURL
		req.AttachmentURL = &url
	}
	if err := e.deps.Requests.Create(ctx, req); err != nil {
		return err
	}
	st.RequestID = req.ID.String()

	_, err = e.deps.Ledger.Reserve(ctx, e.balanceKey(st, start), st.RequestID, snap.TotalDays)
	return err
}

// settle applies commit or release to the ledger and moves the leave
// request to the transition's terminal status.
func (e *Engine) settle(ctx context.Context, st *State, t Transition, actorID string, now time.Time) error {
	start, err := leave.ParseDate(st.RequestSnapshot.StartDate)
	if err != nil {
		return err
	}
	key := e.balanceKey(st, start)
	days := st.RequestSnapshot.TotalDays

	if t.Effect == EffectCommit {
		_, err = e.deps.Ledger.Commit(ctx, key, st.RequestID, days)
	} else {
		_, err = e.deps.Ledger.Release(ctx, key, st.RequestID, days)
	}
	if err != nil {
		return err
	}

	req, err := e.deps.Requests.FindByIDAndCompany(ctx, st.CompanyID, st.RequestID)
	if err != nil {
		return err
	}
	switch t.To {
	case StatusApproved:
		req.Status = leave.StatusApproved
	case StatusRejected:
		req.Status = leave.StatusRejected
	case StatusCancelled:
		req.Status = leave.StatusCancelled
	}
	if t.To != StatusCancelled {
		if approver, err := uuid.Parse(actorID); err == nil {
			req.ApproverID = &approver
		}
		decidedAt := now
		req.ApprovedAt = &decidedAt
		req.ApproverRemarks = st.ApproverRemarks()
	}
	req.UpdatedAt = now
	return e.deps.Requests.Update(ctx, req)
}

func (e *Engine) balanceKey(st *State, start time.Time) balance.Key {
	return balance.Key{
		CompanyID:  st.CompanyID,
		EmployeeID: st.EmployeeID,
		PolicyID:   st.RequestSnapshot.PolicyID,
		Year:       start.Year(),
	}
}
