package workflow_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-leaveflow/internal/balance"
	balanceerrors "go-leaveflow/internal/balance/errors"
	"go-leaveflow/internal/employee"
	employeeerrors "go-leaveflow/internal/employee/errors"
	"go-leaveflow/internal/leave"
	leaveerrors "go-leaveflow/internal/leave/errors"
	"go-leaveflow/internal/workflow"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// world is an in-memory deployment of the engine. Every store is rolled
// back when a transaction function fails, and transactions are serialised
// the way row locks serialise them in the database.
type world struct {
	tx          *memoryTx
	checkpoints *workflow.MemoryCheckpointStore
	employees   *fakeEmployees
	policies    *fakePolicies
	holidays    *fakeHolidays
	requests    *fakeRequests
	balances    *fakeBalances
	recorder    *fakeRecorder
	ledger      balance.Service
	engine      *workflow.Engine

	companyID  uuid.UUID
	employeeID uuid.UUID
	managerID  uuid.UUID
	hrID       uuid.UUID
	policyID   uuid.UUID
	today      time.Time
}

type worldOption func(w *world)

func withoutManager() worldOption {
	return func(w *world) {
		e := w.employees.rows[w.employeeID.String()]
		e.ReportingManagerID = nil
		w.employees.rows[w.employeeID.String()] = e
	}
}

func newWorld(t *testing.T, available int64, opts ...worldOption) *world {
	t.Helper()

	w := &world{
		checkpoints: workflow.NewMemoryCheckpointStore(),
		employees:   &fakeEmployees{rows: map[string]employee.Employee{}},
		policies:    &fakePolicies{rows: map[string]leave.Policy{}},
		holidays:    &fakeHolidays{},
		requests:    &fakeRequests{rows: map[string]leave.LeaveRequest{}},
		balances:    &fakeBalances{rows: map[balance.Key]balance.LeaveBalance{}, entries: map[string]balance.Entry{}},
		recorder:    &fakeRecorder{},
		companyID:   uuid.New(),
		employeeID:  uuid.New(),
		managerID:   uuid.New(),
		hrID:        uuid.New(),
		policyID:    uuid.New(),
		today:       time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	w.tx = &memoryTx{w: w}

	manager := w.managerID
	w.employees.rows[w.employeeID.String()] = employee.Employee{
		ID:                 w.employeeID,
		CompanyID:          w.companyID,
		FullName:           "Dewi Lestari",
		DateOfJoining:      time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
		ReportingManagerID: &manager,
		IsActive:           true,
	}
	w.policies.rows[w.policyID.String()] = leave.Policy{
		ID:               w.policyID,
		CompanyID:        w.companyID,
		Name:             "Annual Leave",
		LeaveType:        "annual",
		AnnualAllocation: decimal.NewFromInt(available),
		MinDays:          decimal.NewFromFloat(0.5),
		IsActive:         true,
	}
	w.balances.rows[w.key()] = balance.LeaveBalance{
		ID:         uuid.New(),
		CompanyID:  w.companyID,
		EmployeeID: w.employeeID,
		PolicyID:   w.policyID,
		Year:       2026,
		Credited:   decimal.NewFromInt(available),
	}

	for _, opt := range opts {
		opt(w)
	}

	w.ledger = balance.NewService(w.tx, w.balances, w.policies, zap.NewNop())
	w.engine = workflow.NewEngine(workflow.Dependencies{
		Tx:          w.tx,
		Checkpoints: w.checkpoints,
		Employees:   w.employees,
		Policies:    w.policies,
		Calendar:    leave.NewCalendar(w.holidays),
		Requests:    w.requests,
		Ledger:      w.ledger,
		Recorder:    w.recorder,
	},
		workflow.WithClock(func() time.Time { return w.today }),
		workflow.WithLogger(zap.NewNop()),
	)
	return w
}

func (w *world) key() balance.Key {
	return balance.Key{
		CompanyID:  w.companyID.String(),
		EmployeeID: w.employeeID.String(),
		PolicyID:   w.policyID.String(),
		Year:       2026,
	}
}

func (w *world) currentBalance(t *testing.T) *balance.LeaveBalance {
	t.Helper()
	b, err := w.ledger.Get(context.Background(), w.key())
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	return b
}

func (w *world) employeeActor() workflow.Actor {
	return workflow.Actor{CompanyID: w.companyID.String(), EmployeeID: w.employeeID.String(), Role: "employee"}
}

func (w *world) managerActor() workflow.Actor {
	return workflow.Actor{CompanyID: w.companyID.String(), EmployeeID: w.managerID.String(), Role: "employee"}
}

func (w *world) hrActor() workflow.Actor {
	return workflow.Actor{CompanyID: w.companyID.String(), EmployeeID: w.hrID.String(), Role: workflow.RoleHR}
}

func (w *world) threadID(offset int) string {
	return workflow.NewThreadID(w.companyID.String(), w.employeeID.String(), w.today.Add(time.Duration(offset)*time.Millisecond))
}

func (w *world) input(start, end string) workflow.StartInput {
	s, _ := leave.ParseDate(start)
	e, _ := leave.ParseDate(end)
	return workflow.StartInput{
		CompanyID:    w.companyID.String(),
		EmployeeID:   w.employeeID.String(),
		PolicyID:     w.policyID.String(),
		StartDate:    s,
		EndDate:      e,
		StartDayType: leave.DayTypeFull,
		EndDayType:   leave.DayTypeFull,
		Reason:       "Family trip",
	}
}

type worldSnapshot struct {
	checkpoints workflow.CheckpointSnapshot
	requests    map[string]leave.LeaveRequest
	balances    map[balance.Key]balance.LeaveBalance
	entries     map[string]balance.Entry
	events      []workflow.TransitionEvent
}

type txKey struct{}

type memoryTx struct {
	mu sync.Mutex
	w  *world
}

func (m *memoryTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.w.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.w.restore(snap)
		return err
	}
	return nil
}

func (w *world) snapshot() worldSnapshot {
	s := worldSnapshot{
		checkpoints: w.checkpoints.Snapshot(),
		requests:    make(map[string]leave.LeaveRequest, len(w.requests.rows)),
		balances:    make(map[balance.Key]balance.LeaveBalance, len(w.balances.rows)),
		entries:     make(map[string]balance.Entry, len(w.balances.entries)),
		events:      append([]workflow.TransitionEvent(nil), w.recorder.events...),
	}
	for k, v := range w.requests.rows {
		s.requests[k] = v
	}
	for k, v := range w.balances.rows {
		s.balances[k] = v
	}
	for k, v := range w.balances.entries {
		s.entries[k] = v
	}
	return s
}

func (w *world) restore(s worldSnapshot) {
	w.checkpoints.Restore(s.checkpoints)
	w.requests.rows = s.requests
	w.balances.rows = s.balances
	w.balances.entries = s.entries
	w.recorder.events = s.events
}

type fakeEmployees struct {
	rows map[string]employee.Employee
}

func (f *fakeEmployees) FindByIDForUpdate(ctx context.Context, companyID, id string) (*employee.Employee, error) {
	e, ok := f.rows[id]
	if !ok || e.CompanyID.String() != companyID {
		return nil, employeeerrors.ErrEmployeeNotFound
	}
	return &e, nil
}

type fakePolicies struct {
	rows map[string]leave.Policy
}

func (f *fakePolicies) FindByIDAndCompany(ctx context.Context, companyID, id string) (*leave.Policy, error) {
	p, ok := f.rows[id]
	if !ok || p.CompanyID.String() != companyID {
		return nil, leaveerrors.ErrPolicyNotFound
	}
	return &p, nil
}

func (f *fakePolicies) FindActiveByCompany(ctx context.Context, companyID string) ([]leave.Policy, error) {
	var out []leave.Policy
	for _, p := range f.rows {
		if p.CompanyID.String() == companyID && p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeHolidays struct {
	rows []leave.Holiday
}

func (f *fakeHolidays) FindBetween(ctx context.Context, companyID string, from, to time.Time) ([]leave.Holiday, error) {
	var out []leave.Holiday
	for _, h := range f.rows {
		if h.CompanyID.String() == companyID && !h.Date.Before(from) && !h.Date.After(to) {
			out = append(out, h)
		}
	}
	return out, nil
}

type fakeRequests struct {
	rows map[string]leave.LeaveRequest
}

func (f *fakeRequests) Create(ctx context.Context, l *leave.LeaveRequest) error {
	f.rows[l.ID.String()] = *l
	return nil
}

func (f *fakeRequests) Update(ctx context.Context, l *leave.LeaveRequest) error {
	if _, ok := f.rows[l.ID.String()]; !ok {
		return leaveerrors.ErrLeaveNotFound
	}
	f.rows[l.ID.String()] = *l
	return nil
}

func (f *fakeRequests) FindByIDAndCompany(ctx context.Context, companyID, id string) (*leave.LeaveRequest, error) {
	l, ok := f.rows[id]
	if !ok || l.CompanyID.String() != companyID {
		return nil, leaveerrors.ErrLeaveNotFound
	}
	return &l, nil
}

func (f *fakeRequests) FindActiveOverlapping(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time) ([]leave.LeaveRequest, error) {
	var out []leave.LeaveRequest
	for _, l := range f.rows {
		if l.CompanyID.String() != companyID || l.EmployeeID.String() != employeeID {
			continue
		}
		if l.Status != leave.StatusPending && l.Status != leave.StatusApproved {
			continue
		}
		if !l.StartDate.After(endDate) && !l.EndDate.Before(startDate) {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeBalances struct {
	rows    map[balance.Key]balance.LeaveBalance
	entries map[string]balance.Entry
}

func balanceKeyOf(b *balance.LeaveBalance) balance.Key {
	return balance.Key{
		CompanyID:  b.CompanyID.String(),
		EmployeeID: b.EmployeeID.String(),
		PolicyID:   b.PolicyID.String(),
		Year:       b.Year,
	}
}

func (f *fakeBalances) FindByKey(ctx context.Context, key balance.Key) (*balance.LeaveBalance, error) {
	b, ok := f.rows[key]
	if !ok {
		return nil, balanceerrors.ErrBalanceNotFound
	}
	return &b, nil
}

func (f *fakeBalances) FindByKeyForUpdate(ctx context.Context, key balance.Key) (*balance.LeaveBalance, error) {
	return f.FindByKey(ctx, key)
}

func (f *fakeBalances) FindByEmployee(ctx context.Context, companyID, employeeID string, year int) ([]balance.LeaveBalance, error) {
	var out []balance.LeaveBalance
	for k, b := range f.rows {
		if k.CompanyID == companyID && k.EmployeeID == employeeID && k.Year == year {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBalances) CreateIfAbsent(ctx context.Context, b *balance.LeaveBalance) (bool, error) {
	key := balanceKeyOf(b)
	if _, ok := f.rows[key]; ok {
		return false, nil
	}
	f.rows[key] = *b
	return true, nil
}

func (f *fakeBalances) Save(ctx context.Context, b *balance.LeaveBalance) error {
	f.rows[balanceKeyOf(b)] = *b
	return nil
}

func (f *fakeBalances) EntryExists(ctx context.Context, requestID, kind string) (bool, error) {
	_, ok := f.entries[requestID+"/"+kind]
	return ok, nil
}

func (f *fakeBalances) CreateEntry(ctx context.Context, e *balance.Entry) error {
	f.entries[e.RequestID.String()+"/"+e.Kind] = *e
	return nil
}

type fakeRecorder struct {
	events []workflow.TransitionEvent
}

func (f *fakeRecorder) RecordTransition(ctx context.Context, event workflow.TransitionEvent) error {
	f.events = append(f.events, event)
	return nil
}
