package balance_test

import (
	"context"
	"testing"

	"go-leaveflow/internal/balance"
	balanceerrors "go-leaveflow/internal/balance/errors"
	"go-leaveflow/internal/leave"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeBalanceRepository struct {
	balances map[balance.Key]*balance.LeaveBalance
	entries  map[string]balance.Entry
	saves    int
}

func newFakeBalanceRepository() *fakeBalanceRepository {
	return &fakeBalanceRepository{
		balances: map[balance.Key]*balance.LeaveBalance{},
		entries:  map[string]balance.Entry{},
	}
}

func (f *fakeBalanceRepository) FindByKey(ctx context.Context, key balance.Key) (*balance.LeaveBalance, error) {
	b, ok := f.balances[key]
	if !ok {
		return nil, balanceerrors.ErrBalanceNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBalanceRepository) FindByKeyForUpdate(ctx context.Context, key balance.Key) (*balance.LeaveBalance, error) {
	return f.FindByKey(ctx, key)
}

func (f *fakeBalanceRepository) FindByEmployee(ctx context.Context, companyID, employeeID string, year int) ([]balance.LeaveBalance, error) {
	var out []balance.LeaveBalance
	for k, b := range f.balances {
		if k.CompanyID == companyID && k.EmployeeID == employeeID && k.Year == year {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBalanceRepository) CreateIfAbsent(ctx context.Context, b *balance.LeaveBalance) (bool, error) {
	key := balance.Key{
		CompanyID:  b.CompanyID.String(),
		EmployeeID: b.EmployeeID.String(),
		PolicyID:   b.PolicyID.String(),
		Year:       b.Year,
	}
	if _, ok := f.balances[key]; ok {
		return false, nil
	}
	copied := *b
	f.balances[key] = &copied
	return true, nil
}

func (f *fakeBalanceRepository) Save(ctx context.Context, b *balance.LeaveBalance) error {
	f.saves++
	copied := *b
	f.balances[balance.Key{
		CompanyID:  b.CompanyID.String(),
		EmployeeID: b.EmployeeID.String(),
		PolicyID:   b.PolicyID.String(),
		Year:       b.Year,
	}] = &copied
	return nil
}

func (f *fakeBalanceRepository) EntryExists(ctx context.Context, requestID, kind string) (bool, error) {
	_, ok := f.entries[requestID+"/"+kind]
	return ok, nil
}

func (f *fakeBalanceRepository) CreateEntry(ctx context.Context, e *balance.Entry) error {
	f.entries[e.RequestID.String()+"/"+e.Kind] = *e
	return nil
}

type fakePolicyLister struct {
	policies []leave.Policy
}

func (f *fakePolicyLister) FindActiveByCompany(ctx context.Context, companyID string) ([]leave.Policy, error) {
	return f.policies, nil
}

type ledgerDeps struct {
	repo    *fakeBalanceRepository
	service balance.Service
	key     balance.Key
}

func setupLedgerTest(t *testing.T, credited int64) *ledgerDeps {
	t.Helper()

	repo := newFakeBalanceRepository()
	companyID, employeeID, policyID := uuid.New(), uuid.New(), uuid.New()
	key := balance.Key{
		CompanyID:  companyID.String(),
		EmployeeID: employeeID.String(),
		PolicyID:   policyID.String(),
		Year:       2026,
	}
	repo.balances[key] = &balance.LeaveBalance{
		ID:         uuid.New(),
		CompanyID:  companyID,
		EmployeeID: employeeID,
		PolicyID:   policyID,
		Year:       2026,
		Credited:   decimal.NewFromInt(credited),
	}

	return &ledgerDeps{
		repo:    repo,
		service: balance.NewService(passthroughTx{}, repo, &fakePolicyLister{}),
		key:     key,
	}
}

func TestLedger_ReserveRelease_RoundTrip(t *testing.T) {
	ctx := context.Background()
	deps := setupLedgerTest(t, 10)
	requestID := uuid.NewString()
	before, _ := deps.service.Get(ctx, deps.key)

	_, err := deps.service.Reserve(ctx, deps.key, requestID, decimal.NewFromFloat(2.5))
	assert.NoError(t, err)
	after, err := deps.service.Release(ctx, deps.key, requestID, decimal.NewFromFloat(2.5))
	assert.NoError(t, err)

	assert.True(t, before.Pending.Equal(after.Pending))
	assert.True(t, before.Used.Equal(after.Used))
	assert.True(t, after.Available().Equal(decimal.NewFromInt(10)))
}

func TestLedger_ReserveCommit_MovesPendingToUsed(t *testing.T) {
	ctx := context.Background()
	deps := setupLedgerTest(t, 10)
	requestID := uuid.NewString()

	reserved, err := deps.service.Reserve(ctx, deps.key, requestID, decimal.NewFromInt(3))
	assert.NoError(t, err)
	assert.True(t, reserved.Pending.Equal(decimal.NewFromInt(3)))
	assert.True(t, reserved.Available().Equal(decimal.NewFromInt(7)))

	committed, err := deps.service.Commit(ctx, deps.key, requestID, decimal.NewFromInt(3))
	assert.NoError(t, err)
	assert.True(t, committed.Pending.IsZero())
	assert.True(t, committed.Used.Equal(decimal.NewFromInt(3)))
	assert.True(t, committed.Available().Equal(decimal.NewFromInt(7)))
}

func TestLedger_Reserve(t *testing.T) {
	ctx := context.Background()

	t.Run("negative insufficient balance writes nothing", func(t *testing.T) {
		deps := setupLedgerTest(t, 2)

		_, err := deps.service.Reserve(ctx, deps.key, uuid.NewString(), decimal.NewFromInt(3))

		assert.ErrorIs(t, err, balanceerrors.ErrInsufficientBalance)
		assert.Equal(t, 0, deps.repo.saves)
		assert.Empty(t, deps.repo.entries)
	})

	t.Run("exact balance allowed", func(t *testing.T) {
		deps := setupLedgerTest(t, 3)

		b, err := deps.service.Reserve(ctx, deps.key, uuid.NewString(), decimal.NewFromInt(3))

		assert.NoError(t, err)
		assert.True(t, b.Available().IsZero())
	})

	t.Run("idempotent per request", func(t *testing.T) {
		deps := setupLedgerTest(t, 10)
		requestID := uuid.NewString()

		_, err := deps.service.Reserve(ctx, deps.key, requestID, decimal.NewFromInt(4))
		assert.NoError(t, err)
		b, err := deps.service.Reserve(ctx, deps.key, requestID, decimal.NewFromInt(4))
		assert.NoError(t, err)

		assert.True(t, b.Pending.Equal(decimal.NewFromInt(4)))
		assert.Equal(t, 1, deps.repo.saves)
	})

	t.Run("negative missing balance", func(t *testing.T) {
		deps := setupLedgerTest(t, 10)
		key := deps.key
		key.Year = 2030

		_, err := deps.service.Reserve(ctx, key, uuid.NewString(), decimal.NewFromInt(1))

		assert.ErrorIs(t, err, balanceerrors.ErrBalanceNotFound)
	})

	t.Run("negative non positive days", func(t *testing.T) {
		deps := setupLedgerTest(t, 10)

		_, err := deps.service.Reserve(ctx, deps.key, uuid.NewString(), decimal.Zero)

		assert.ErrorIs(t, err, balanceerrors.ErrLedgerInvariant)
	})
}

func TestLedger_CommitBeyondPending(t *testing.T) {
	ctx := context.Background()
	deps := setupLedgerTest(t, 10)
	requestID := uuid.NewString()

	_, err := deps.service.Reserve(ctx, deps.key, requestID, decimal.NewFromInt(2))
	assert.NoError(t, err)

	_, err = deps.service.Commit(ctx, deps.key, requestID, decimal.NewFromInt(5))
	assert.ErrorIs(t, err, balanceerrors.ErrLedgerInvariant)

	_, err = deps.service.Release(ctx, deps.key, requestID, decimal.NewFromInt(5))
	assert.ErrorIs(t, err, balanceerrors.ErrLedgerInvariant)

	b, _ := deps.service.Get(ctx, deps.key)
	assert.True(t, b.Pending.Equal(decimal.NewFromInt(2)))
	assert.True(t, b.Used.IsZero())
}

func TestBalanceService_InitializeYear(t *testing.T) {
	ctx := context.Background()
	companyID, employeeID := uuid.New(), uuid.New()
	annual := leave.Policy{ID: uuid.New(), CompanyID: companyID, Name: "Annual", AnnualAllocation: decimal.NewFromInt(12), IsActive: true}
	sick := leave.Policy{ID: uuid.New(), CompanyID: companyID, Name: "Sick", AnnualAllocation: decimal.NewFromInt(6), IsActive: true}

	repo := newFakeBalanceRepository()
	svc := balance.NewService(passthroughTx{}, repo, &fakePolicyLister{policies: []leave.Policy{annual, sick}})

	created, err := svc.InitializeYear(ctx, companyID.String(), employeeID.String(), 2026)
	assert.NoError(t, err)
	assert.Equal(t, 2, created)

	again, err := svc.InitializeYear(ctx, companyID.String(), employeeID.String(), 2026)
	assert.NoError(t, err)
	assert.Equal(t, 0, again)

	list, err := svc.ListByEmployee(ctx, companyID.String(), employeeID.String(), 2026)
	assert.NoError(t, err)
	assert.Len(t, list, 2)
	for _, b := range list {
		switch b.PolicyID {
		case annual.ID.String():
			assert.Equal(t, "12.0", b.Available)
		case sick.ID.String():
			assert.Equal(t, "6.0", b.Available)
		default:
			t.Fatalf("unexpected policy %s", b.PolicyID)
		}
	}

	t.Run("negative invalid employee id", func(t *testing.T) {
		_, err := svc.InitializeYear(ctx, companyID.String(), "bad", 2026)
		assert.Error(t, err)
	})
}
