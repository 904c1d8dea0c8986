package balance

import (
	"context"
	"errors"
	"fmt"

	balanceerrors "go-leaveflow/internal/balance/errors"
	"go-leaveflow/internal/leave"
	"go-leaveflow/internal/shared/transaction"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Ledger is the only path through which pending and used days change. Each
// operation joins the caller's transaction when ctx carries one and is
// idempotent per (request id, operation kind).
type Ledger interface {
	Get(ctx context.Context, key Key) (*LeaveBalance, error)
	Reserve(ctx context.Context, key Key, requestID string, days decimal.Decimal) (*LeaveBalance, error)
	Commit(ctx context.Context, key Key, requestID string, days decimal.Decimal) (*LeaveBalance, error)
	Release(ctx context.Context, key Key, requestID string, days decimal.Decimal) (*LeaveBalance, error)
}

//go:generate mockgen -source=balance_service.go -destination=mock/balance_service_mock.go -package=mock
type Service interface {
	Ledger
	// InitializeYear credits each active policy's annual allocation to the
	// employee for year, skipping balances that already exist.
	InitializeYear(ctx context.Context, companyID, employeeID string, year int) (int, error)
	ListByEmployee(ctx context.Context, companyID, employeeID string, year int) ([]BalanceResponse, error)
}

type PolicyLister interface {
	FindActiveByCompany(ctx context.Context, companyID string) ([]leave.Policy, error)
}

type service struct {
	tx       transaction.Manager
	repo     Repository
	policies PolicyLister
	logger   *zap.Logger
}

func NewService(tx transaction.Manager, repo Repository, policies PolicyLister, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	return &service{tx: tx, repo: repo, policies: policies, logger: l}
}

func (s *service) Get(ctx context.Context, key Key) (*LeaveBalance, error) {
	return s.repo.FindByKey(ctx, key)
}

func (s *service) Reserve(ctx context.Context, key Key, requestID string, days decimal.Decimal) (*LeaveBalance, error) {
	return s.apply(ctx, EntryReserve, key, requestID, days, func(b *LeaveBalance) error {
		if b.Available().LessThan(days) {
			return fmt.Errorf("%w: available %s, requested %s",
				balanceerrors.ErrInsufficientBalance, b.Available().StringFixed(1), days.StringFixed(1))
		}
		b.Pending = b.Pending.Add(days)
		return nil
	})
}

func (s *service) Commit(ctx context.Context, key Key, requestID string, days decimal.Decimal) (*LeaveBalance, error) {
	return s.apply(ctx, EntryCommit, key, requestID, days, func(b *LeaveBalance) error {
		if days.GreaterThan(b.Pending) {
			return fmt.Errorf("%w: commit %s exceeds pending %s", balanceerrors.ErrLedgerInvariant, days, b.Pending)
		}
		b.Pending = b.Pending.Sub(days)
		b.Used = b.Used.Add(days)
		return nil
	})
}

func (s *service) Release(ctx context.Context, key Key, requestID string, days decimal.Decimal) (*LeaveBalance, error) {
	return s.apply(ctx, EntryRelease, key, requestID, days, func(b *LeaveBalance) error {
		if days.GreaterThan(b.Pending) {
			return fmt.Errorf("%w: release %s exceeds pending %s", balanceerrors.ErrLedgerInvariant, days, b.Pending)
		}
		b.Pending = b.Pending.Sub(days)
		return nil
	})
}

// apply locks the balance row, skips operations already journalled for
// requestID, and otherwise mutates, saves and journals in one transaction.
func (s *service) apply(
	ctx context.Context,
	kind string,
	key Key,
	requestID string,
	days decimal.Decimal,
	mutate func(b *LeaveBalance) error,
) (*LeaveBalance, error) {
	reqUUID, err := uuid.Parse(requestID)
	if err != nil || !days.IsPositive() {
		s.logger.Error("ledger called with invalid arguments",
			zap.String("kind", kind),
			zap.String("request_id", requestID),
			zap.String("days", days.String()),
		)
		return nil, fmt.Errorf("%w: %s of %s days for request %q", balanceerrors.ErrLedgerInvariant, kind, days, requestID)
	}

	var out *LeaveBalance
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		b, err := s.repo.FindByKeyForUpdate(txCtx, key)
		if err != nil {
			return err
		}

		done, err := s.repo.EntryExists(txCtx, requestID, kind)
		if err != nil {
			return err
		}
		if done {
			s.logger.Debug("ledger operation already applied",
				zap.String("kind", kind),
				zap.String("request_id", requestID),
			)
			out = b
			return nil
		}

		if err := mutate(b); err != nil {
			return err
		}
		if err := s.repo.Save(txCtx, b); err != nil {
			return err
		}
		if err := s.repo.CreateEntry(txCtx, &Entry{
			ID:        uuid.New(),
			BalanceID: b.ID,
			RequestID: reqUUID,
			Kind:      kind,
			Days:      days,
		}); err != nil {
			return err
		}

		out = b
		return nil
	})
	if err != nil {
		if isInvariant(err) {
			s.logger.Error("ledger invariant violated",
				zap.String("kind", kind),
				zap.String("employee_id", key.EmployeeID),
				zap.String("policy_id", key.PolicyID),
				zap.Int("year", key.Year),
				zap.String("request_id", requestID),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.logger.Info("ledger operation applied",
		zap.String("kind", kind),
		zap.String("employee_id", key.EmployeeID),
		zap.String("request_id", requestID),
		zap.String("days", days.String()),
		zap.String("pending", out.Pending.String()),
		zap.String("used", out.Used.String()),
	)
	return out, nil
}

func (s *service) InitializeYear(ctx context.Context, companyID, employeeID string, year int) (int, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return 0, fmt.Errorf("initialize balances: company id: %w", err)
	}
	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return 0, fmt.Errorf("initialize balances: employee id: %w", err)
	}

	created := 0
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		policies, err := s.policies.FindActiveByCompany(txCtx, companyID)
		if err != nil {
			return err
		}

		for _, p := range policies {
			inserted, err := s.repo.CreateIfAbsent(txCtx, &LeaveBalance{
				ID:             uuid.New(),
				CompanyID:      companyUUID,
				EmployeeID:     employeeUUID,
				PolicyID:       p.ID,
				Year:           year,
				OpeningBalance: decimal.Zero,
				Credited:       p.AnnualAllocation,
				Used:           decimal.Zero,
				Pending:        decimal.Zero,
			})
			if err != nil {
				return err
			}
			if inserted {
				created++
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("initialize balances failed",
			zap.String("company_id", companyID),
			zap.String("employee_id", employeeID),
			zap.Int("year", year),
			zap.Error(err),
		)
		return 0, err
	}

	s.logger.Info("balances initialized",
		zap.String("company_id", companyID),
		zap.String("employee_id", employeeID),
		zap.Int("year", year),
		zap.Int("created", created),
	)
	return created, nil
}

func (s *service) ListByEmployee(ctx context.Context, companyID, employeeID string, year int) ([]BalanceResponse, error) {
	balances, err := s.repo.FindByEmployee(ctx, companyID, employeeID, year)
	if err != nil {
		return nil, err
	}
	out := make([]BalanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, mapToResponse(b))
	}
	return out, nil
}

func isInvariant(err error) bool {
	return errors.Is(err, balanceerrors.ErrLedgerInvariant)
}
