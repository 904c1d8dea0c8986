package balance

import (
	"context"
	"errors"

	balanceerrors "go-leaveflow/internal/balance/errors"
	"go-leaveflow/internal/shared/transaction"
	"go-leaveflow/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	FindByKey(ctx context.Context, key Key) (*LeaveBalance, error)
	// FindByKeyForUpdate locks the row until the surrounding transaction ends.
	FindByKeyForUpdate(ctx context.Context, key Key) (*LeaveBalance, error)
	FindByEmployee(ctx context.Context, companyID, employeeID string, year int) ([]LeaveBalance, error)
	// CreateIfAbsent inserts b unless a row with the same key exists and
	// reports whether it inserted.
	CreateIfAbsent(ctx context.Context, b *LeaveBalance) (bool, error)
	Save(ctx context.Context, b *LeaveBalance) error
	EntryExists(ctx context.Context, requestID, kind string) (bool, error)
	CreateEntry(ctx context.Context, e *Entry) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) keyQuery(ctx context.Context, key Key) *gorm.DB {
	return transaction.GetDB(ctx, r.db).
		Scopes(tenant.EmployeeScope(key.CompanyID, key.EmployeeID)).
		Where("policy_id = ? AND year = ?", key.PolicyID, key.Year)
}

func (r *repository) FindByKey(ctx context.Context, key Key) (*LeaveBalance, error) {
	var b LeaveBalance
	if err := r.keyQuery(ctx, key).First(&b).Error; err != nil {
		return nil, mapRepositoryError(err)
	}
	return &b, nil
}

func (r *repository) FindByKeyForUpdate(ctx context.Context, key Key) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.keyQuery(ctx, key).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b).Error
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return &b, nil
}

func (r *repository) FindByEmployee(ctx context.Context, companyID, employeeID string, year int) ([]LeaveBalance, error) {
	var balances []LeaveBalance
	err := transaction.GetDB(ctx, r.db).
		Scopes(tenant.EmployeeScope(companyID, employeeID)).
		Where("year = ?", year).
		Find(&balances).Error
	return balances, err
}

func (r *repository) CreateIfAbsent(ctx context.Context, b *LeaveBalance) (bool, error) {
	res := transaction.GetDB(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}, {Name: "employee_id"}, {Name: "policy_id"}, {Name: "year"}},
			DoNothing: true,
		}).
		Create(b)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) Save(ctx context.Context, b *LeaveBalance) error {
	return transaction.GetDB(ctx, r.db).Save(b).Error
}

func (r *repository) EntryExists(ctx context.Context, requestID, kind string) (bool, error) {
	var count int64
	err := transaction.GetDB(ctx, r.db).
		Model(&Entry{}).
		Where("request_id = ? AND kind = ?", requestID, kind).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CreateEntry(ctx context.Context, e *Entry) error {
	return transaction.GetDB(ctx, r.db).Create(e).Error
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return balanceerrors.ErrBalanceNotFound
	}
	return err
}
