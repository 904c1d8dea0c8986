package leave

import (
	"context"
	"errors"
	"time"

	leaveerrors "go-leaveflow/internal/leave/errors"
	"go-leaveflow/internal/shared/transaction"
	"go-leaveflow/internal/tenant"

	"gorm.io/gorm"
)

type PolicyRepository interface {
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Policy, error)
	FindActiveByCompany(ctx context.Context, companyID string) ([]Policy, error)
}

type policyRepository struct {
	db *gorm.DB
}

func NewPolicyRepository(db *gorm.DB) PolicyRepository {
	return &policyRepository{db: db}
}

func (r *policyRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Policy, error) {
	var p Policy
	err := transaction.GetDB(ctx, r.db).
		Scopes(tenant.Scope(companyID)).
		First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrPolicyNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *policyRepository) FindActiveByCompany(ctx context.Context, companyID string) ([]Policy, error) {
	var policies []Policy
	err := transaction.GetDB(ctx, r.db).
		Scopes(tenant.Scope(companyID)).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&policies).Error
	return policies, err
}

type HolidayRepository interface {
	// FindBetween returns active holidays in [from, to], optional ones included.
	FindBetween(ctx context.Context, companyID string, from, to time.Time) ([]Holiday, error)
}

type holidayRepository struct {
	db *gorm.DB
}

func NewHolidayRepository(db *gorm.DB) HolidayRepository {
	return &holidayRepository{db: db}
}

func (r *holidayRepository) FindBetween(ctx context.Context, companyID string, from, to time.Time) ([]Holiday, error) {
	var holidays []Holiday
	err := transaction.GetDB(ctx, r.db).
		Scopes(tenant.Scope(companyID)).
		Where("is_active = ?", true).
		Where("date BETWEEN ? AND ?", from, to).
		Order("date ASC").
		Find(&holidays).Error
	return holidays, err
}
