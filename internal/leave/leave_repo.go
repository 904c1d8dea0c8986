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

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, l *LeaveRequest) error
	Update(ctx context.Context, l *LeaveRequest) error
	FindAllByCompany(ctx context.Context, companyID string) ([]LeaveRequest, error)
	FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]LeaveRequest, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*LeaveRequest, error)
	// FindActiveOverlapping returns the employee's pending or approved
	// requests whose date range intersects [startDate, endDate].
	FindActiveOverlapping(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time) ([]LeaveRequest, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return transaction.GetDB(ctx, r.db).Create(l).Error
}

func (r *repository) Update(ctx context.Context, l *LeaveRequest) error {
	return transaction.GetDB(ctx, r.db).Save(l).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := transaction.GetDB(ctx, r.db).
		Scopes(tenant.Scope(companyID)).
		Order("start_date DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := transaction.GetDB(ctx, r.db).
		Scopes(tenant.EmployeeScope(companyID, employeeID)).
		Order("start_date DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := transaction.GetDB(ctx, r.db).
		Scopes(tenant.Scope(companyID)).
		First(&l, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrLeaveNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindActiveOverlapping(
	ctx context.Context,
	companyID, employeeID string,
	startDate, endDate time.Time,
) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := transaction.GetDB(ctx, r.db).
		Scopes(tenant.EmployeeScope(companyID, employeeID)).
		Where("status IN ?", []string{StatusPending, StatusApproved}).
		Where("start_date <= ? AND end_date >= ?", endDate, startDate).
		Find(&leaves).Error
	return leaves, err
}
