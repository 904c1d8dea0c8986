package employee

import (
	"context"
	"errors"

	employeeerrors "go-leaveflow/internal/employee/errors"
	"go-leaveflow/internal/shared/transaction"
	"go-leaveflow/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the read side of the employee module consumed by the leave
// workflow. Employees are maintained elsewhere.
type Repository interface {
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Employee, error)
	// FindByIDForUpdate locks the employee row for the rest of the
	// surrounding transaction, serialising concurrent leave starts.
	FindByIDForUpdate(ctx context.Context, companyID, id string) (*Employee, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Employee, error) {
	var e Employee
	err := transaction.GetDB(ctx, r.db).
		Scopes(tenant.Scope(companyID)).
		First(&e, "id = ?", id).Error
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return &e, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, companyID, id string) (*Employee, error) {
	var e Employee
	err := transaction.GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(companyID)).
		First(&e, "id = ?", id).Error
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return &e, nil
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}
	return err
}
