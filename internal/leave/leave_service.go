package leave

import (
	"context"

	leaveerrors "go-leaveflow/internal/leave/errors"
	"go-leaveflow/internal/shared/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service is the read-only view of leave requests. Requests are created and
// moved between statuses only by the approval workflow.
//
//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	GetAll(ctx context.Context, companyID, actorID string, canReadAll bool) ([]LeaveResponse, error)
	GetByID(ctx context.Context, companyID, actorID, id string, canReadAll bool) (LeaveResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) GetAll(ctx context.Context, companyID, actorID string, canReadAll bool) ([]LeaveResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, leaveerrors.ErrInvalidCompanyID
	}

	var (
		leaves []LeaveRequest
		err    error
	)
	if canReadAll {
		leaves, err = s.repo.FindAllByCompany(ctx, companyID)
	} else {
		leaves, err = s.repo.FindAllByEmployee(ctx, companyID, actorID)
	}
	if err != nil {
		s.logger.Error("list leaves failed", zap.String("company_id", companyID), zap.Error(err))
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) GetByID(ctx context.Context, companyID, actorID, id string, canReadAll bool) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
	}

	l, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	if !canReadAll && l.EmployeeID.String() != actorID {
		s.logger.Warn("leave read denied",
			zap.String("leave_id", id),
			zap.String("actor_id", actorID),
		)
		return LeaveResponse{}, apperror.ErrForbidden
	}
	return mapToResponse(*l), nil
}
