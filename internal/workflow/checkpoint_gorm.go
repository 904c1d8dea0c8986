package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-leaveflow/internal/shared/dberror"
	"go-leaveflow/internal/shared/transaction"
	"go-leaveflow/internal/tenant"
	workflowerrors "go-leaveflow/internal/workflow/errors"

	"gorm.io/gorm"
)

// Checkpoint is the durable row behind a State. The indexed columns mirror
// fields of the JSON state so open runs can be queried without decoding.
type Checkpoint struct {
	ThreadID   string `gorm:"type:varchar(160);primaryKey"`
	CompanyID  string `gorm:"type:varchar(64);not null;index:idx_leave_workflow_checkpoints_owner"`
	EmployeeID string `gorm:"type:varchar(64);not null;index:idx_leave_workflow_checkpoints_owner"`
	Node       string `gorm:"type:varchar(32);not null;index:idx_leave_workflow_checkpoints_owner"`
	Status     string `gorm:"type:varchar(32);not null"`
	StartDate  string `gorm:"type:varchar(10);not null"`
	EndDate    string `gorm:"type:varchar(10);not null"`
	Version    int64  `gorm:"not null"`
	State      string `gorm:"type:text;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Checkpoint) TableName() string {
	return "leave_workflow_checkpoints"
}

// GormCheckpointStore joins the transaction carried by ctx, so a checkpoint
// lands together with the ledger and request writes of the same step.
type GormCheckpointStore struct {
	db *gorm.DB
}

func NewGormCheckpointStore(db *gorm.DB) *GormCheckpointStore {
	return &GormCheckpointStore{db: db}
}

func (g *GormCheckpointStore) Load(ctx context.Context, threadID string) (*State, int64, error) {
	var row Checkpoint
	err := transaction.GetDB(ctx, g.db).First(&row, "thread_id = ?", threadID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, fmt.Errorf("%w: thread %s", workflowerrors.ErrWorkflowNotFound, threadID)
		}
		return nil, 0, err
	}

	s, err := decodeState(row.State)
	if err != nil {
		return nil, 0, fmt.Errorf("decode checkpoint %s: %w", threadID, err)
	}
	return s, row.Version, nil
}

func (g *GormCheckpointStore) Save(ctx context.Context, s *State, expectedVersion int64) (int64, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return 0, fmt.Errorf("encode checkpoint %s: %w", s.ThreadID, err)
	}
	db := transaction.GetDB(ctx, g.db)

	if expectedVersion == 0 {
		row := Checkpoint{
			ThreadID:   s.ThreadID,
			CompanyID:  s.CompanyID,
			EmployeeID: s.EmployeeID,
			Node:       string(s.Node),
			Status:     string(s.Status),
			StartDate:  s.RequestSnapshot.StartDate,
			EndDate:    s.RequestSnapshot.EndDate,
			Version:    1,
			State:      string(payload),
			CreatedAt:  s.CreatedAt,
			UpdatedAt:  s.UpdatedAt,
		}
		if err := db.Create(&row).Error; err != nil {
			if dberror.IsUniqueViolation(err) {
				return 0, fmt.Errorf("thread %s already exists: %w", s.ThreadID, workflowerrors.ErrVersionConflict.WithCause(err))
			}
			return 0, err
		}
		return 1, nil
	}

	res := db.Model(&Checkpoint{}).
		Where("thread_id = ? AND version = ?", s.ThreadID, expectedVersion).
		Updates(map[string]any{
			"node":       string(s.Node),
			"status":     string(s.Status),
			"version":    expectedVersion + 1,
			"state":      string(payload),
			"updated_at": s.UpdatedAt,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := db.Model(&Checkpoint{}).Where("thread_id = ?", s.ThreadID).Count(&count).Error; err != nil {
			return 0, err
		}
		if count == 0 {
			return 0, fmt.Errorf("%w: thread %s", workflowerrors.ErrWorkflowNotFound, s.ThreadID)
		}
		return 0, fmt.Errorf("%w: thread %s, expected version %d",
			workflowerrors.ErrVersionConflict, s.ThreadID, expectedVersion)
	}
	return expectedVersion + 1, nil
}

func (g *GormCheckpointStore) List(ctx context.Context, companyID, employeeID string, openOnly bool) ([]*State, error) {
	q := transaction.GetDB(ctx, g.db).Scopes(tenant.EmployeeScope(companyID, employeeID))
	if openOnly {
		q = q.Where("node IN ?", []string{string(NodePendingManager), string(NodePendingHR)})
	}

	var rows []Checkpoint
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*State, 0, len(rows))
	for _, row := range rows {
		s, err := decodeState(row.State)
		if err != nil {
			return nil, fmt.Errorf("decode checkpoint %s: %w", row.ThreadID, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeState(raw string) (*State, error) {
	var s State
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, err
	}
	return &s, nil
}
