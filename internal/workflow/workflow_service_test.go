package workflow_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	leaveerrors "go-leaveflow/internal/leave/errors"
	"go-leaveflow/internal/shared/apperror"
	"go-leaveflow/internal/validation"
	"go-leaveflow/internal/workflow"
	workflowerrors "go-leaveflow/internal/workflow/errors"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newWorldService(w *world, cache workflow.StatusCache) workflow.Service {
	return workflow.NewService(w.engine, w.checkpoints, cache, workflow.ServiceConfig{MaxConflictRetries: 2, RetryBackoff: time.Millisecond}, zap.NewNop())
}

func validStartRequest(w *world) workflow.StartRequest {
	return workflow.StartRequest{
		PolicyID:  w.policyID.String(),
		StartDate: "2026-03-09",
		EndDate:   "2026-03-11",
		Reason:    "Family trip",
	}
}

func TestWorkflowService_StartDecideFlow(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t, 10)
	svc := newWorldService(w, nil)

	started, err := svc.Start(ctx, w.employeeActor(), validStartRequest(w))
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPendingManagerApproval, started.Status)
	assert.Equal(t, "3.0", started.TotalDays)
	assert.Equal(t, "Leave request submitted. Awaiting approval from manager.", started.Message)
	assert.Empty(t, started.Violations)

	parsed, err := workflow.ParseThreadID(started.ThreadID)
	require.NoError(t, err)
	assert.Equal(t, w.employeeID.String(), parsed.EmployeeID)

	decided, err := svc.SubmitManagerDecision(ctx, w.managerActor(), workflow.DecisionRequest{
		ThreadID: started.ThreadID,
		Decision: "approved",
		Remarks:  "ok",
	})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusApproved, decided.Status)
	assert.Equal(t, "Leave approved! 3.0 days.", decided.Message)

	runs, err := svc.ListRuns(ctx, w.employeeActor())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, started.ThreadID, runs[0].ThreadID)
	assert.Equal(t, workflow.StatusApproved, runs[0].Status)
}

func TestWorkflowService_Start_ValidationFailure(t *testing.T) {
	w := newWorld(t, 2)
	svc := newWorldService(w, nil)

	resp, err := svc.Start(context.Background(), w.employeeActor(), validStartRequest(w))

	require.NoError(t, err)
	assert.Equal(t, workflow.StatusValidationFailed, resp.Status)
	assert.Empty(t, resp.TotalDays)
	require.Len(t, resp.Violations, 1)
	assert.Equal(t, validation.CodeInsufficientBal, resp.Violations[0].Code)
}

func TestWorkflowService_Start_InvalidInput(t *testing.T) {
	w := newWorld(t, 10)
	svc := newWorldService(w, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		actor   workflow.Actor
		mutate  func(r *workflow.StartRequest)
		wantErr error
	}{
		{
			name:    "policy id",
			actor:   w.employeeActor(),
			mutate:  func(r *workflow.StartRequest) { r.PolicyID = "nope" },
			wantErr: leaveerrors.ErrInvalidPolicyID,
		},
		{
			name:    "date format",
			actor:   w.employeeActor(),
			mutate:  func(r *workflow.StartRequest) { r.EndDate = "11/03/2026" },
			wantErr: leaveerrors.ErrInvalidDateFormat,
		},
		{
			name:    "day type",
			actor:   w.employeeActor(),
			mutate:  func(r *workflow.StartRequest) { r.StartDayType = "morning" },
			wantErr: leaveerrors.ErrInvalidDayType,
		},
		{
			name:    "company id",
			actor:   workflow.Actor{CompanyID: "acme", EmployeeID: w.employeeID.String()},
			mutate:  func(r *workflow.StartRequest) {},
			wantErr: leaveerrors.ErrInvalidCompanyID,
		},
	}

	for _, tt := range tests {
		t.Run("negative "+tt.name, func(t *testing.T) {
			req := validStartRequest(w)
			tt.mutate(&req)

			_, err := svc.Start(ctx, tt.actor, req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, w.requests.rows)
		})
	}
}

func TestWorkflowService_GetStatus_Access(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t, 10)
	svc := newWorldService(w, nil)
	started, err := svc.Start(ctx, w.employeeActor(), validStartRequest(w))
	require.NoError(t, err)

	allowed := map[string]workflow.Actor{
		"owner":   w.employeeActor(),
		"manager": w.managerActor(),
		"hr":      w.hrActor(),
	}
	for name, actor := range allowed {
		t.Run(name, func(t *testing.T) {
			resp, err := svc.GetStatus(ctx, actor, started.ThreadID)
			require.NoError(t, err)
			assert.Equal(t, workflow.StatusPendingManagerApproval, resp.Status)
			assert.Equal(t, workflow.NodePendingManager, resp.Node)
			assert.Equal(t, "3.0", resp.TotalDays)
		})
	}

	t.Run("negative colleague is forbidden", func(t *testing.T) {
		colleague := workflow.Actor{CompanyID: w.companyID.String(), EmployeeID: uuid.NewString(), Role: "employee"}
		_, err := svc.GetStatus(ctx, colleague, started.ThreadID)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("negative other company sees not found", func(t *testing.T) {
		outsider := workflow.Actor{CompanyID: uuid.NewString(), EmployeeID: w.employeeID.String(), Role: workflow.RoleAdmin}
		_, err := svc.GetStatus(ctx, outsider, started.ThreadID)
		assert.ErrorIs(t, err, workflowerrors.ErrWorkflowNotFound)

		_, err = svc.Cancel(ctx, outsider, workflow.CancelRequest{ThreadID: started.ThreadID})
		assert.ErrorIs(t, err, workflowerrors.ErrWorkflowNotFound)
	})

	t.Run("negative malformed thread id", func(t *testing.T) {
		_, err := svc.GetStatus(ctx, w.employeeActor(), "not-a-thread")
		assert.ErrorIs(t, err, workflowerrors.ErrInvalidThreadID)
	})
}

// conflictRunner fails with a version conflict a fixed number of times.
type conflictRunner struct {
	workflow.Runner
	conflicts int
	threadIDs []string
	decisions int
}

func (r *conflictRunner) Start(ctx context.Context, threadID string, in workflow.StartInput) (*workflow.State, []validation.Violation, error) {
	r.threadIDs = append(r.threadIDs, threadID)
	if len(r.threadIDs) <= r.conflicts {
		return nil, nil, workflowerrors.ErrVersionConflict
	}
	return &workflow.State{ThreadID: threadID, Status: workflow.StatusPendingManagerApproval}, []validation.Violation{}, nil
}

func (r *conflictRunner) SubmitManagerDecision(ctx context.Context, threadID string, actor workflow.Actor, d workflow.Decision, remarks string) (*workflow.State, error) {
	r.decisions++
	if r.decisions <= r.conflicts {
		return nil, workflowerrors.ErrVersionConflict
	}
	return &workflow.State{ThreadID: threadID, Status: workflow.StatusApproved}, nil
}

func TestWorkflowService_RetriesVersionConflicts(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t, 10)
	cfg := workflow.ServiceConfig{MaxConflictRetries: 2, RetryBackoff: time.Millisecond}

	t.Run("start retries with fresh thread ids", func(t *testing.T) {
		runner := &conflictRunner{conflicts: 2}
		svc := workflow.NewService(runner, w.checkpoints, nil, cfg, zap.NewNop())

		resp, err := svc.Start(ctx, w.employeeActor(), validStartRequest(w))

		require.NoError(t, err)
		require.Len(t, runner.threadIDs, 3)
		assert.NotEqual(t, runner.threadIDs[0], runner.threadIDs[1])
		assert.Equal(t, runner.threadIDs[2], resp.ThreadID)
	})

	t.Run("negative retries exhausted", func(t *testing.T) {
		runner := &conflictRunner{conflicts: 5}
		svc := workflow.NewService(runner, w.checkpoints, nil, cfg, zap.NewNop())

		_, err := svc.SubmitManagerDecision(ctx, w.managerActor(), workflow.DecisionRequest{
			ThreadID: w.threadID(0),
			Decision: "approved",
		})

		assert.ErrorIs(t, err, workflowerrors.ErrVersionConflict)
		assert.Equal(t, 3, runner.decisions)
	})

	t.Run("negative other errors are not retried", func(t *testing.T) {
		runner := &conflictRunner{conflicts: 0}
		svc := workflow.NewService(runner, w.checkpoints, nil, cfg, zap.NewNop())

		_, err := svc.Cancel(ctx, w.employeeActor(), workflow.CancelRequest{ThreadID: "leave_bad"})

		assert.ErrorIs(t, err, workflowerrors.ErrInvalidThreadID)
	})
}

func TestWorkflowService_StatusCache(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t, 10)
	db, mock := redismock.NewClientMock()
	cache := workflow.NewRedisStatusCache(db, time.Minute, zap.NewNop())
	svc := newWorldService(w, cache)

	started, err := newWorldService(w, nil).Start(ctx, w.employeeActor(), validStartRequest(w))
	require.NoError(t, err)
	key := workflow.GetStatusCacheKey(started.ThreadID)

	st, err := w.engine.Status(ctx, started.ThreadID)
	require.NoError(t, err)

	t.Run("miss on open run loads checkpoint without caching", func(t *testing.T) {
		mock.ExpectGet(key).RedisNil()

		resp, err := svc.GetStatus(ctx, w.employeeActor(), started.ThreadID)

		require.NoError(t, err)
		assert.Equal(t, st.ThreadID, resp.ThreadID)
		assert.Equal(t, workflow.StatusPendingManagerApproval, resp.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("hit skips checkpoint store", func(t *testing.T) {
		cached := workflow.StatusResponse{ThreadID: started.ThreadID, EmployeeID: w.employeeID.String(), Status: workflow.StatusPendingHRReview}
		payload, err := json.Marshal(cached)
		require.NoError(t, err)
		mock.ExpectGet(key).SetVal(string(payload))

		resp, err := svc.GetStatus(ctx, w.employeeActor(), started.ThreadID)

		require.NoError(t, err)
		assert.Equal(t, workflow.StatusPendingHRReview, resp.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("transition invalidates", func(t *testing.T) {
		mock.ExpectDel(key).SetVal(1)

		_, err := svc.SubmitManagerDecision(ctx, w.managerActor(), workflow.DecisionRequest{ThreadID: started.ThreadID, Decision: "rejected"})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("miss on closed run fills cache", func(t *testing.T) {
		fresh, err := newWorldService(w, nil).GetStatus(ctx, w.employeeActor(), started.ThreadID)
		require.NoError(t, err)
		payload, err := json.Marshal(fresh)
		require.NoError(t, err)
		mock.ExpectGet(key).RedisNil()
		mock.ExpectSet(key, payload, time.Minute).SetVal("OK")

		resp, err := svc.GetStatus(ctx, w.employeeActor(), started.ThreadID)

		require.NoError(t, err)
		assert.Equal(t, workflow.StatusRejected, resp.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative redis failure falls back to store", func(t *testing.T) {
		fresh, err := newWorldService(w, nil).GetStatus(ctx, w.employeeActor(), started.ThreadID)
		require.NoError(t, err)
		payload, err := json.Marshal(fresh)
		require.NoError(t, err)
		mock.ExpectGet(key).SetErr(errors.New("connection refused"))
		mock.ExpectSet(key, payload, time.Minute).SetErr(errors.New("connection refused"))

		resp, err := svc.GetStatus(ctx, w.employeeActor(), started.ThreadID)

		require.NoError(t, err)
		assert.Equal(t, workflow.StatusRejected, resp.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

type mapStatusCache struct {
	mu      sync.Mutex
	entries map[string]workflow.StatusResponse
}

func newMapStatusCache() *mapStatusCache {
	return &mapStatusCache{entries: map[string]workflow.StatusResponse{}}
}

func (c *mapStatusCache) Get(_ context.Context, threadID string) (*workflow.StatusResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	resp, ok := c.entries[threadID]
	if !ok {
		return nil, false
	}
	return &resp, true
}

func (c *mapStatusCache) Set(_ context.Context, resp workflow.StatusResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[resp.ThreadID] = resp
}

func (c *mapStatusCache) Invalidate(_ context.Context, threadID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, threadID)
}

// decidingRunner commits a decision right after the checkpoint read of the
// first Status call, before the service gets to cache what it read.
type decidingRunner struct {
	workflow.Runner
	afterRead func()
}

func (r *decidingRunner) Status(ctx context.Context, threadID string) (*workflow.State, error) {
	st, err := r.Runner.Status(ctx, threadID)
	if f := r.afterRead; f != nil {
		r.afterRead = nil
		f()
	}
	return st, err
}

func TestWorkflowService_StatusCache_DecisionDuringRead(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t, 10)
	cache := newMapStatusCache()
	runner := &decidingRunner{Runner: w.engine}
	svc := workflow.NewService(runner, w.checkpoints, cache, workflow.ServiceConfig{MaxConflictRetries: 2, RetryBackoff: time.Millisecond}, zap.NewNop())

	started, err := svc.Start(ctx, w.employeeActor(), validStartRequest(w))
	require.NoError(t, err)

	runner.afterRead = func() {
		_, err := svc.SubmitManagerDecision(ctx, w.managerActor(), workflow.DecisionRequest{ThreadID: started.ThreadID, Decision: "approved"})
		require.NoError(t, err)
	}

	first, err := svc.GetStatus(ctx, w.employeeActor(), started.ThreadID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPendingManagerApproval, first.Status)

	second, err := svc.GetStatus(ctx, w.employeeActor(), started.ThreadID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusApproved, second.Status)

	cached, ok := cache.Get(ctx, started.ThreadID)
	require.True(t, ok)
	assert.Equal(t, workflow.StatusApproved, cached.Status)
}
