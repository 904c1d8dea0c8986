package workflow_test

import (
	"testing"

	"go-leaveflow/internal/workflow"
	workflowerrors "go-leaveflow/internal/workflow/errors"

	"github.com/stretchr/testify/assert"
)

func TestLeaveMachine_Fire(t *testing.T) {
	m := workflow.NewLeaveMachine()

	tests := []struct {
		name       string
		status     workflow.Status
		hrReview   bool
		trigger    workflow.Trigger
		wantTo     workflow.Status
		wantEffect workflow.Effect
		wantErr    bool
	}{
		{"validation passes", workflow.StatusPendingValidation, false, workflow.TriggerValidationPassed, workflow.StatusPendingManagerApproval, workflow.EffectCreateAndReserve, false},
		{"validation fails", workflow.StatusPendingValidation, false, workflow.TriggerValidationFailed, workflow.StatusValidationFailed, workflow.EffectNone, false},
		{"manager approves short leave", workflow.StatusPendingManagerApproval, false, workflow.TriggerManagerApprove, workflow.StatusApproved, workflow.EffectCommit, false},
		{"manager approves long leave", workflow.StatusPendingManagerApproval, true, workflow.TriggerManagerApprove, workflow.StatusPendingHRReview, workflow.EffectNone, false},
		{"manager rejects", workflow.StatusPendingManagerApproval, true, workflow.TriggerManagerReject, workflow.StatusRejected, workflow.EffectRelease, false},
		{"hr approves", workflow.StatusPendingHRReview, true, workflow.TriggerHRApprove, workflow.StatusApproved, workflow.EffectCommit, false},
		{"hr rejects", workflow.StatusPendingHRReview, true, workflow.TriggerHRReject, workflow.StatusRejected, workflow.EffectRelease, false},
		{"cancel while pending manager", workflow.StatusPendingManagerApproval, false, workflow.TriggerCancel, workflow.StatusCancelled, workflow.EffectRelease, false},
		{"cancel while pending hr", workflow.StatusPendingHRReview, true, workflow.TriggerCancel, workflow.StatusCancelled, workflow.EffectRelease, false},
		{"negative hr decision before manager", workflow.StatusPendingManagerApproval, true, workflow.TriggerHRApprove, "", "", true},
		{"negative manager decision at hr", workflow.StatusPendingHRReview, true, workflow.TriggerManagerApprove, "", "", true},
		{"negative decision on approved run", workflow.StatusApproved, false, workflow.TriggerManagerApprove, "", "", true},
		{"negative cancel after rejection", workflow.StatusRejected, false, workflow.TriggerCancel, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &workflow.State{
				ThreadID:         "leave_c_e_1",
				Status:           tt.status,
				Node:             tt.status.Node(),
				RequiresHRReview: tt.hrReview,
			}

			got, err := m.Fire(s, tt.trigger)

			if tt.wantErr {
				assert.ErrorIs(t, err, workflowerrors.ErrInvalidTransition)
				assert.Contains(t, err.Error(), "leave_c_e_1")
				assert.Contains(t, err.Error(), string(tt.trigger))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.status, got.From)
			assert.Equal(t, tt.wantTo, got.To)
			assert.Equal(t, tt.wantEffect, got.Effect)
			assert.Equal(t, tt.status, s.Status)
		})
	}
}

func TestStatus_Node(t *testing.T) {
	assert.Equal(t, workflow.NodeValidating, workflow.StatusPendingValidation.Node())
	assert.Equal(t, workflow.NodePendingManager, workflow.StatusPendingManagerApproval.Node())
	assert.Equal(t, workflow.NodePendingHR, workflow.StatusPendingHRReview.Node())
	for _, s := range []workflow.Status{workflow.StatusValidationFailed, workflow.StatusApproved, workflow.StatusRejected, workflow.StatusCancelled} {
		assert.True(t, s.IsTerminal(), s)
		assert.Equal(t, workflow.NodeDone, s.Node())
	}
	assert.False(t, workflow.Status("unknown").IsValid())
	assert.Empty(t, workflow.NewLeaveMachine().PermittedTriggers(workflow.StatusApproved))
}

func TestState_ApproverRemarks(t *testing.T) {
	s := &workflow.State{}
	assert.Nil(t, s.ApproverRemarks())

	s.ManagerRemarks = "ok"
	assert.Equal(t, "Manager: ok", *s.ApproverRemarks())

	s.HRRemarks = "enjoy"
	assert.Equal(t, "Manager: ok\nHR: enjoy", *s.ApproverRemarks())
}
