package workflow

import (
	"fmt"

	workflowerrors "go-leaveflow/internal/workflow/errors"
)

// Effect is the side effect the engine applies while taking a transition.
type Effect string

const (
	EffectNone             Effect = "none"
	EffectCreateAndReserve Effect = "create_and_reserve"
	EffectCommit           Effect = "commit"
	EffectRelease          Effect = "release"
)

// GuardFunc decides whether a guarded transition applies to a run.
type GuardFunc func(s *State) bool

type Transition struct {
	From    Status
	To      Status
	Trigger Trigger
	Effect  Effect
	guard   GuardFunc
}

// StateConfiguration collects the transitions leaving one status.
type StateConfiguration struct {
	from        Status
	transitions map[Trigger][]Transition
}

func (c *StateConfiguration) Permit(trigger Trigger, to Status, effect Effect) *StateConfiguration {
	return c.PermitIf(trigger, to, effect, nil)
}

// PermitIf registers a guarded transition. Transitions for the same trigger
// are tried in registration order and the first passing guard wins.
func (c *StateConfiguration) PermitIf(trigger Trigger, to Status, effect Effect, guard GuardFunc) *StateConfiguration {
	if !to.IsValid() {
		panic(fmt.Sprintf("invalid target status: %s", to))
	}
	c.transitions[trigger] = append(c.transitions[trigger], Transition{
		From:    c.from,
		To:      to,
		Trigger: trigger,
		Effect:  effect,
		guard:   guard,
	})
	return c
}

// Machine is an immutable transition table shared by every run.
type Machine struct {
	configurations map[Status]*StateConfiguration
}

func NewMachine() *Machine {
	return &Machine{configurations: make(map[Status]*StateConfiguration)}
}

func (m *Machine) Configure(status Status) *StateConfiguration {
	if !status.IsValid() {
		panic(fmt.Sprintf("invalid status: %s", status))
	}
	c, ok := m.configurations[status]
	if !ok {
		c = &StateConfiguration{from: status, transitions: make(map[Trigger][]Transition)}
		m.configurations[status] = c
	}
	return c
}

// Fire resolves the transition trigger takes from s without mutating s.
func (m *Machine) Fire(s *State, trigger Trigger) (Transition, error) {
	c, ok := m.configurations[s.Status]
	if !ok || len(c.transitions[trigger]) == 0 {
		return Transition{}, fmt.Errorf("%w: thread %s at node %s (status %s) cannot take %s",
			workflowerrors.ErrInvalidTransition, s.ThreadID, s.Node, s.Status, trigger)
	}
	for _, t := range c.transitions[trigger] {
		if t.guard == nil || t.guard(s) {
			return t, nil
		}
	}
	return Transition{}, fmt.Errorf("%w: thread %s at node %s: no guard for %s passed",
		workflowerrors.ErrInvalidTransition, s.ThreadID, s.Node, trigger)
}

// PermittedTriggers lists the triggers registered for status.
func (m *Machine) PermittedTriggers(status Status) []Trigger {
	c, ok := m.configurations[status]
	if !ok {
		return []Trigger{}
	}
	triggers := make([]Trigger, 0, len(c.transitions))
	for t := range c.transitions {
		triggers = append(triggers, t)
	}
	return triggers
}

func needsHRReview(s *State) bool { return s.RequiresHRReview }

func skipsHRReview(s *State) bool { return !s.RequiresHRReview }

// NewLeaveMachine builds the two-tier leave approval graph.
func NewLeaveMachine() *Machine {
	m := NewMachine()

	m.Configure(StatusPendingValidation).
		Permit(TriggerValidationFailed, StatusValidationFailed, EffectNone).
		Permit(TriggerValidationPassed, StatusPendingManagerApproval, EffectCreateAndReserve)

	m.Configure(StatusPendingManagerApproval).
		Permit(TriggerManagerReject, StatusRejected, EffectRelease).
		PermitIf(TriggerManagerApprove, StatusApproved, EffectCommit, skipsHRReview).
		PermitIf(TriggerManagerApprove, StatusPendingHRReview, EffectNone, needsHRReview).
		Permit(TriggerCancel, StatusCancelled, EffectRelease)

	m.Configure(StatusPendingHRReview).
		Permit(TriggerHRApprove, StatusApproved, EffectCommit).
		Permit(TriggerHRReject, StatusRejected, EffectRelease).
		Permit(TriggerCancel, StatusCancelled, EffectRelease)

	return m
}
