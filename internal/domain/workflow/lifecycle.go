package workflow

import "fmt"

// Lifecycle is the transition table for the fund-request approval workflow.
// It is stateless: the current status lives in the store, callers ask the
// lifecycle which transitions are legal from it.
type Lifecycle struct {
	transitions map[Status]map[Trigger]Status
}

// NewLifecycle builds the fund-request lifecycle. A pending request moves
// exactly once to one of the terminal statuses; terminal statuses permit
// no further triggers.
func NewLifecycle() *Lifecycle {
	l := &Lifecycle{transitions: make(map[Status]map[Trigger]Status)}
	l.permit(StatusPending, TriggerApprove, StatusApproved)
	l.permit(StatusPending, TriggerPartiallyApprove, StatusPartiallyApproved)
	l.permit(StatusPending, TriggerDecline, StatusDeclined)
	return l
}

func (l *Lifecycle) permit(from Status, trigger Trigger, to Status) {
	if !from.IsValid() {
		panic(fmt.Sprintf("invalid source status: %s", from))
	}
	if !to.IsValid() {
		panic(fmt.Sprintf("invalid target status: %s", to))
	}
	if l.transitions[from] == nil {
		l.transitions[from] = make(map[Trigger]Status)
	}
	l.transitions[from][trigger] = to
}

// CanFire returns true if the trigger is permitted from the given status.
func (l *Lifecycle) CanFire(from Status, trigger Trigger) bool {
	_, ok := l.transitions[from][trigger]
	return ok
}

// Fire resolves the status reached by firing the trigger from the given
// status, or ErrInvalidTransition if the transition is not defined.
func (l *Lifecycle) Fire(from Status, trigger Trigger) (Status, error) {
	if !from.IsValid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidStatus, from)
	}
	to, ok := l.transitions[from][trigger]
	if !ok {
		return "", fmt.Errorf("%w: cannot fire %s from %s", ErrInvalidTransition, trigger, from)
	}
	return to, nil
}

// PermittedTriggers returns the triggers that can be fired from the given status.
func (l *Lifecycle) PermittedTriggers(from Status) []Trigger {
	triggers := make([]Trigger, 0, len(l.transitions[from]))
	for trigger := range l.transitions[from] {
		triggers = append(triggers, trigger)
	}
	return triggers
}
