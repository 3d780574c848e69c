package workflow

// Trigger represents an admin decision that advances a fund request.
type Trigger string

const (
	TriggerApprove          Trigger = "APPROVE"
	TriggerPartiallyApprove Trigger = "PARTIALLY_APPROVE"
	TriggerDecline          Trigger = "DECLINE"
)

// String returns the string representation of the trigger.
func (t Trigger) String() string {
	return string(t)
}
