package workflow

// Status represents the lifecycle state of a fund request.
// The same type is used by the workflow writer and the report reader, so
// both sides always compare against the exact stored representation.
type Status string

const (
	StatusPending           Status = "pending"
	StatusApproved          Status = "approved"
	StatusPartiallyApproved Status = "partially_approved"
	StatusDeclined          Status = "declined"
)

var validStatuses = map[Status]bool{
	StatusPending:           true,
	StatusApproved:          true,
	StatusPartiallyApproved: true,
	StatusDeclined:          true,
}

var terminalStatuses = map[Status]bool{
	StatusApproved:          true,
	StatusPartiallyApproved: true,
	StatusDeclined:          true,
}

var displayNames = map[Status]string{
	StatusPending:           "Pending",
	StatusApproved:          "Approved",
	StatusPartiallyApproved: "Partially Approved",
	StatusDeclined:          "Declined",
}

// IsTerminal returns true if no further transition is defined for the status.
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// IsValid returns true if the status is a known lifecycle status.
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// Display returns the human-readable category name used in report output.
func (s Status) Display() string {
	if name, ok := displayNames[s]; ok {
		return name
	}
	return string(s)
}

// String returns the stored string representation of the status.
func (s Status) String() string {
	return string(s)
}
