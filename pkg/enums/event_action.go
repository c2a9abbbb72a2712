package enums

import "fmt"

// EventAction tags what kind of change an audit event records.
type EventAction string

const (
	// EventActionUpdate is the only action today; every transition appends one.
	EventActionUpdate EventAction = "UPDATE"
)

var validEventActions = []EventAction{
	EventActionUpdate,
}

// String implements fmt.Stringer.
func (a EventAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known EventAction.
func (a EventAction) IsValid() bool {
	for _, candidate := range validEventActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseEventAction converts raw input into an EventAction.
func ParseEventAction(value string) (EventAction, error) {
	for _, candidate := range validEventActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event action %q", value)
}
