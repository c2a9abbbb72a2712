package enums

import "fmt"

// Status is the release flag carried by a spool, orthogonal to its Stage.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusReleased Status = "RELEASED"
	StatusBlocked  Status = "BLOCKED"
)

var validStatuses = []Status{
	StatusPending,
	StatusReleased,
	StatusBlocked,
}

// Statuses returns every known status value.
func Statuses() []Status {
	out := make([]Status, len(validStatuses))
	copy(out, validStatuses)
	return out
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}

// IsValid reports whether the value is a known Status.
func (s Status) IsValid() bool {
	for _, candidate := range validStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStatus converts raw input into a Status.
func ParseStatus(value string) (Status, error) {
	for _, candidate := range validStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid status %q", value)
}
