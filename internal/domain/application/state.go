package application

import (
	"errors"
	"fmt"
)

type Status string

const (
	StatusPending  Status = "Pending"
	StatusAccepted Status = "Accepted"
	StatusRejected Status = "Rejected"
	StatusInvited  Status = "Invited"
)

var ErrInvalidTransition = errors.New("invalid application transition")

// Valid statuses as stored; anything else is treated as corrupt data.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusInvited:
		return true
	}
	return false
}

// Actionable reports whether the application still awaits a decision.
// Accepted and Rejected are terminal.
func (s Status) Actionable() bool {
	return s == StatusPending || s == StatusInvited
}

// Transition validates a status change. Only Pending and Invited may move,
// and only to Accepted or Rejected. Anything else is a conflict the caller
// must surface, never a silent mutation.
func Transition(from, to Status) (Status, error) {
	if !from.Actionable() {
		return from, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	if to != StatusAccepted && to != StatusRejected {
		return from, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return to, nil
}

// ParseStatus maps the stored representation back to a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown application status %q", raw)
	}
	return s, nil
}
