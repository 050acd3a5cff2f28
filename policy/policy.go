// Package policy decides what a role grant click should do. It performs
// no I/O; the caller executes the side effect named by the Decision.
package policy

import (
	"time"
)

const DefaultMinAccountAgeDays = 3

type Kind int

const (
	InvalidControl Kind = iota
	DenyTooNew
	AlreadyGranted
	Grant
)

func (k Kind) String() string {
	switch k {
	case InvalidControl:
		return "invalid_control"
	case DenyTooNew:
		return "deny_too_new"
	case AlreadyGranted:
		return "already_granted"
	case Grant:
		return "grant"
	default:
		return "unknown"
	}
}

type Decision struct {
	Kind   Kind
	RoleID string
	// AgeDays is the account age in whole days.
	AgeDays int
	// Kick is set with DenyTooNew: the member must be removed from the guild.
	Kick bool
}

// Input is everything Evaluate looks at. HasRole must be read fresh for
// every click.
type Input struct {
	ControlID        string
	AccountCreatedAt time.Time
	Now              time.Time
	HasRole          bool
	RoleExists       bool
}

type Policy struct {
	MinAccountAgeDays int
}

func New(minAccountAgeDays int) Policy {
	return Policy{MinAccountAgeDays: minAccountAgeDays}
}

// AccountAgeDays truncates now-createdAt to whole days.
func AccountAgeDays(createdAt, now time.Time) int {
	return int(now.Sub(createdAt) / (24 * time.Hour))
}

func (p Policy) Evaluate(in Input) Decision {
	roleID, err := ParseControlID(in.ControlID)
	if err != nil || !in.RoleExists {
		return Decision{Kind: InvalidControl, RoleID: roleID}
	}

	age := AccountAgeDays(in.AccountCreatedAt, in.Now)
	if age < p.MinAccountAgeDays {
		return Decision{Kind: DenyTooNew, RoleID: roleID, AgeDays: age, Kick: true}
	}

	if in.HasRole {
		return Decision{Kind: AlreadyGranted, RoleID: roleID, AgeDays: age}
	}

	return Decision{Kind: Grant, RoleID: roleID, AgeDays: age}
}
