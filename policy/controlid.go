package policy

import (
	"errors"
	"strings"
)

// ControlPrefix marks a button as a role grant button.
const ControlPrefix = "verify:"

var ErrInvalidControl = errors.New("invalid control identifier")

// ControlID encodes the custom ID of a button granting roleID.
func ControlID(roleID string) string {
	return ControlPrefix + roleID
}

// IsControl reports whether customID belongs to a role grant button,
// regardless of whether its role part is well formed.
func IsControl(customID string) bool {
	return strings.HasPrefix(customID, ControlPrefix)
}

// ParseControlID returns the role ID of a "verify:<digits>" identifier.
func ParseControlID(customID string) (string, error) {
	roleID, ok := strings.CutPrefix(customID, ControlPrefix)
	if !ok || !isSnowflake(roleID) {
		return "", ErrInvalidControl
	}
	return roleID, nil
}

func isSnowflake(s string) bool {
	if s == "" || len(s) > 20 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
