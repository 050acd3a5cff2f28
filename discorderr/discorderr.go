// Package discorderr classifies Discord REST failures.
package discorderr

import (
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

func restError(err error) (*discordgo.RESTError, bool) {
	var re *discordgo.RESTError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

func hasCode(re *discordgo.RESTError, code int) bool {
	return re.Message != nil && re.Message.Code == code
}

func hasStatus(re *discordgo.RESTError, status int) bool {
	return re.Response != nil && re.Response.StatusCode == status
}

// IsMissingPermissions is true for 50013 errors and bare HTTP 403s, which
// is what Discord returns when the bot's top role sits below the target.
func IsMissingPermissions(err error) bool {
	re, ok := restError(err)
	if !ok {
		return false
	}
	return hasCode(re, discordgo.ErrCodeMissingPermissions) || hasStatus(re, http.StatusForbidden)
}

func IsUnknownMessage(err error) bool {
	re, ok := restError(err)
	if !ok {
		return false
	}
	return hasCode(re, discordgo.ErrCodeUnknownMessage) || hasStatus(re, http.StatusNotFound)
}

func IsUnknownRole(err error) bool {
	re, ok := restError(err)
	return ok && hasCode(re, discordgo.ErrCodeUnknownRole)
}
