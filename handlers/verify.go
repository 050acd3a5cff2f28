package handlers

import (
	"fmt"
	"slices"
	"time"

	"verifybot/cooldown"
	"verifybot/discorderr"
	"verifybot/policy"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Session is the part of *discordgo.Session the click path uses.
type Session interface {
	Responder
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildMemberDeleteWithReason(guildID, userID, reason string, options ...discordgo.RequestOption) error
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Outcome is the single user-visible result of one click.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeThrottled
	OutcomeInvalidControl
	OutcomeRoleNotFound
	OutcomeKicked
	OutcomeKickFailed
	OutcomeAlreadyGranted
	OutcomeGranted
	OutcomePermissionDenied
	OutcomeSystemError
)

var outcomeNames = map[Outcome]string{
	OutcomeIgnored:          "ignored",
	OutcomeThrottled:        "throttled",
	OutcomeInvalidControl:   "invalid_control",
	OutcomeRoleNotFound:     "role_not_found",
	OutcomeKicked:           "kicked",
	OutcomeKickFailed:       "kick_failed",
	OutcomeAlreadyGranted:   "already_granted",
	OutcomeGranted:          "granted",
	OutcomePermissionDenied: "permission_denied",
	OutcomeSystemError:      "system_error",
}

func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return "unknown"
}

// ClickEvent is one activation of a role grant button.
type ClickEvent struct {
	Interaction      *discordgo.Interaction
	GuildID          string
	UserID           string
	ControlID        string
	AccountCreatedAt time.Time
	MemberRoles      []string
}

// NewClickEvent extracts a ClickEvent from a component interaction. It
// reports false for anything that is not a guild click on a verify button.
func NewClickEvent(i *discordgo.Interaction) (ClickEvent, bool) {
	if i.Type != discordgo.InteractionMessageComponent {
		return ClickEvent{}, false
	}

	data := i.MessageComponentData()
	if !policy.IsControl(data.CustomID) {
		return ClickEvent{}, false
	}

	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		return ClickEvent{}, false
	}

	ev := ClickEvent{
		Interaction: i,
		GuildID:     i.GuildID,
		UserID:      i.Member.User.ID,
		ControlID:   data.CustomID,
		MemberRoles: i.Member.Roles,
	}

	// A zero creation time is rejected by the router as a system error.
	if created, err := discordgo.SnowflakeTimestamp(ev.UserID); err == nil {
		ev.AccountCreatedAt = created
	}

	return ev, true
}

type RouterConfig struct {
	Cooldown *cooldown.Tracker
	Policy   policy.Policy
	// AlertChannelID receives a moderator alert when an anti-alt kick fails.
	AlertChannelID string
	Now            func() time.Time
}

// Router runs the role grant pipeline for verify button clicks.
type Router struct {
	session  Session
	cooldown *cooldown.Tracker
	policy   policy.Policy
	alertCh  string
	now      func() time.Time
}

func NewRouter(s Session, cfg RouterConfig) *Router {
	r := &Router{
		session:  s,
		cooldown: cfg.Cooldown,
		policy:   cfg.Policy,
		alertCh:  cfg.AlertChannelID,
		now:      cfg.Now,
	}

	if r.cooldown == nil {
		r.cooldown = cooldown.New(cooldown.DefaultWindow)
	}
	if r.now == nil {
		r.now = time.Now
	}

	return r
}

// Handle acknowledges the click, then sends exactly one follow-up
// describing what happened. It never panics.
func (r *Router) Handle(ev ClickEvent) (out Outcome) {
	log := zap.L().With(
		zap.String("guildID", ev.GuildID),
		zap.String("userID", ev.UserID),
		zap.String("customID", ev.ControlID))

	acked := false
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("Panic while handling click", zap.Any("panic", rec))
			if acked {
				followUp(r.session, ev.Interaction, systemErrorNotice, r.now())
			}
			out = OutcomeSystemError
		}
		log.Debug("Click handled", zap.Stringer("outcome", out))
	}()

	if err := deferEphemeral(r.session, ev.Interaction); err != nil {
		log.Error("Failed to acknowledge click", zap.Error(err))
		return OutcomeSystemError
	}
	acked = true

	out, n := r.evaluate(ev, log)
	followUp(r.session, ev.Interaction, n, r.now())
	return out
}

func (r *Router) evaluate(ev ClickEvent, log *zap.Logger) (Outcome, Notice) {
	now := r.now()

	if res := r.cooldown.CheckAndRecord(ev.UserID, now); !res.Allowed {
		return OutcomeThrottled, throttledNotice(res.RetryAfterSeconds())
	}

	roleID, err := policy.ParseControlID(ev.ControlID)
	if err != nil {
		log.Warn("Malformed verify button")
		return OutcomeInvalidControl, invalidControlNotice
	}

	if ev.AccountCreatedAt.IsZero() {
		log.Error("Could not derive account creation time")
		return OutcomeSystemError, systemErrorNotice
	}

	role, err := r.findRole(ev.GuildID, roleID)
	if err != nil {
		log.Error("Failed to fetch guild roles", zap.Error(err))
		return OutcomeSystemError, systemErrorNotice
	}
	if role == nil {
		log.Warn("Verify button points at a deleted role", zap.String("roleID", roleID))
		return OutcomeRoleNotFound, roleNotFoundNotice
	}

	d := r.policy.Evaluate(policy.Input{
		ControlID:        ev.ControlID,
		AccountCreatedAt: ev.AccountCreatedAt,
		Now:              now,
		HasRole:          slices.Contains(ev.MemberRoles, roleID),
		RoleExists:       true,
	})

	switch d.Kind {
	case policy.DenyTooNew:
		return r.kick(ev, d, log)
	case policy.AlreadyGranted:
		return OutcomeAlreadyGranted, alreadyGrantedNotice(roleID)
	case policy.Grant:
		return r.grant(ev, roleID, log)
	default:
		return OutcomeInvalidControl, invalidControlNotice
	}
}

func (r *Router) findRole(guildID, roleID string) (*discordgo.Role, error) {
	roles, err := r.session.GuildRoles(guildID)
	if err != nil {
		return nil, err
	}

	for _, role := range roles {
		if role.ID == roleID {
			return role, nil
		}
	}
	return nil, nil
}

// kick makes a single removal attempt. A failure is reported to the user
// and, if configured, to the moderator channel.
func (r *Router) kick(ev ClickEvent, d policy.Decision, log *zap.Logger) (Outcome, Notice) {
	reason := fmt.Sprintf("Anti-Alt: Account age %d days", d.AgeDays)

	if err := r.session.GuildMemberDeleteWithReason(ev.GuildID, ev.UserID, reason); err != nil {
		log.Warn("Failed to kick new account",
			zap.Int("ageDays", d.AgeDays),
			zap.Bool("missingPermissions", discorderr.IsMissingPermissions(err)),
			zap.Error(err))
		r.alertKickFailed(ev, d, err, log)
		return OutcomeKickFailed, kickFailedNotice
	}

	log.Info("Kicked new account", zap.Int("ageDays", d.AgeDays))
	return OutcomeKicked, kickedNotice(d.AgeDays, r.policy.MinAccountAgeDays)
}

func (r *Router) alertKickFailed(ev ClickEvent, d policy.Decision, kickErr error, log *zap.Logger) {
	if r.alertCh == "" {
		return
	}

	_, err := r.session.ChannelMessageSendComplex(r.alertCh, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title: "⚠️ Anti-Alt: kick failed",
			Description: fmt.Sprintf("<@%s> (account age %d days) clicked a verify button for <@&%s> but could not be removed.\n```%v```",
				ev.UserID, d.AgeDays, d.RoleID, kickErr),
			Color:     colorOrange,
			Timestamp: r.now().UTC().Format(time.RFC3339),
		}},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err != nil {
		log.Error("Failed to send moderator alert", zap.String("channelID", r.alertCh), zap.Error(err))
	}
}

func (r *Router) grant(ev ClickEvent, roleID string, log *zap.Logger) (Outcome, Notice) {
	if err := r.session.GuildMemberRoleAdd(ev.GuildID, ev.UserID, roleID); err != nil {
		if discorderr.IsMissingPermissions(err) {
			log.Warn("Missing permissions to grant role", zap.String("roleID", roleID), zap.Error(err))
			return OutcomePermissionDenied, permissionDeniedNotice
		}
		if discorderr.IsUnknownRole(err) {
			log.Warn("Role deleted before it could be granted", zap.String("roleID", roleID))
			return OutcomeRoleNotFound, roleNotFoundNotice
		}
		log.Error("Failed to grant role", zap.String("roleID", roleID), zap.Error(err))
		return OutcomeSystemError, systemErrorNotice
	}

	log.Info("Role granted", zap.String("roleID", roleID))
	return OutcomeGranted, grantedNotice(roleID)
}

var (
	invalidControlNotice   = Notice{"❌ Error", "This button is misconfigured. Please tell a moderator.", colorRed}
	roleNotFoundNotice     = Notice{"❌ Error", "This role no longer exists (it may have been deleted).", colorRed}
	kickFailedNotice       = Notice{"⚠️ Warning", "Your account was flagged as suspicious, but the bot is not allowed to kick it.", colorOrange}
	permissionDeniedNotice = Notice{"❌ Permission Error", "The bot is not allowed to give this role (check the role order).", colorRed}
	systemErrorNotice      = Notice{"❌ System Error", "Something went wrong. Please try again in a moment.", colorRed}
)

func throttledNotice(retryAfter float64) Notice {
	return Notice{"⏳ Slow down (Cooldown)", fmt.Sprintf("Please wait **%.1f** seconds before clicking again.", retryAfter), colorOrange}
}

func kickedNotice(ageDays, minDays int) Notice {
	return Notice{
		"🚫 Access Denied",
		fmt.Sprintf("Your account is too new (%d days).\nAt least %d days are required.\n**Status: KICKED**", ageDays, minDays),
		colorRed,
	}
}

func alreadyGrantedNotice(roleID string) Notice {
	return Notice{"ℹ️ Info", fmt.Sprintf("You already have the <@&%s> role.", roleID), colorBlue}
}

func grantedNotice(roleID string) Notice {
	return Notice{"✅ Verification Success", fmt.Sprintf("You are verified!\nRole granted: <@&%s>", roleID), colorGreen}
}
