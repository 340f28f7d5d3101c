package moderation

import "fmt"

// NoticeText is the private message sent to the target before the action runs.
func NoticeText(action Action) string {
	guild := action.GuildName
	if guild == "" {
		guild = "the server"
	}
	switch action.Kind {
	case KindWarn:
		return fmt.Sprintf("⚠️ You were warned in **%s**\n**Reason:** %s\n**By:** %s", guild, action.Reason, action.Actor.Name)
	case KindKick:
		return fmt.Sprintf("👢 You are being kicked from **%s**\n**Reason:** %s\n**By:** %s", guild, action.Reason, action.Actor.Name)
	case KindBan:
		return fmt.Sprintf("🔨 You are being banned from **%s**\n**Reason:** %s\n**By:** %s", guild, action.Reason, action.Actor.Name)
	default:
		return ""
	}
}

// AuditReason is the reason recorded in the guild audit log.
func AuditReason(action Action) string {
	return fmt.Sprintf("%s | By %s", action.Reason, action.Actor.Name)
}
