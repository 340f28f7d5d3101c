package bot

import (
	"tempest-bot/internal/access"

	"github.com/bwmarrin/discordgo"
)

// memberPermissions ORs @everyone and the member's role permissions. The guild
// owner holds every permission.
func memberPermissions(guild *discordgo.Guild, member *discordgo.Member) int64 {
	if guild == nil || member == nil {
		return 0
	}
	if member.User != nil && member.User.ID == guild.OwnerID {
		return discordgo.PermissionAll
	}
	perms := int64(0)
	roleMap := make(map[string]*discordgo.Role, len(guild.Roles))
	for _, role := range guild.Roles {
		roleMap[role.ID] = role
		if role.ID == guild.ID {
			perms |= role.Permissions
		}
	}
	for _, roleID := range member.Roles {
		if role := roleMap[roleID]; role != nil {
			perms |= role.Permissions
		}
	}
	return perms
}

func capabilitiesFrom(perms int64) access.Capability {
	var caps access.Capability
	if perms&discordgo.PermissionAdministrator != 0 {
		caps |= access.CapAdministrator
	}
	if perms&discordgo.PermissionKickMembers != 0 {
		caps |= access.CapKick
	}
	if perms&discordgo.PermissionBanMembers != 0 {
		caps |= access.CapBan
	}
	if perms&discordgo.PermissionModerateMembers != 0 {
		caps |= access.CapModerate
	}
	return caps
}

// topRolePosition is the highest position among the member's roles, 0 when
// the member only has @everyone.
func topRolePosition(guild *discordgo.Guild, member *discordgo.Member) int {
	if guild == nil || member == nil {
		return 0
	}
	held := make(map[string]struct{}, len(member.Roles))
	for _, id := range member.Roles {
		held[id] = struct{}{}
	}
	top := 0
	for _, role := range guild.Roles {
		if _, ok := held[role.ID]; ok && role.Position > top {
			top = role.Position
		}
	}
	return top
}

// actorFrom prefers the permissions Discord computed for an interaction and
// falls back to role permissions for prefix commands.
func actorFrom(guild *discordgo.Guild, member *discordgo.Member) access.Actor {
	if member == nil || member.User == nil {
		return access.Actor{}
	}
	perms := member.Permissions
	if perms == 0 {
		perms = memberPermissions(guild, member)
	}
	actor := access.Actor{
		ID:           member.User.ID,
		Name:         userTag(member.User),
		Capabilities: capabilitiesFrom(perms),
		Rank:         topRolePosition(guild, member),
	}
	if guild != nil && guild.OwnerID == member.User.ID {
		actor.GuildOwner = true
		actor.Capabilities |= access.CapAdministrator
	}
	return actor
}

func targetFrom(guild *discordgo.Guild, member *discordgo.Member) access.Target {
	if member == nil || member.User == nil {
		return access.Target{}
	}
	return access.Target{
		ID:   member.User.ID,
		Name: userTag(member.User),
		Rank: topRolePosition(guild, member),
	}
}

func agentFrom(guild *discordgo.Guild, member *discordgo.Member) access.Agent {
	if member == nil || member.User == nil {
		return access.Agent{}
	}
	return access.Agent{ID: member.User.ID, Rank: topRolePosition(guild, member)}
}

// userTag renders name#discriminator for legacy accounts and the bare
// username otherwise.
func userTag(user *discordgo.User) string {
	if user == nil {
		return ""
	}
	if user.Discriminator == "" || user.Discriminator == "0" {
		return user.Username
	}
	return user.Username + "#" + user.Discriminator
}

func displayName(member *discordgo.Member) string {
	if member == nil {
		return ""
	}
	if member.Nick != "" {
		return member.Nick
	}
	return userTag(member.User)
}
