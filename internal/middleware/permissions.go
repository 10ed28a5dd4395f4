package middleware

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/slashdispatch/pkg/cmd"
)

var PermissionNames = map[int64]string{
	discordgo.PermissionKickMembers:            "Kick Members",
	discordgo.PermissionBanMembers:             "Ban Members",
	discordgo.PermissionAdministrator:          "Administrator",
	discordgo.PermissionManageChannels:         "Manage Channels",
	discordgo.PermissionManageGuild:            "Manage Server",
	discordgo.PermissionViewAuditLogs:          "View Audit Logs",
	discordgo.PermissionSendMessages:           "Send Messages",
	discordgo.PermissionManageMessages:         "Manage Messages",
	discordgo.PermissionMentionEveryone:        "Mention Everyone",
	discordgo.PermissionManageThreads:          "Manage Threads",
	discordgo.PermissionManageNicknames:        "Manage Nicknames",
	discordgo.PermissionManageRoles:            "Manage Roles",
	discordgo.PermissionManageWebhooks:         "Manage Webhooks",
	discordgo.PermissionManageEvents:           "Manage Events",
	discordgo.PermissionModerateMembers:        "Moderate Members",
	discordgo.PermissionUseApplicationCommands: "Use Application Commands",
}

// PermissionError lists the permissions the member lacked.
type PermissionError struct {
	Missing []int64
}

func (e *PermissionError) Error() string {
	return "you need at least one of: " + strings.Join(PermissionLabels(e.Missing), ", ")
}

// PermissionLabels turns permission bits into readable names.
func PermissionLabels(perms []int64) []string {
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		name := PermissionNames[p]
		if name == "" {
			name = fmt.Sprintf("0x%x", p)
		}
		out = append(out, name)
	}
	return out
}

// RequireAnyPermission passes when the invoking member holds any of the
// given permissions or is an administrator. The developer ID, when set,
// always passes. Invocations outside of guilds carry no member
// permissions and fail.
func RequireAnyPermission(developerID string, perms ...int64) cmd.Check {
	return func(c *cmd.Context) (bool, error) {
		i := c.Interaction
		if i == nil {
			return false, nil
		}
		if developerID != "" && i.User != nil && i.User.ID == developerID {
			return true, nil
		}
		if len(perms) == 0 {
			return true, nil
		}
		member := i.Member
		if member == nil {
			return false, nil
		}
		if member.Permissions&discordgo.PermissionAdministrator != 0 {
			return true, nil
		}
		for _, p := range perms {
			if member.Permissions&p != 0 {
				return true, nil
			}
		}
		return false, &PermissionError{Missing: perms}
	}
}
