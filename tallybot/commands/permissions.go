package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/disgoorg/snowflake/v2"
	"github.com/tallybot/tallybot/tallybot"
	"github.com/tallybot/tallybot/tallybot/command"
	"github.com/tallybot/tallybot/tallybot/format"
)

// PermissionsHandler lists the server's command->role bindings, or
// with both args sets one: `permissions <command> <roleID>`.
func PermissionsHandler(b *tallybot.Bot) HandlerFunc {
	return func(ctx context.Context, req *Request) (*Reply, error) {
		if req.Ctx.IsDM {
			return nil, &command.MalformedArgsError{Reason: "permissions are only available in a server"}
		}

		cmdName := req.Cmd.Arg("command")
		roleArg := req.Cmd.Arg("role")

		if cmdName != "" && roleArg != "" {
			roleID, err := snowflake.Parse(strings.Trim(roleArg, "<@&>"))
			if err != nil {
				return nil, &command.MalformedArgsError{Reason: fmt.Sprintf("%q is not a valid role id", roleArg)}
			}
			if err := b.Permissions.Set(ctx, req.Ctx.GuildID, cmdName, roleID); err != nil {
				return nil, err
			}
			body := fmt.Sprintf("Command **%s** is now restricted to role <@&%s>.", cmdName, roleID)
			return embedReply(format.Embed(req.User, ":lock: permissions", body, format.SuccessColor)), nil
		}

		perms, err := b.Permissions.List(ctx, req.Ctx.GuildID)
		if err != nil {
			return nil, err
		}
		var body strings.Builder
		if len(perms) == 0 {
			body.WriteString("No command restrictions are set. Everyone may run every command.")
		} else {
			for _, p := range perms {
				fmt.Fprintf(&body, "**%s** → <@&%s>\n", p.Command, p.RoleID)
			}
		}
		return embedReply(format.Embed(req.User, ":lock: permissions", body.String(), format.SuccessColor)), nil
	}
}
