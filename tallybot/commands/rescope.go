package commands

import (
	"context"
	"fmt"

	"github.com/tallybot/tallybot/tallybot"
	"github.com/tallybot/tallybot/tallybot/command"
	"github.com/tallybot/tallybot/tallybot/format"
)

// ChannelHandler re-keys a server tally into the current channel.
func ChannelHandler(b *tallybot.Bot) HandlerFunc {
	return func(ctx context.Context, req *Request) (*Reply, error) {
		name := req.Cmd.Arg("name")
		source := command.Scope{Kind: command.ScopeServer, ID: req.Ctx.GuildID}
		target := command.Scope{Kind: command.ScopeChannel, ID: req.Ctx.ChannelID}

		if err := b.Tallies.Rescope(ctx, source, name, target); err != nil {
			return nil, err
		}
		body := fmt.Sprintf("**%s** has been assigned to this channel.", name)
		return embedReply(format.Embed(req.User, ":regional_indicator_c: channel", body, format.SuccessColor)), nil
	}
}

// GlobalHandler re-keys a channel tally into server scope.
func GlobalHandler(b *tallybot.Bot) HandlerFunc {
	return func(ctx context.Context, req *Request) (*Reply, error) {
		name := req.Cmd.Arg("name")
		source := command.Scope{Kind: command.ScopeChannel, ID: req.Ctx.ChannelID}
		target := command.Scope{Kind: command.ScopeServer, ID: req.Ctx.GuildID}

		if err := b.Tallies.Rescope(ctx, source, name, target); err != nil {
			return nil, err
		}
		body := fmt.Sprintf("**%s** has been changed to a global tally.", name)
		return embedReply(format.Embed(req.User, ":regional_indicator_g: global", body, format.SuccessColor)), nil
	}
}
