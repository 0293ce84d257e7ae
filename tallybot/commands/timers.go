package commands

import (
	"context"
	"fmt"

	"github.com/tallybot/tallybot/tallybot"
	"github.com/tallybot/tallybot/tallybot/format"
)

func StartHandler(b *tallybot.Bot) HandlerFunc {
	return func(ctx context.Context, req *Request) (*Reply, error) {
		name := req.Cmd.Arg("name")
		if _, err := b.Timers.Start(ctx, req.Ctx.ChannelID, name); err != nil {
			return nil, err
		}
		body := fmt.Sprintf(":clock1: Timer **%s** started.\n\nStop with `%s stop %s`",
			name, b.Cfg.Bot.Prefix, name)
		return embedReply(format.Embed(req.User, ":clock1: start", body, format.SuccessColor)), nil
	}
}

func TimersHandler(b *tallybot.Bot) HandlerFunc {
	return func(ctx context.Context, req *Request) (*Reply, error) {
		entries, err := b.Timers.List(ctx, req.Ctx.ChannelID)
		if err != nil {
			return nil, err
		}
		return embedReply(format.TimerList(req.User, entries)), nil
	}
}

func StopHandler(b *tallybot.Bot) HandlerFunc {
	return func(ctx context.Context, req *Request) (*Reply, error) {
		name := req.Cmd.Arg("name")
		res, err := b.Timers.Stop(ctx, req.Ctx.ChannelID, name)
		if err != nil {
			return nil, err
		}
		return embedReply(format.TimerStopped(req.User, b.Cfg.Bot.Prefix, name, res.Elapsed)), nil
	}
}
