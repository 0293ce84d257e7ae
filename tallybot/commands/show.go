package commands

import (
	"context"

	"github.com/tallybot/tallybot/tallybot"
	"github.com/tallybot/tallybot/tallybot/format"
)

func ShowHandler(b *tallybot.Bot) HandlerFunc {
	return func(ctx context.Context, req *Request) (*Reply, error) {
		page := int(req.Cmd.Int("page", 1))
		res, err := b.Tallies.List(ctx, req.Scope, page)
		if err != nil {
			return nil, err
		}
		return embedReply(format.TallyPage(req.User, b.Cfg.Bot.Prefix, req.Scope, res)), nil
	}
}
