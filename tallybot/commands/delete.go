package commands

import (
	"context"
	"fmt"

	"github.com/tallybot/tallybot/tallybot"
	"github.com/tallybot/tallybot/tallybot/format"
)

func DeleteHandler(b *tallybot.Bot) HandlerFunc {
	return func(ctx context.Context, req *Request) (*Reply, error) {
		name := req.Cmd.Arg("name")
		if err := b.Tallies.Delete(ctx, req.Scope, name); err != nil {
			return nil, err
		}
		body := fmt.Sprintf("Tally %s**%s** has been destroyed.", format.ScopeIcon(req.Scope), name)
		return embedReply(format.Embed(req.User, ":wastebasket: delete", body, format.SuccessColor)), nil
	}
}

func DeleteAllHandler(b *tallybot.Bot) HandlerFunc {
	return func(ctx context.Context, req *Request) (*Reply, error) {
		deleted, err := b.Tallies.DeleteAll(ctx, req.Scope)
		if err != nil {
			return nil, err
		}
		body := fmt.Sprintf("%d %stallies deleted.", deleted, format.ScopeIcon(req.Scope))
		return embedReply(format.Embed(req.User, ":recycle: delete-all", body, format.SuccessColor)), nil
	}
}
