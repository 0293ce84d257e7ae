package commands

import (
	"context"
	"fmt"

	"github.com/tallybot/tallybot/tallybot"
	"github.com/tallybot/tallybot/tallybot/format"
)

func SetHandler(b *tallybot.Bot) HandlerFunc {
	return func(ctx context.Context, req *Request) (*Reply, error) {
		name := req.Cmd.Arg("name")
		amount := req.Cmd.Int("amount", 0)

		updated, err := b.Tallies.Set(ctx, req.Ctx, req.Scope, name, amount)
		if err != nil {
			return nil, err
		}
		body := fmt.Sprintf("%s**%s** has been set to %d.\n\n%s",
			format.ScopeIcon(req.Scope), name, amount,
			format.DescriptionPreview(updated.Description))
		return embedReply(format.Embed(req.User, ":small_blue_diamond: set", body, format.SuccessColor)), nil
	}
}

func EmptyHandler(b *tallybot.Bot) HandlerFunc {
	return func(ctx context.Context, req *Request) (*Reply, error) {
		name := req.Cmd.Arg("name")
		updated, err := b.Tallies.Empty(ctx, req.Ctx, req.Scope, name)
		if err != nil {
			return nil, err
		}
		body := fmt.Sprintf("%s**%s** has been set to 0.\n\n%s",
			format.ScopeIcon(req.Scope), name,
			format.DescriptionPreview(updated.Description))
		return embedReply(format.Embed(req.User, ":recycle: empty", body, format.SuccessColor)), nil
	}
}

func EmptyAllHandler(b *tallybot.Bot) HandlerFunc {
	return func(ctx context.Context, req *Request) (*Reply, error) {
		emptied, err := b.Tallies.EmptyAll(ctx, req.Scope)
		if err != nil {
			return nil, err
		}
		body := fmt.Sprintf("%d %stallies set to 0.", emptied, format.ScopeIcon(req.Scope))
		return embedReply(format.Embed(req.User, ":boom: empty-all", body, format.SuccessColor)), nil
	}
}
