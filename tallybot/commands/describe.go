package commands

import (
	"context"
	"fmt"

	"github.com/tallybot/tallybot/tallybot"
	"github.com/tallybot/tallybot/tallybot/format"
)

func DescribeHandler(b *tallybot.Bot) HandlerFunc {
	return func(ctx context.Context, req *Request) (*Reply, error) {
		name := req.Cmd.Arg("name")
		description := req.Cmd.Arg("description")

		if err := b.Tallies.Describe(ctx, req.Scope, name, description); err != nil {
			return nil, err
		}
		body := fmt.Sprintf("%sTally **%s**'s description is now **_%s_**",
			format.ScopeIcon(req.Scope), name, description)
		return embedReply(format.Embed(req.User, ":pencil2: describe", body, format.SuccessColor)), nil
	}
}

func DetailsHandler(b *tallybot.Bot) HandlerFunc {
	return func(ctx context.Context, req *Request) (*Reply, error) {
		name := req.Cmd.Arg("name")
		t, err := b.Tallies.Get(ctx, req.Scope, name)
		if err != nil {
			return nil, err
		}
		return embedReply(format.TallyDetails(req.User, req.Scope, t)), nil
	}
}
