package commands

import (
	"context"
	"fmt"

	"github.com/tallybot/tallybot/tallybot"
	"github.com/tallybot/tallybot/tallybot/format"
)

func CreateHandler(b *tallybot.Bot) HandlerFunc {
	return func(ctx context.Context, req *Request) (*Reply, error) {
		name := req.Cmd.Arg("name")
		description := req.Cmd.Arg("description")

		created, err := b.Tallies.Create(ctx, req.Scope, name, description)
		if err != nil {
			return nil, err
		}

		body := fmt.Sprintf("**name:** %s%s\n\n**description:** %s",
			format.ScopeIcon(req.Scope), created.Name,
			format.DescriptionPreview(created.Description))
		return embedReply(format.Embed(req.User, ":bar_chart: create", body, format.SuccessColor)), nil
	}
}
