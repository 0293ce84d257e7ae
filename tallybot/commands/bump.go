package commands

import (
	"context"
	"log/slog"

	"github.com/tallybot/tallybot/tallybot"
	"github.com/tallybot/tallybot/tallybot/format"
	"github.com/tallybot/tallybot/tallybot/tally"
)

const (
	ReactionBump = "🔼"
	ReactionDump = "🔽"
)

func BumpHandler(b *tallybot.Bot) HandlerFunc {
	return bumpOrDump(b, true)
}

func DumpHandler(b *tallybot.Bot) HandlerFunc {
	return bumpOrDump(b, false)
}

func bumpOrDump(b *tallybot.Bot, isBump bool) HandlerFunc {
	return func(ctx context.Context, req *Request) (*Reply, error) {
		name := req.Cmd.Arg("name")
		amount := req.Cmd.Int("amount", 1)

		var (
			result *tally.BumpResult
			err    error
		)
		if isBump {
			result, err = b.Tallies.Bump(ctx, req.Ctx, req.Scope, name, amount)
		} else {
			result, err = b.Tallies.Dump(ctx, req.Ctx, req.Scope, name, amount)
		}
		if err != nil {
			return nil, err
		}

		slog.Info("Tally count changed",
			slog.String("type", "cmd"),
			slog.String("tally", name),
			slog.String("scope", req.Scope.Kind.String()),
			slog.Int64("previous", result.Previous),
			slog.Int64("current", result.Current))

		reply := embedReply(format.BumpReply(req.User, isBump, req.Scope, result))
		reply.Reactions = []string{ReactionBump, ReactionDump}
		reply.Retrigger = &Retrigger{Scope: req.Scope, Name: name}
		return reply, nil
	}
}
