package commands

import (
	"context"
	"fmt"

	"github.com/tallybot/tallybot/tallybot"
	"github.com/tallybot/tallybot/tallybot/format"
)

// TestHandler answers with version info and the process-wide bump and
// dump totals, a cheap liveness check.
func TestHandler(b *tallybot.Bot) HandlerFunc {
	return func(_ context.Context, req *Request) (*Reply, error) {
		bumps, dumps := b.Tallies.Totals()
		body := fmt.Sprintf("I am alive.\n\n**version:** %s\n**bumps this session:** %d\n**dumps this session:** %d",
			b.Version, bumps, dumps)
		return embedReply(format.Embed(req.User, ":robot: test", body, format.SuccessColor)), nil
	}
}
