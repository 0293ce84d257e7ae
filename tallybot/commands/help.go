package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/tallybot/tallybot/tallybot"
	"github.com/tallybot/tallybot/tallybot/format"
)

// helpEntries is the command reference shown by help, in display order.
var helpEntries = []struct {
	usage string
	blurb string
}{
	{"bump [name] (amount)", "increase a tally by amount, default 1 (alias: t)"},
	{"dump [name] (amount)", "decrease a tally by amount, default 1"},
	{"create [name] (description)", "create a tally (alias: add)"},
	{"delete [name]", "delete a tally (aliases: rm, remove)"},
	{"delete-all", "delete every tally in this scope (alias: rmall)"},
	{"set [name] [amount]", "set a tally to an exact count"},
	{"empty [name]", "reset a tally's count to 0"},
	{"empty-all", "reset every tally in this scope to 0"},
	{"show (page)", "list tallies, 25 per page"},
	{"details [name]", "show a tally's full record (alias: get)"},
	{"describe [name] [description]", "set a tally's description"},
	{"global [name]", "promote a channel tally to the whole server"},
	{"channel [name]", "pull a server tally into this channel"},
	{"announce -create [name] (description)", "create an announcement"},
	{"announce -goal [name] -tally [tally] [count]", "fire when a tally hits count"},
	{"announce -goal [name] -date [date or cron]", "fire at a date or on a schedule"},
	{"announce -enable|-disable|-delete [name]", "manage an announcement"},
	{"announcements", "list this channel's announcements"},
	{"start [name]", "start a stopwatch"},
	{"stop [name]", "stop a stopwatch and show elapsed time"},
	{"timers", "list this channel's stopwatches"},
	{"permissions (command) (role)", "show or set role restrictions (alias: perms)"},
	{"test", "check that I am alive"},
}

func HelpHandler(b *tallybot.Bot) HandlerFunc {
	return func(_ context.Context, req *Request) (*Reply, error) {
		prefix := b.Cfg.Bot.Prefix
		var body strings.Builder
		body.WriteString("Add `-g` after a command name to target server-wide tallies. In DMs every tally is yours alone.\n\n")
		for _, entry := range helpEntries {
			fmt.Fprintf(&body, "`%s %s` - %s\n", prefix, entry.usage, entry.blurb)
		}
		return embedReply(format.Embed(req.User, ":question: help", body.String(), format.InfoColor)), nil
	}
}
