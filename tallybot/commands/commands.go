// Package commands holds one handler per chat command. Handlers
// execute the state machine and render the success reply; errors
// bubble to the dispatcher, which renders the shared failure template.
package commands

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/tallybot/tallybot/tallybot"
	"github.com/tallybot/tallybot/tallybot/command"
)

// Request is everything a handler needs about one incoming command.
type Request struct {
	Cmd   *command.Command
	Ctx   command.Context
	Scope command.Scope
	User  string // author display name, for embed footers
}

// Retrigger marks a reply whose ▲/▼ reactions re-run bump/dump.
type Retrigger struct {
	Scope command.Scope
	Name  string
}

// Reply is the single outbound message for one command.
type Reply struct {
	Message   discord.MessageCreate
	Reactions []string
	Retrigger *Retrigger
}

func embedReply(e discord.Embed) *Reply {
	return &Reply{Message: discord.MessageCreate{Embeds: []discord.Embed{e}}}
}

type HandlerFunc func(ctx context.Context, req *Request) (*Reply, error)

// All wires every command handler against the bot's services.
func All(b *tallybot.Bot) map[string]HandlerFunc {
	return map[string]HandlerFunc{
		command.Bump:          BumpHandler(b),
		command.Dump:          DumpHandler(b),
		command.Create:        CreateHandler(b),
		command.Delete:        DeleteHandler(b),
		command.DeleteAll:     DeleteAllHandler(b),
		command.Set:           SetHandler(b),
		command.Empty:         EmptyHandler(b),
		command.EmptyAll:      EmptyAllHandler(b),
		command.Show:          ShowHandler(b),
		command.Describe:      DescribeHandler(b),
		command.Details:       DetailsHandler(b),
		command.Channel:       ChannelHandler(b),
		command.Global:        GlobalHandler(b),
		command.Announce:      AnnounceHandler(b),
		command.Announcements: AnnouncementsHandler(b),
		command.Start:         StartHandler(b),
		command.Stop:          StopHandler(b),
		command.Timers:        TimersHandler(b),
		command.Permissions:   PermissionsHandler(b),
		command.Test:          TestHandler(b),
		command.Help:          HelpHandler(b),
	}
}

// ActionLabel names the attempted action for the failure template.
func ActionLabel(cmd *command.Command) string {
	if cmd.Name == command.Announce {
		switch cmd.Sub {
		case command.SubCreate:
			return "create the announcement"
		case command.SubDelete:
			return "delete the announcement"
		case command.SubGoal:
			return "set the announcement goal"
		case command.SubEnable:
			return "enable the announcement"
		case command.SubDisable:
			return "disable the announcement"
		}
	}
	switch cmd.Name {
	case command.Announcements:
		return "list the announcements"
	case command.Timers:
		return "list the timers"
	}
	if name := cmd.Arg("name"); name != "" {
		return fmt.Sprintf("%s **%s**", cmd.Name, name)
	}
	return cmd.Name
}
