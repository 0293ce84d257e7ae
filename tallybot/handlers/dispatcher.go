// Package handlers contains the dispatcher: the single entry point
// that turns an incoming message into exactly one reply or a
// deliberate silent ignore.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
	lru "github.com/hashicorp/golang-lru"
	"github.com/tallybot/tallybot/tallybot"
	"github.com/tallybot/tallybot/tallybot/command"
	"github.com/tallybot/tallybot/tallybot/commands"
	"github.com/tallybot/tallybot/tallybot/format"
)

const (
	commandTimeout = 10 * time.Second
	slowThreshold  = 2 * time.Second

	// retriggerCacheSize bounds how many recent bump/dump replies keep
	// their reaction quick-trigger alive.
	retriggerCacheSize = 2048
)

type retriggerEntry struct {
	scope command.Scope
	name  string
}

type Dispatcher struct {
	bot        *tallybot.Bot
	handlers   map[string]commands.HandlerFunc
	retriggers *lru.Cache // reply message id -> retriggerEntry
}

func NewDispatcher(b *tallybot.Bot) *Dispatcher {
	cache, _ := lru.New(retriggerCacheSize)
	return &Dispatcher{
		bot:        b,
		handlers:   commands.All(b),
		retriggers: cache,
	}
}

var _ bot.EventListener = (*Dispatcher)(nil)

func (d *Dispatcher) OnEvent(event bot.Event) {
	switch e := event.(type) {
	case *events.MessageCreate:
		d.onMessage(e)
	case *events.MessageReactionAdd:
		d.onReaction(e)
	}
}

func (d *Dispatcher) onMessage(e *events.MessageCreate) {
	if e.Message.Author.Bot {
		return
	}

	cmd, err := command.Parse(e.Message.Content, d.bot.Cfg.Bot.Prefix)
	if err != nil {
		switch {
		case errors.Is(err, command.ErrMissingPrefix):
			// ordinary chat
		case errors.Is(err, command.ErrUnknownCommand):
			slog.Debug("Ignoring unknown command",
				slog.String("type", "cmd"),
				slog.String("content", e.Message.Content))
		default:
			d.send(e.ChannelID, &commands.Reply{Message: failureMessage(e.Message.Author.Username, "understand that", err)})
		}
		return
	}

	mctx := command.Context{
		ChannelID: e.ChannelID,
		UserID:    e.Message.Author.ID,
		IsDM:      e.GuildID == nil,
	}
	if e.GuildID != nil {
		mctx.GuildID = *e.GuildID
	}

	req := &commands.Request{
		Cmd:   cmd,
		Ctx:   mctx,
		Scope: command.ResolveScope(cmd, mctx),
		User:  e.Message.Author.Username,
	}

	if !mctx.IsDM && !d.permitted(e, cmd, mctx) {
		return
	}

	reply := d.execute(cmd, req)
	d.deliver(e.ChannelID, reply)
}

// permitted checks the server's command->role bindings. Denials and
// lookup failures both produce a reply, so this returning false still
// honors the one-reply guarantee.
func (d *Dispatcher) permitted(e *events.MessageCreate, cmd *command.Command, mctx command.Context) bool {
	var roleIDs []snowflake.ID
	if e.Message.Member != nil {
		roleIDs = e.Message.Member.RoleIDs
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	allowed, err := d.bot.Permissions.Allowed(ctx, mctx.GuildID, cmd.Name, roleIDs)
	if err != nil {
		slog.Error("Permission lookup failed",
			slog.String("type", "db"),
			slog.String("name", cmd.Name),
			slog.Any("error", err))
		d.send(e.ChannelID, &commands.Reply{Message: failureMessage(e.Message.Author.Username, commands.ActionLabel(cmd), err)})
		return false
	}
	if !allowed {
		body := fmt.Sprintf("You don't have the role required to run **%s** here.", cmd.Name)
		d.send(e.ChannelID, &commands.Reply{
			Message: embedMessage(format.Embed(e.Message.Author.Username, ":no_entry: permission denied", body, format.ErrorColor)),
		})
		return false
	}
	return true
}

// execute runs one command handler with a timeout and panic recovery,
// always yielding a reply.
func (d *Dispatcher) execute(cmd *command.Command, req *commands.Request) (reply *commands.Reply) {
	handler, ok := d.handlers[cmd.Name]
	if !ok {
		slog.Debug("Ignoring unregistered command",
			slog.String("type", "cmd"),
			slog.String("name", cmd.Name))
		return nil
	}

	start := time.Now()
	slog.Info("Command started",
		slog.String("type", "cmd"),
		slog.String("name", cmd.Name),
		slog.String("user_id", req.Ctx.UserID.String()),
		slog.String("user_name", req.User),
		slog.String("scope", req.Scope.Kind.String()))

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Command panicked",
				slog.String("type", "cmd"),
				slog.String("name", cmd.Name),
				slog.Any("panic", r))
			reply = &commands.Reply{Message: failureMessage(req.User, commands.ActionLabel(cmd), errInternal)}
		}

		duration := time.Since(start)
		if duration > slowThreshold {
			slog.Warn("Command executed slowly",
				slog.String("type", "cmd"),
				slog.String("name", cmd.Name),
				slog.Duration("took", duration))
		} else {
			slog.Info("Command completed",
				slog.String("type", "cmd"),
				slog.String("name", cmd.Name),
				slog.String("user_name", req.User),
				slog.Duration("took", duration))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	result, err := handler(ctx, req)
	if err != nil {
		slog.Error("Command failed",
			slog.String("type", "cmd"),
			slog.String("name", cmd.Name),
			slog.String("user_id", req.Ctx.UserID.String()),
			slog.String("scope", req.Scope.Kind.String()),
			slog.Any("error", err))
		return &commands.Reply{Message: failureMessage(req.User, commands.ActionLabel(cmd), err)}
	}
	return result
}

// deliver sends the reply, attaches reactions, and records retrigger
// state. A nil reply is a deliberate silent ignore.
func (d *Dispatcher) deliver(channelID snowflake.ID, reply *commands.Reply) {
	if reply == nil {
		return
	}
	sent := d.send(channelID, reply)
	if sent == nil {
		return
	}
	if reply.Retrigger != nil {
		d.retriggers.Add(sent.ID, retriggerEntry{
			scope: reply.Retrigger.Scope,
			name:  reply.Retrigger.Name,
		})
	}
}

func (d *Dispatcher) send(channelID snowflake.ID, reply *commands.Reply) *sentMessage {
	msg, err := d.bot.Client.Rest().CreateMessage(channelID, reply.Message)
	if err != nil {
		slog.Error("Failed to send reply",
			slog.String("type", "sys"),
			slog.String("channel_id", channelID.String()),
			slog.Any("error", err))
		return nil
	}
	for _, emoji := range reply.Reactions {
		if err := d.bot.Client.Rest().AddReaction(channelID, msg.ID, emoji); err != nil {
			slog.Error("Failed to add reaction", slog.Any("error", err))
			break
		}
	}
	return &sentMessage{ID: msg.ID}
}

type sentMessage struct {
	ID snowflake.ID
}

// onReaction re-runs bump or dump when someone clicks the ▲/▼
// reactions on a recent bump/dump reply.
func (d *Dispatcher) onReaction(e *events.MessageReactionAdd) {
	if e.UserID == e.Client().ApplicationID() {
		return
	}
	if e.Emoji.Name == nil {
		return
	}
	var isBump bool
	switch *e.Emoji.Name {
	case commands.ReactionBump:
		isBump = true
	case commands.ReactionDump:
		isBump = false
	default:
		return
	}

	cached, ok := d.retriggers.Get(e.MessageID)
	if !ok {
		return
	}
	entry := cached.(retriggerEntry)

	username := "someone"
	userID := e.UserID
	if e.Member != nil {
		username = e.Member.User.Username
	}

	cmdName := command.Bump
	if !isBump {
		cmdName = command.Dump
	}
	cmd := &command.Command{
		Name: cmdName,
		Args: map[string]string{"name": entry.name},
		Ints: map[string]int64{},
	}
	mctx := command.Context{
		ChannelID: e.ChannelID,
		UserID:    userID,
		IsDM:      e.GuildID == nil,
	}
	if e.GuildID != nil {
		mctx.GuildID = *e.GuildID
	}
	req := &commands.Request{
		Cmd: cmd,
		Ctx: mctx,
		// keep the original reply's scope: a [G] tally retriggers as [G]
		Scope: entry.scope,
		User:  username,
	}

	reply := d.execute(cmd, req)
	d.deliver(e.ChannelID, reply)
}

var errInternal = errors.New("internal error")
