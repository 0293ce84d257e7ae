// Package command parses raw chat messages into commands and resolves
// which scope (channel, server, or user) a command targets.
package command

import (
	"errors"
	"fmt"
)

// Command names after alias resolution.
const (
	Bump          = "bump"
	Dump          = "dump"
	Create        = "create"
	Delete        = "delete"
	Set           = "set"
	Empty         = "empty"
	EmptyAll      = "empty-all"
	DeleteAll     = "delete-all"
	Show          = "show"
	Describe      = "describe"
	Details       = "details"
	Channel       = "channel"
	Global        = "global"
	Announce      = "announce"
	Announcements = "announcements"
	Start         = "start"
	Stop          = "stop"
	Timers        = "timers"
	Permissions   = "permissions"
	Test          = "test"
	Help          = "help"
)

// Announce subcommands.
const (
	SubCreate  = "create"
	SubDelete  = "delete"
	SubGoal    = "goal"
	SubEnable  = "enable"
	SubDisable = "disable"
)

// Goal types of the announce -goal subcommand.
const (
	GoalTally = "tally"
	GoalDate  = "date"
)

var (
	// ErrMissingPrefix means the message is ordinary chat, not a
	// command. The dispatcher ignores it silently.
	ErrMissingPrefix = errors.New("message does not start with the command prefix")
	// ErrUnknownCommand means the prefix matched but the command name
	// did not. Also ignored silently to avoid channel noise.
	ErrUnknownCommand = errors.New("unknown command")
)

// MalformedArgsError carries a short human reason suitable for a reply.
type MalformedArgsError struct {
	Reason string
}

func (e *MalformedArgsError) Error() string {
	return e.Reason
}

func malformed(format string, args ...any) error {
	return &MalformedArgsError{Reason: fmt.Sprintf(format, args...)}
}

// Command is a parsed chat command. Positional string args live in
// Args, integer args in Ints, both keyed by the grammar's arg names.
type Command struct {
	Name     string
	Sub      string // announce subcommand, empty otherwise
	GoalType string // announce -goal type, empty otherwise
	Global   bool   // -g flag present
	Args     map[string]string
	Ints     map[string]int64
}

// Arg returns the named string argument, or "" when absent.
func (c *Command) Arg(key string) string {
	return c.Args[key]
}

// Int returns the named integer argument, or def when absent.
func (c *Command) Int(key string, def int64) int64 {
	if v, ok := c.Ints[key]; ok {
		return v
	}
	return def
}

// HasInt reports whether the named integer argument was supplied.
func (c *Command) HasInt(key string) bool {
	_, ok := c.Ints[key]
	return ok
}
