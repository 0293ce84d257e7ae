package command

import (
	"strconv"
	"strings"
)

type argKind int

const (
	kindString argKind = iota // one token
	kindInt                   // one token, must parse as an integer
	kindRest                  // remainder of the message, joined
)

type argSpec struct {
	key      string
	kind     argKind
	required bool
}

// grammar declares a command's token layout: whether a leading -g flag
// is accepted and the ordered positional args that follow. Adding a
// command means adding a table row, not index arithmetic.
type grammar struct {
	allowGlobal bool
	args        []argSpec
}

var grammars = map[string]grammar{
	Bump: {allowGlobal: true, args: []argSpec{
		{key: "name", kind: kindString, required: true},
		{key: "amount", kind: kindInt},
	}},
	Dump: {allowGlobal: true, args: []argSpec{
		{key: "name", kind: kindString, required: true},
		{key: "amount", kind: kindInt},
	}},
	Create: {allowGlobal: true, args: []argSpec{
		{key: "name", kind: kindString, required: true},
		{key: "description", kind: kindRest},
	}},
	Delete: {allowGlobal: true, args: []argSpec{
		{key: "name", kind: kindString, required: true},
	}},
	Set: {allowGlobal: true, args: []argSpec{
		{key: "name", kind: kindString, required: true},
		{key: "amount", kind: kindInt, required: true},
	}},
	Empty: {allowGlobal: true, args: []argSpec{
		{key: "name", kind: kindString, required: true},
	}},
	EmptyAll:  {allowGlobal: true},
	DeleteAll: {allowGlobal: true},
	Show: {allowGlobal: true, args: []argSpec{
		{key: "page", kind: kindInt},
	}},
	Describe: {allowGlobal: true, args: []argSpec{
		{key: "name", kind: kindString, required: true},
		{key: "description", kind: kindRest, required: true},
	}},
	Details: {allowGlobal: true, args: []argSpec{
		{key: "name", kind: kindString, required: true},
	}},
	Channel: {args: []argSpec{
		{key: "name", kind: kindString, required: true},
	}},
	Global: {args: []argSpec{
		{key: "name", kind: kindString, required: true},
	}},
	Announcements: {},
	Start: {args: []argSpec{
		{key: "name", kind: kindString, required: true},
	}},
	Stop: {args: []argSpec{
		{key: "name", kind: kindString, required: true},
	}},
	Timers: {},
	Permissions: {args: []argSpec{
		{key: "command", kind: kindString},
		{key: "role", kind: kindString},
	}},
	Test: {},
	Help: {},
}

var aliases = map[string]string{
	"t":      Bump,
	"add":    Create,
	"rm":     Delete,
	"rmall":  DeleteAll,
	"get":    Details,
	"perms":  Permissions,
	"remove": Delete,
	"h":      Help,
}

// Parse tokenizes a raw message into a Command. The prefix is its own
// token ("!tb bump wins 2"), matching the original wire format.
func Parse(content, prefix string) (*Command, error) {
	fields := strings.Fields(content)
	if len(fields) == 0 || fields[0] != prefix {
		return nil, ErrMissingPrefix
	}
	if len(fields) < 2 {
		return nil, ErrUnknownCommand
	}

	name := strings.ToLower(fields[1])
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	if name == Announce {
		return parseAnnounce(fields[2:])
	}

	g, ok := grammars[name]
	if !ok {
		return nil, ErrUnknownCommand
	}

	cmd := &Command{
		Name: name,
		Args: map[string]string{},
		Ints: map[string]int64{},
	}

	tokens := fields[2:]
	if g.allowGlobal && len(tokens) > 0 && tokens[0] == "-g" {
		cmd.Global = true
		tokens = tokens[1:]
	}

	if err := bindArgs(cmd, g.args, tokens); err != nil {
		return nil, err
	}
	return cmd, nil
}

func bindArgs(cmd *Command, specs []argSpec, tokens []string) error {
	for _, spec := range specs {
		if len(tokens) == 0 {
			if spec.required {
				return malformed("%s is required", spec.key)
			}
			continue
		}
		switch spec.kind {
		case kindString:
			cmd.Args[spec.key] = tokens[0]
			tokens = tokens[1:]
		case kindInt:
			n, err := strconv.ParseInt(tokens[0], 10, 64)
			if err != nil {
				return malformed("%s must be a number, got %q", spec.key, tokens[0])
			}
			cmd.Ints[spec.key] = n
			tokens = tokens[1:]
		case kindRest:
			cmd.Args[spec.key] = strings.Join(tokens, " ")
			tokens = nil
		}
	}
	return nil
}

var announceSubs = map[string]string{
	"-create":  SubCreate,
	"-c":       SubCreate,
	"-delete":  SubDelete,
	"-d":       SubDelete,
	"-goal":    SubGoal,
	"-g":       SubGoal,
	"-enable":  SubEnable,
	"-disable": SubDisable,
}

var goalTypes = map[string]string{
	"-tally": GoalTally,
	"-t":     GoalTally,
	"-date":  GoalDate,
	"-d":     GoalDate,
}

// parseAnnounce handles the compound announce grammar:
//
//	announce -create <name> [description...]
//	announce -delete <name>
//	announce -goal <name> -tally <tallyName> <count>
//	announce -goal <name> -date <pattern...>
//	announce -enable|-disable <name>
func parseAnnounce(tokens []string) (*Command, error) {
	if len(tokens) == 0 {
		return nil, malformed("a valid subcommand is required: -create, -delete, -goal, -enable, -disable")
	}
	sub, ok := announceSubs[strings.ToLower(tokens[0])]
	if !ok {
		return nil, malformed("unknown announce subcommand %q: valid subcommands are -create, -delete, -goal, -enable, -disable", tokens[0])
	}

	cmd := &Command{
		Name: Announce,
		Sub:  sub,
		Args: map[string]string{},
		Ints: map[string]int64{},
	}
	tokens = tokens[1:]

	if len(tokens) == 0 {
		return nil, malformed("announcement name is required")
	}
	cmd.Args["name"] = tokens[0]
	tokens = tokens[1:]

	switch sub {
	case SubCreate:
		cmd.Args["description"] = strings.Join(tokens, " ")
	case SubDelete, SubEnable, SubDisable:
		// name only
	case SubGoal:
		if len(tokens) == 0 {
			return nil, malformed("a goal type is required: -tally or -date")
		}
		goalType, ok := goalTypes[strings.ToLower(tokens[0])]
		if !ok {
			return nil, malformed("unknown goal type %q: valid types are -tally and -date", tokens[0])
		}
		cmd.GoalType = goalType
		tokens = tokens[1:]
		switch goalType {
		case GoalTally:
			if len(tokens) < 1 {
				return nil, malformed("tally name is required")
			}
			cmd.Args["tally"] = tokens[0]
			if len(tokens) < 2 {
				return nil, malformed("goal count is required")
			}
			n, err := strconv.ParseInt(tokens[1], 10, 64)
			if err != nil {
				return nil, malformed("goal count must be a number, got %q", tokens[1])
			}
			cmd.Ints["count"] = n
		case GoalDate:
			if len(tokens) == 0 {
				return nil, malformed("a date or cron pattern is required")
			}
			cmd.Args["pattern"] = strings.Join(tokens, " ")
		}
	}
	return cmd, nil
}
