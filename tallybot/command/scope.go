package command

import (
	"github.com/disgoorg/snowflake/v2"
)

type ScopeKind int

const (
	ScopeChannel ScopeKind = iota
	ScopeServer
	ScopeUser
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeServer:
		return "server"
	case ScopeUser:
		return "user"
	default:
		return "channel"
	}
}

// Scope is the ownership partition a command targets. Channel and
// server tallies of the same name are distinct entities; lookups never
// fall back from one scope to another.
type Scope struct {
	Kind ScopeKind
	ID   snowflake.ID
}

// Context carries where a message came from.
type Context struct {
	ChannelID snowflake.ID
	GuildID   snowflake.ID
	UserID    snowflake.ID
	IsDM      bool
}

// ResolveScope picks the scope for a parsed command. DMs always target
// the user scope; the -g flag only matters inside a guild.
func ResolveScope(cmd *Command, mctx Context) Scope {
	if mctx.IsDM {
		return Scope{Kind: ScopeUser, ID: mctx.UserID}
	}
	if cmd.Global {
		return Scope{Kind: ScopeServer, ID: mctx.GuildID}
	}
	return Scope{Kind: ScopeChannel, ID: mctx.ChannelID}
}
