package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Scope values for a tally. A channel tally is visible in one channel,
// a server tally in every channel of a guild, a user tally in that
// user's DMs. Within one (scope, scope_id) pair names are unique.
const (
	ScopeChannel = "channel"
	ScopeServer  = "server"
	ScopeUser    = "user"
)

// MaxDescriptionBytes is the persisted limit of the description column.
const MaxDescriptionBytes = 255

type Tally struct {
	bun.BaseModel `bun:"table:tallies,alias:t"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Scope       string    `bun:"scope,notnull"`
	ScopeID     string    `bun:"scope_id,notnull"`
	Name        string    `bun:"name,notnull"`
	Count       int64     `bun:"count,notnull,default:0"`
	Description string    `bun:"description,type:varchar(255)"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}
