package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Permission binds a command to a role within one server. Commands
// without a binding may be run by anyone.
type Permission struct {
	bun.BaseModel `bun:"table:permissions,alias:p"`

	ID        int64     `bun:"id,pk,autoincrement"`
	ServerID  string    `bun:"server_id,notnull"`
	Command   string    `bun:"command,notnull"`
	RoleID    string    `bun:"role_id,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
