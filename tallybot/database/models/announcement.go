package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Goal types for an announcement. An announcement carries at most one
// goal at a time; setting a new goal replaces the previous one.
const (
	GoalNone  = ""
	GoalTally = "tally"
	GoalDate  = "date"
)

type Announcement struct {
	bun.BaseModel `bun:"table:announcements,alias:a"`

	ID          int64  `bun:"id,pk,autoincrement"`
	ChannelID   string `bun:"channel_id,notnull"`
	Name        string `bun:"name,notnull"`
	Description string `bun:"description,type:varchar(255)"`
	Active      bool   `bun:"active,notnull,default:true"`

	GoalType      string `bun:"goal_type"`
	GoalTallyName string `bun:"goal_tally_name"`
	GoalCount     int64  `bun:"goal_count"`
	DatePattern   string `bun:"date_pattern"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// HasGoal reports whether a goal is configured.
func (a *Announcement) HasGoal() bool {
	return a.GoalType != GoalNone
}
