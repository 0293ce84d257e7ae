package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Timer is a named stopwatch bound to one channel. StopTime is only
// meaningful once StartTime is set.
type Timer struct {
	bun.BaseModel `bun:"table:timers,alias:tm"`

	ID        int64      `bun:"id,pk,autoincrement"`
	ChannelID string     `bun:"channel_id,notnull"`
	Name      string     `bun:"name,notnull"`
	StartTime *time.Time `bun:"start_time"`
	StopTime  *time.Time `bun:"stop_time"`
}

// Running reports whether the timer has been started and not stopped.
func (t *Timer) Running() bool {
	return t.StartTime != nil && t.StopTime == nil
}
