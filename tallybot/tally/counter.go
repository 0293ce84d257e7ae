package tally

import (
	"sync/atomic"
	"time"
)

const hookTimeout = 10 * time.Second

// Totals tracks process-wide bump and dump counts, shown by the test
// command. Not persisted; resets on restart.
type Totals struct {
	bumps atomic.Int64
	dumps atomic.Int64
}

func (t *Totals) AddBump() { t.bumps.Add(1) }
func (t *Totals) AddDump() { t.dumps.Add(1) }

func (t *Totals) Bumps() int64 { return t.bumps.Load() }
func (t *Totals) Dumps() int64 { return t.dumps.Load() }
