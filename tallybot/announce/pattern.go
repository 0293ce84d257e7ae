package announce

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Accepted absolute date layouts. A pattern that matches none of these
// must parse as a standard 5-field cron expression.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parsePattern classifies a goal pattern. Exactly one of the returns
// is set: a non-zero time for an absolute date, a schedule for a cron
// expression.
func parsePattern(pattern string) (time.Time, cron.Schedule, error) {
	for _, layout := range dateLayouts {
		if at, err := time.ParseInLocation(layout, pattern, time.Local); err == nil {
			return at, nil, nil
		}
	}
	schedule, err := cron.ParseStandard(pattern)
	if err != nil {
		return time.Time{}, nil, &InvalidPatternError{Pattern: pattern}
	}
	return time.Time{}, schedule, nil
}

// InvalidPatternError means the pattern is neither a parseable date
// nor a valid cron expression.
type InvalidPatternError struct {
	Pattern string
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid date pattern %q: use a date for one-shot goals or a cron expression for repeating ones", e.Pattern)
}

// NotFoundError is returned when no announcement with the given name
// exists in the channel.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no announcement found with name %s", e.Name)
}

// InvalidArgumentError carries a short human reason.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return e.Reason
}

func invalidArg(format string, args ...any) error {
	return &InvalidArgumentError{Reason: fmt.Sprintf(format, args...)}
}
