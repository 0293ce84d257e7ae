// Package format renders state-machine results into Discord embeds.
// One template per command outcome; failures share a single generic
// template whose reason string is derived from the error kind.
package format

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/disgoorg/disgo/discord"
	"github.com/tallybot/tallybot/tallybot/announce"
	"github.com/tallybot/tallybot/tallybot/command"
	"github.com/tallybot/tallybot/tallybot/database/models"
	"github.com/tallybot/tallybot/tallybot/tally"
	"github.com/tallybot/tallybot/tallybot/timer"
)

const (
	SuccessColor = 0x00FF00
	ErrorColor   = 0xFF0000
	InfoColor    = 0x0099FF
)

const descriptionPreviewBytes = 128

// ScopeIcon is the [G]/[C] marker shown on guild tally replies. DM
// replies carry no icon.
func ScopeIcon(scope command.Scope) string {
	switch scope.Kind {
	case command.ScopeServer:
		return "[G] "
	case command.ScopeChannel:
		return "[C] "
	default:
		return ""
	}
}

// Embed builds the base reply embed in the house style.
func Embed(requestedBy, title, description string, color int) discord.Embed {
	now := time.Now()
	return discord.Embed{
		Title:       title,
		Description: description,
		Color:       color,
		Footer: &discord.EmbedFooter{
			Text: fmt.Sprintf("Requested by %s", requestedBy),
		},
		Timestamp: &now,
	}
}

// Failure renders the generic failure template: the action that failed
// plus a short reason. Raw internal errors never reach the user.
func Failure(requestedBy, action string, err error) discord.Embed {
	return Embed(requestedBy, fmt.Sprintf("I could not %s.", action), Reason(err), ErrorColor)
}

// Reason maps an error to a short user-facing string.
func Reason(err error) string {
	var (
		tallyNotFound    *tally.NotFoundError
		tallyConflict    *tally.ConflictError
		tallyInvalid     *tally.InvalidArgumentError
		malformedArgs    *command.MalformedArgsError
		announceNotFound *announce.NotFoundError
		announcePattern  *announce.InvalidPatternError
		announceInvalid  *announce.InvalidArgumentError
		timerNotFound    *timer.NotFoundError
	)
	switch {
	case errors.As(err, &tallyNotFound):
		return capitalize(tallyNotFound.Error())
	case errors.As(err, &tallyConflict):
		return capitalize(tallyConflict.Error())
	case errors.As(err, &tallyInvalid):
		return capitalize(tallyInvalid.Error())
	case errors.As(err, &malformedArgs):
		return capitalize(malformedArgs.Error())
	case errors.As(err, &announceNotFound):
		return capitalize(announceNotFound.Error())
	case errors.As(err, &announcePattern):
		return capitalize(announcePattern.Error())
	case errors.As(err, &announceInvalid):
		return capitalize(announceInvalid.Error())
	case errors.As(err, &timerNotFound):
		return capitalize(timerNotFound.Error())
	default:
		return "Something went wrong, please try again later."
	}
}

// BumpReply renders `name | **prev** >>> **cur**` plus a truncated
// description, the bump/dump template.
func BumpReply(requestedBy string, isBump bool, scope command.Scope, res *tally.BumpResult) discord.Embed {
	arrow := ":small_red_triangle:"
	action := "bump"
	if !isBump {
		arrow = ":small_red_triangle_down:"
		action = "dump"
	}
	description := fmt.Sprintf("%s%s | **%d** >>> **%d**\n\n%s",
		ScopeIcon(scope), res.Tally.Name, res.Previous, res.Current,
		DescriptionPreview(res.Tally.Description))
	return Embed(requestedBy, fmt.Sprintf("%s %s", arrow, action), description, SuccessColor)
}

// TallyPage renders one show page sorted by count descending.
func TallyPage(requestedBy, prefix string, scope command.Scope, res *tally.ListResult) discord.Embed {
	var b strings.Builder
	for _, t := range res.Tallies {
		fmt.Fprintf(&b, "**%s** | %d | _%s_\n", t.Name, t.Count, DescriptionPreview24(t.Description))
	}
	if len(res.Tallies) == 0 {
		b.WriteString("No tallies yet.\n")
	}
	fmt.Fprintf(&b, "\n:notebook_with_decorative_cover: %d of %d", res.Page, res.TotalPages)
	if res.Page != res.TotalPages {
		fmt.Fprintf(&b, " - `%s show %d` for next.", prefix, res.Page+1)
	}
	fmt.Fprintf(&b, "\n`%s get [tally name]` for more info.", prefix)

	title := fmt.Sprintf(":abacus: show • %s%d total", ScopeIcon(scope), res.Total)
	return Embed(requestedBy, title, b.String(), SuccessColor)
}

// TallyDetails renders the details template with name, count,
// description, and creation date fields.
func TallyDetails(requestedBy string, scope command.Scope, t *models.Tally) discord.Embed {
	e := Embed(requestedBy, ":printer: details", "", SuccessColor)
	if scope.Kind != command.ScopeUser {
		e.Fields = append(e.Fields, discord.EmbedField{Name: "Type", Value: scopeKeyword(scope)})
	}
	e.Fields = append(e.Fields,
		discord.EmbedField{Name: "Name", Value: t.Name},
		discord.EmbedField{Name: "Count", Value: fmt.Sprintf("%d", t.Count)},
		discord.EmbedField{Name: "Description", Value: orNoDescription(t.Description)},
		discord.EmbedField{Name: "Created On", Value: t.CreatedAt.Format("2006-01-02")},
	)
	return e
}

// TimerStopped renders the elapsed time as hours/minutes/seconds.
func TimerStopped(requestedBy, prefix, name string, elapsed time.Duration) discord.Embed {
	description := fmt.Sprintf(":clock1: Timer **%s** stopped.\n\n**%s**\n\nStart again with `%s start %s`",
		name, ElapsedTime(elapsed), prefix, name)
	return Embed(requestedBy, ":clock1: stop", description, SuccessColor)
}

// TimerList renders every stopwatch in the channel with its state.
func TimerList(requestedBy string, entries []timer.ListEntry) discord.Embed {
	var b strings.Builder
	for _, e := range entries {
		state := "stopped at"
		if e.Running {
			state = "running for"
		}
		fmt.Fprintf(&b, "**%s** | %s **%s**\n", e.Name, state, ElapsedTime(e.Elapsed))
	}
	if len(entries) == 0 {
		b.WriteString("No timers yet.")
	}
	return Embed(requestedBy, ":clock1: timers", b.String(), SuccessColor)
}

// AnnouncementList renders every announcement in the channel with its
// goal and state.
func AnnouncementList(requestedBy string, announcements []*models.Announcement) discord.Embed {
	var b strings.Builder
	for _, a := range announcements {
		state := ""
		if !a.Active {
			state = " [disabled]"
		}
		fmt.Fprintf(&b, "**%s**%s | %s | _%s_\n", a.Name, state, goalSummary(a), DescriptionPreview24(a.Description))
	}
	if len(announcements) == 0 {
		b.WriteString("No announcements yet.")
	}
	return Embed(requestedBy, ":trumpet: announcements", b.String(), SuccessColor)
}

func goalSummary(a *models.Announcement) string {
	switch a.GoalType {
	case models.GoalTally:
		return fmt.Sprintf("fires when **%s** hits %d", a.GoalTallyName, a.GoalCount)
	case models.GoalDate:
		return fmt.Sprintf("fires on `%s`", a.DatePattern)
	default:
		return "no goal"
	}
}

// ElapsedTime renders a duration as hours/minutes/seconds.
func ElapsedTime(elapsed time.Duration) string {
	h := int(elapsed.Hours())
	m := int(elapsed.Minutes()) % 60
	s := int(elapsed.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

// Announcement renders the fixed firing template.
func Announcement(a *models.Announcement) discord.MessageCreate {
	description := orNoDescription(a.Description)
	return discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       fmt.Sprintf(":trumpet: %s", a.Name),
			Description: description,
			Color:       InfoColor,
		}},
	}
}

// DescriptionPreview truncates a description for inline display.
func DescriptionPreview(description string) string {
	return truncate(orNoDescription(description), descriptionPreviewBytes)
}

func DescriptionPreview24(description string) string {
	if description == "" {
		return "no description"
	}
	return truncate(description, 24)
}

func orNoDescription(description string) string {
	if description == "" {
		return "No description."
	}
	return description
}

// truncate cuts on a rune boundary so a multi-byte character is never
// split mid-sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func scopeKeyword(scope command.Scope) string {
	if scope.Kind == command.ScopeServer {
		return "Global"
	}
	return "Channel"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
