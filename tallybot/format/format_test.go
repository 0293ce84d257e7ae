package format

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybot/tallybot/tallybot/command"
	"github.com/tallybot/tallybot/tallybot/database/models"
	"github.com/tallybot/tallybot/tallybot/tally"
	"github.com/tallybot/tallybot/tallybot/timer"
)

var (
	channelScope = command.Scope{Kind: command.ScopeChannel, ID: snowflake.ID(100)}
	serverScope  = command.Scope{Kind: command.ScopeServer, ID: snowflake.ID(200)}
	userScope    = command.Scope{Kind: command.ScopeUser, ID: snowflake.ID(300)}
)

func TestScopeIcon(t *testing.T) {
	assert.Equal(t, "[C] ", ScopeIcon(channelScope))
	assert.Equal(t, "[G] ", ScopeIcon(serverScope))
	assert.Equal(t, "", ScopeIcon(userScope))
}

func TestEmbed(t *testing.T) {
	e := Embed("ryan", "title", "description", SuccessColor)
	assert.Equal(t, "title", e.Title)
	assert.Equal(t, "description", e.Description)
	assert.Equal(t, SuccessColor, e.Color)
	require.NotNil(t, e.Footer)
	assert.Equal(t, "Requested by ryan", e.Footer.Text)
	require.NotNil(t, e.Timestamp)
}

func TestFailure(t *testing.T) {
	e := Failure("ryan", "bump that tally", &tally.NotFoundError{Name: "wins"})
	assert.Equal(t, "I could not bump that tally.", e.Title)
	assert.Contains(t, e.Description, "wins")
	assert.Equal(t, ErrorColor, e.Color)
}

func TestReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "tally not found",
			err:  &tally.NotFoundError{Name: "wins"},
			want: "Could not find tally named wins",
		},
		{
			name: "tally conflict",
			err:  &tally.ConflictError{Name: "wins"},
			want: "A tally named wins already exists in that scope",
		},
		{
			name: "malformed args",
			err:  &command.MalformedArgsError{Reason: "amount is required"},
			want: "Amount is required",
		},
		{
			name: "timer not found",
			err:  &timer.NotFoundError{Name: "standup"},
			want: "No timer named standup has been started here",
		},
		{
			name: "internal error is masked",
			err:  errors.New("pq: connection refused"),
			want: "Something went wrong, please try again later.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, Reason(tt.err), strings.TrimSuffix(tt.want, "."))
		})
	}
}

func TestBumpReply(t *testing.T) {
	res := &tally.BumpResult{
		Tally:    &models.Tally{Name: "wins", Count: 3, Description: "times we won"},
		Previous: 2,
		Current:  3,
	}

	e := BumpReply("ryan", true, channelScope, res)
	assert.Equal(t, ":small_red_triangle: bump", e.Title)
	assert.Contains(t, e.Description, "[C] wins | **2** >>> **3**")
	assert.Contains(t, e.Description, "times we won")

	e = BumpReply("ryan", false, serverScope, res)
	assert.Equal(t, ":small_red_triangle_down: dump", e.Title)
	assert.Contains(t, e.Description, "[G] wins")
}

func TestTallyPage(t *testing.T) {
	res := &tally.ListResult{
		Tallies: []*models.Tally{
			{Name: "wins", Count: 9},
			{Name: "losses", Count: 1, Description: "sad"},
		},
		Page:       1,
		TotalPages: 2,
		Total:      30,
	}

	e := TallyPage("ryan", "!tb", channelScope, res)
	assert.Contains(t, e.Title, "30 total")
	assert.Contains(t, e.Description, "**wins** | 9")
	assert.Contains(t, e.Description, "**losses** | 1 | _sad_")
	assert.Contains(t, e.Description, "1 of 2")
	assert.Contains(t, e.Description, "`!tb show 2` for next.")
}

func TestTallyPageLastPageHasNoNextHint(t *testing.T) {
	res := &tally.ListResult{Page: 1, TotalPages: 1, Total: 0}

	e := TallyPage("ryan", "!tb", channelScope, res)
	assert.Contains(t, e.Description, "No tallies yet.")
	assert.NotContains(t, e.Description, "for next.")
}

func TestTallyDetails(t *testing.T) {
	created := time.Date(2026, 2, 14, 8, 0, 0, 0, time.UTC)
	tl := &models.Tally{Name: "wins", Count: 7, CreatedAt: created}

	e := TallyDetails("ryan", serverScope, tl)
	require.Len(t, e.Fields, 5)
	assert.Equal(t, "Type", e.Fields[0].Name)
	assert.Equal(t, "Global", e.Fields[0].Value)
	assert.Equal(t, "wins", e.Fields[1].Value)
	assert.Equal(t, "7", e.Fields[2].Value)
	assert.Equal(t, "No description.", e.Fields[3].Value)
	assert.Equal(t, "2026-02-14", e.Fields[4].Value)

	// DM details drop the scope field.
	e = TallyDetails("ryan", userScope, tl)
	assert.Len(t, e.Fields, 4)
	assert.Equal(t, "Name", e.Fields[0].Name)
}

func TestTimerStopped(t *testing.T) {
	e := TimerStopped("ryan", "!tb", "standup", 90*time.Minute+5*time.Second)
	assert.Contains(t, e.Description, "**1h 30m 5s**")
	assert.Contains(t, e.Description, "`!tb start standup`")
}

func TestTimerList(t *testing.T) {
	e := TimerList("ryan", []timer.ListEntry{
		{Name: "lunch", Running: false, Elapsed: 10 * time.Minute},
		{Name: "standup", Running: true, Elapsed: 25 * time.Minute},
	})
	assert.Equal(t, ":clock1: timers", e.Title)
	assert.Contains(t, e.Description, "**lunch** | stopped at **0h 10m 0s**")
	assert.Contains(t, e.Description, "**standup** | running for **0h 25m 0s**")

	e = TimerList("ryan", nil)
	assert.Equal(t, "No timers yet.", e.Description)
}

func TestAnnouncementList(t *testing.T) {
	e := AnnouncementList("ryan", []*models.Announcement{
		{Name: "century", Active: true, GoalType: models.GoalTally, GoalTallyName: "wins", GoalCount: 100, Description: "we hit 100!"},
		{Name: "daily", Active: false, GoalType: models.GoalDate, DatePattern: "0 9 * * *"},
		{Name: "fresh", Active: true},
	})
	assert.Equal(t, ":trumpet: announcements", e.Title)
	assert.Contains(t, e.Description, "**century** | fires when **wins** hits 100 | _we hit 100!_")
	assert.Contains(t, e.Description, "**daily** [disabled] | fires on `0 9 * * *`")
	assert.Contains(t, e.Description, "**fresh** | no goal")

	e = AnnouncementList("ryan", nil)
	assert.Equal(t, "No announcements yet.", e.Description)
}

func TestAnnouncement(t *testing.T) {
	msg := Announcement(&models.Announcement{Name: "daily", Description: "good morning"})
	require.Len(t, msg.Embeds, 1)
	assert.Equal(t, ":trumpet: daily", msg.Embeds[0].Title)
	assert.Equal(t, "good morning", msg.Embeds[0].Description)

	msg = Announcement(&models.Announcement{Name: "daily"})
	assert.Equal(t, "No description.", msg.Embeds[0].Description)
}

func TestDescriptionPreview(t *testing.T) {
	long := strings.Repeat("a", 200)
	assert.Len(t, DescriptionPreview(long), descriptionPreviewBytes+3)
	assert.True(t, strings.HasSuffix(DescriptionPreview(long), "..."))
	assert.Equal(t, "No description.", DescriptionPreview(""))
	assert.Equal(t, "short", DescriptionPreview("short"))
}

func TestDescriptionPreviewKeepsRunesWhole(t *testing.T) {
	// The leading ascii byte misaligns the three-byte runes so the
	// byte limit lands mid-rune.
	long := "a" + strings.Repeat("€", 50)

	got := DescriptionPreview(long)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "a"+strings.Repeat("€", 42)+"...", got)

	got = DescriptionPreview24("a" + strings.Repeat("€", 10))
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "a"+strings.Repeat("€", 7)+"...", got)
}
