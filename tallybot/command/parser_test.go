package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    *Command
		wantErr error
	}{
		{
			name:    "no prefix",
			content: "hello there",
			wantErr: ErrMissingPrefix,
		},
		{
			name:    "prefix glued to command",
			content: "!tbbump wins",
			wantErr: ErrMissingPrefix,
		},
		{
			name:    "prefix only",
			content: "!tb",
			wantErr: ErrUnknownCommand,
		},
		{
			name:    "unknown command",
			content: "!tb frobnicate",
			wantErr: ErrUnknownCommand,
		},
		{
			name:    "bump with default amount",
			content: "!tb bump wins",
			want: &Command{
				Name: Bump,
				Args: map[string]string{"name": "wins"},
				Ints: map[string]int64{},
			},
		},
		{
			name:    "bump with amount",
			content: "!tb bump wins 3",
			want: &Command{
				Name: Bump,
				Args: map[string]string{"name": "wins"},
				Ints: map[string]int64{"amount": 3},
			},
		},
		{
			name:    "bump alias",
			content: "!tb t wins",
			want: &Command{
				Name: Bump,
				Args: map[string]string{"name": "wins"},
				Ints: map[string]int64{},
			},
		},
		{
			name:    "global flag",
			content: "!tb bump -g wins",
			want: &Command{
				Name:   Bump,
				Global: true,
				Args:   map[string]string{"name": "wins"},
				Ints:   map[string]int64{},
			},
		},
		{
			name:    "uppercase command name",
			content: "!tb BUMP wins",
			want: &Command{
				Name: Bump,
				Args: map[string]string{"name": "wins"},
				Ints: map[string]int64{},
			},
		},
		{
			name:    "create with multi word description",
			content: "!tb create wins times we won",
			want: &Command{
				Name: Create,
				Args: map[string]string{"name": "wins", "description": "times we won"},
				Ints: map[string]int64{},
			},
		},
		{
			name:    "set requires amount",
			content: "!tb set wins",
			wantErr: &MalformedArgsError{Reason: "amount is required"},
		},
		{
			name:    "set with non numeric amount",
			content: "!tb set wins lots",
			wantErr: &MalformedArgsError{Reason: `amount must be a number, got "lots"`},
		},
		{
			name:    "set with negative amount",
			content: "!tb set wins -5",
			want: &Command{
				Name: Set,
				Args: map[string]string{"name": "wins"},
				Ints: map[string]int64{"amount": -5},
			},
		},
		{
			name:    "show without page",
			content: "!tb show",
			want: &Command{
				Name: Show,
				Args: map[string]string{},
				Ints: map[string]int64{},
			},
		},
		{
			name:    "delete alias rm",
			content: "!tb rm wins",
			want: &Command{
				Name: Delete,
				Args: map[string]string{"name": "wins"},
				Ints: map[string]int64{},
			},
		},
		{
			name:    "help alias",
			content: "!tb h",
			want: &Command{
				Name: Help,
				Args: map[string]string{},
				Ints: map[string]int64{},
			},
		},
		{
			name:    "announcements listing",
			content: "!tb announcements",
			want: &Command{
				Name: Announcements,
				Args: map[string]string{},
				Ints: map[string]int64{},
			},
		},
		{
			name:    "timers listing",
			content: "!tb timers",
			want: &Command{
				Name: Timers,
				Args: map[string]string{},
				Ints: map[string]int64{},
			},
		},
		{
			name:    "permissions with no args",
			content: "!tb permissions",
			want: &Command{
				Name: Permissions,
				Args: map[string]string{},
				Ints: map[string]int64{},
			},
		},
		{
			name:    "permissions set binding",
			content: "!tb perms bump <@&123>",
			want: &Command{
				Name: Permissions,
				Args: map[string]string{"command": "bump", "role": "<@&123>"},
				Ints: map[string]int64{},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.content, "!tb")
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.EqualError(t, err, tt.wantErr.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAnnounce(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    *Command
		wantErr string
	}{
		{
			name:    "create with description",
			content: "!tb announce -create daily good morning everyone",
			want: &Command{
				Name: Announce,
				Sub:  SubCreate,
				Args: map[string]string{"name": "daily", "description": "good morning everyone"},
				Ints: map[string]int64{},
			},
		},
		{
			name:    "create short flag",
			content: "!tb announce -c daily",
			want: &Command{
				Name: Announce,
				Sub:  SubCreate,
				Args: map[string]string{"name": "daily", "description": ""},
				Ints: map[string]int64{},
			},
		},
		{
			name:    "delete",
			content: "!tb announce -d daily",
			want: &Command{
				Name: Announce,
				Sub:  SubDelete,
				Args: map[string]string{"name": "daily"},
				Ints: map[string]int64{},
			},
		},
		{
			name:    "tally goal",
			content: "!tb announce -goal daily -tally wins 100",
			want: &Command{
				Name:     Announce,
				Sub:      SubGoal,
				GoalType: GoalTally,
				Args:     map[string]string{"name": "daily", "tally": "wins"},
				Ints:     map[string]int64{"count": 100},
			},
		},
		{
			name:    "date goal with cron pattern",
			content: "!tb announce -g daily -date 0 9 * * *",
			want: &Command{
				Name:     Announce,
				Sub:      SubGoal,
				GoalType: GoalDate,
				Args:     map[string]string{"name": "daily", "pattern": "0 9 * * *"},
				Ints:     map[string]int64{},
			},
		},
		{
			name:    "short date flag inside goal",
			content: "!tb announce -goal daily -d 2026-01-01",
			want: &Command{
				Name:     Announce,
				Sub:      SubGoal,
				GoalType: GoalDate,
				Args:     map[string]string{"name": "daily", "pattern": "2026-01-01"},
				Ints:     map[string]int64{},
			},
		},
		{
			name:    "enable",
			content: "!tb announce -enable daily",
			want: &Command{
				Name: Announce,
				Sub:  SubEnable,
				Args: map[string]string{"name": "daily"},
				Ints: map[string]int64{},
			},
		},
		{
			name:    "missing subcommand",
			content: "!tb announce",
			wantErr: "a valid subcommand is required",
		},
		{
			name:    "unknown subcommand",
			content: "!tb announce -frob daily",
			wantErr: "unknown announce subcommand",
		},
		{
			name:    "missing name",
			content: "!tb announce -create",
			wantErr: "announcement name is required",
		},
		{
			name:    "goal without type",
			content: "!tb announce -goal daily",
			wantErr: "a goal type is required",
		},
		{
			name:    "tally goal without count",
			content: "!tb announce -goal daily -tally wins",
			wantErr: "goal count is required",
		},
		{
			name:    "tally goal with bad count",
			content: "!tb announce -goal daily -tally wins many",
			wantErr: "goal count must be a number",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.content, "!tb")
			if tt.wantErr != "" {
				var malformed *MalformedArgsError
				require.ErrorAs(t, err, &malformed)
				assert.Contains(t, malformed.Reason, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
