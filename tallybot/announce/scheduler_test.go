package announce

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybot/tallybot/tallybot/database/models"
	"github.com/tallybot/tallybot/tallybot/database/repositories"
)

var testChannel = snowflake.ID(100)

type memAnnouncementRepository struct {
	mu   sync.Mutex
	rows map[registryKey]*models.Announcement
}

func newMemAnnouncementRepository() *memAnnouncementRepository {
	return &memAnnouncementRepository{rows: map[registryKey]*models.Announcement{}}
}

func (r *memAnnouncementRepository) Upsert(_ context.Context, a *models.Announcement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := registryKey{ChannelID: a.ChannelID, Name: a.Name}
	if existing, ok := r.rows[k]; ok {
		existing.Description = a.Description
		return nil
	}
	cp := *a
	r.rows[k] = &cp
	return nil
}

func (r *memAnnouncementRepository) Get(_ context.Context, channelID, name string) (*models.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[registryKey{ChannelID: channelID, Name: name}]
	if !ok {
		return nil, repositories.ErrNoRows
	}
	cp := *row
	return &cp, nil
}

func (r *memAnnouncementRepository) Delete(_ context.Context, channelID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := registryKey{ChannelID: channelID, Name: name}
	if _, ok := r.rows[k]; !ok {
		return repositories.ErrNoRows
	}
	delete(r.rows, k)
	return nil
}

func (r *memAnnouncementRepository) SetTallyGoal(_ context.Context, channelID, name, tallyName string, count int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[registryKey{ChannelID: channelID, Name: name}]
	if !ok {
		return repositories.ErrNoRows
	}
	row.GoalType = models.GoalTally
	row.GoalTallyName = tallyName
	row.GoalCount = count
	row.DatePattern = ""
	return nil
}

func (r *memAnnouncementRepository) SetDateGoal(_ context.Context, channelID, name, pattern string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[registryKey{ChannelID: channelID, Name: name}]
	if !ok {
		return repositories.ErrNoRows
	}
	row.GoalType = models.GoalDate
	row.GoalTallyName = ""
	row.GoalCount = 0
	row.DatePattern = pattern
	return nil
}

func (r *memAnnouncementRepository) SetActive(_ context.Context, channelID, name string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[registryKey{ChannelID: channelID, Name: name}]
	if !ok {
		return repositories.ErrNoRows
	}
	row.Active = active
	return nil
}

func (r *memAnnouncementRepository) Deactivate(_ context.Context, channelID, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[registryKey{ChannelID: channelID, Name: name}]
	if !ok || !row.Active {
		return false, nil
	}
	row.Active = false
	return true, nil
}

func (r *memAnnouncementRepository) ActiveTallyGoals(_ context.Context, channelID, tallyName string) ([]*models.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Announcement
	for _, row := range r.rows {
		if row.ChannelID == channelID && row.Active && row.GoalType == models.GoalTally && row.GoalTallyName == tallyName {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memAnnouncementRepository) ActiveDateGoals(_ context.Context) ([]*models.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Announcement
	for _, row := range r.rows {
		if row.Active && row.GoalType == models.GoalDate {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memAnnouncementRepository) ListByChannel(_ context.Context, channelID string) ([]*models.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Announcement
	for _, row := range r.rows {
		if row.ChannelID == channelID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

type recordingSender struct {
	mu    sync.Mutex
	fired []*models.Announcement
}

func (s *recordingSender) SendAnnouncement(_ snowflake.ID, a *models.Announcement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.fired = append(s.fired, &cp)
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fired)
}

func newTestScheduler(t *testing.T) (*Scheduler, *memAnnouncementRepository, *recordingSender) {
	t.Helper()
	repo := newMemAnnouncementRepository()
	sender := &recordingSender{}
	s := NewScheduler(repo, sender)
	t.Cleanup(s.Stop)
	return s, repo, sender
}

func (s *Scheduler) entryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func TestSchedulerCreate(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	ctx := context.Background()

	a, err := s.Create(ctx, testChannel, "daily", "good morning")
	require.NoError(t, err)
	assert.True(t, a.Active)
	assert.Equal(t, "good morning", a.Description)
	assert.False(t, a.HasGoal())

	// Creating the same name again refreshes the description only.
	require.NoError(t, s.SetTallyGoal(ctx, testChannel, "daily", "wins", 10))
	a, err = s.Create(ctx, testChannel, "daily", "updated")
	require.NoError(t, err)
	assert.Equal(t, "updated", a.Description)
	assert.Equal(t, models.GoalTally, a.GoalType)
}

func TestSchedulerCreateDescriptionTooLong(t *testing.T) {
	s, _, _ := newTestScheduler(t)

	_, err := s.Create(context.Background(), testChannel, "daily", strings.Repeat("x", models.MaxDescriptionBytes+1))
	var invalid *InvalidArgumentError
	require.ErrorAs(t, err, &invalid)
}

func TestSchedulerGoalOnMissingAnnouncement(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	ctx := context.Background()

	err := s.SetTallyGoal(ctx, testChannel, "ghost", "wins", 10)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ghost", notFound.Name)

	err = s.SetDateGoal(ctx, testChannel, "ghost", "0 9 * * *")
	require.ErrorAs(t, err, &notFound)
}

func TestSchedulerInvalidDatePattern(t *testing.T) {
	s, repo, _ := newTestScheduler(t)
	ctx := context.Background()

	_, err := s.Create(ctx, testChannel, "daily", "")
	require.NoError(t, err)

	err = s.SetDateGoal(ctx, testChannel, "daily", "not a pattern")
	var invalid *InvalidPatternError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "not a pattern", invalid.Pattern)

	// Nothing was stored.
	a, err := repo.Get(ctx, testChannel.String(), "daily")
	require.NoError(t, err)
	assert.False(t, a.HasGoal())
	assert.Zero(t, s.entryCount())
}

func TestSchedulerDateGoalRegisters(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	ctx := context.Background()

	_, err := s.Create(ctx, testChannel, "daily", "")
	require.NoError(t, err)
	require.NoError(t, s.SetDateGoal(ctx, testChannel, "daily", "0 9 * * *"))
	assert.Equal(t, 1, s.entryCount())

	// Replacing with a tally goal cancels the schedule.
	require.NoError(t, s.SetTallyGoal(ctx, testChannel, "daily", "wins", 10))
	assert.Zero(t, s.entryCount())
}

func TestSchedulerDisableAndDeleteUnregister(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	ctx := context.Background()

	_, err := s.Create(ctx, testChannel, "daily", "")
	require.NoError(t, err)
	require.NoError(t, s.SetDateGoal(ctx, testChannel, "daily", "0 9 * * *"))

	a, err := s.Disable(ctx, testChannel, "daily")
	require.NoError(t, err)
	assert.False(t, a.Active)
	assert.Zero(t, s.entryCount())

	res, err := s.Enable(ctx, testChannel, "daily")
	require.NoError(t, err)
	assert.True(t, res.Announcement.Active)
	assert.False(t, res.AlreadyPassed)
	assert.Equal(t, 1, s.entryCount())

	require.NoError(t, s.Delete(ctx, testChannel, "daily"))
	assert.Zero(t, s.entryCount())
}

func TestSchedulerEnablePastOneShot(t *testing.T) {
	s, repo, _ := newTestScheduler(t)
	ctx := context.Background()

	_, err := s.Create(ctx, testChannel, "launch", "")
	require.NoError(t, err)
	require.NoError(t, repo.SetDateGoal(ctx, testChannel.String(), "launch", "2001-01-01"))

	res, err := s.Enable(ctx, testChannel, "launch")
	require.NoError(t, err)
	assert.True(t, res.AlreadyPassed)
	assert.Zero(t, s.entryCount())
}

func TestSchedulerFutureOneShotRegisters(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	ctx := context.Background()

	_, err := s.Create(ctx, testChannel, "launch", "")
	require.NoError(t, err)

	pattern := time.Now().Add(time.Hour).Format("2006-01-02 15:04:05")
	require.NoError(t, s.SetDateGoal(ctx, testChannel, "launch", pattern))
	assert.Equal(t, 1, s.entryCount())
}

func TestSchedulerCheckTallyGoalsFiresOnce(t *testing.T) {
	s, repo, sender := newTestScheduler(t)
	ctx := context.Background()

	_, err := s.Create(ctx, testChannel, "century", "we hit 100!")
	require.NoError(t, err)
	require.NoError(t, s.SetTallyGoal(ctx, testChannel, "century", "wins", 100))

	// Below the threshold nothing fires.
	s.CheckTallyGoals(ctx, testChannel, "wins", 99)
	assert.Zero(t, sender.count())

	// Another tally crossing has no effect either.
	s.CheckTallyGoals(ctx, testChannel, "losses", 100)
	assert.Zero(t, sender.count())

	s.CheckTallyGoals(ctx, testChannel, "wins", 100)
	require.Equal(t, 1, sender.count())
	assert.Equal(t, "century", sender.fired[0].Name)

	// The fired announcement is inactive and never re-fires.
	a, err := repo.Get(ctx, testChannel.String(), "century")
	require.NoError(t, err)
	assert.False(t, a.Active)

	s.CheckTallyGoals(ctx, testChannel, "wins", 101)
	assert.Equal(t, 1, sender.count())
}

func TestSchedulerCheckTallyGoalsConcurrentFiresOnce(t *testing.T) {
	s, _, sender := newTestScheduler(t)
	ctx := context.Background()

	_, err := s.Create(ctx, testChannel, "century", "we hit 100!")
	require.NoError(t, err)
	require.NoError(t, s.SetTallyGoal(ctx, testChannel, "century", "wins", 100))

	// Hooks run on their own goroutines, so two rapid bumps past the
	// threshold check the goal concurrently. Only one may fire.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(current int64) {
			defer wg.Done()
			s.CheckTallyGoals(ctx, testChannel, "wins", current)
		}(int64(100 + i))
	}
	wg.Wait()

	assert.Equal(t, 1, sender.count())
}

func TestSchedulerList(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	ctx := context.Background()

	_, err := s.Create(ctx, testChannel, "daily", "good morning")
	require.NoError(t, err)
	_, err = s.Create(ctx, testChannel, "century", "")
	require.NoError(t, err)
	_, err = s.Create(ctx, snowflake.ID(200), "elsewhere", "")
	require.NoError(t, err)

	list, err := s.List(ctx, testChannel)
	require.NoError(t, err)
	require.Len(t, list, 2)
	names := []string{list[0].Name, list[1].Name}
	assert.ElementsMatch(t, []string{"daily", "century"}, names)
}

func TestSchedulerRestore(t *testing.T) {
	repo := newMemAnnouncementRepository()
	sender := &recordingSender{}
	ctx := context.Background()

	seed := []*models.Announcement{
		{ChannelID: testChannel.String(), Name: "cron", Active: true, GoalType: models.GoalDate, DatePattern: "0 9 * * *"},
		{ChannelID: testChannel.String(), Name: "past", Active: true, GoalType: models.GoalDate, DatePattern: "2001-01-01"},
		{ChannelID: testChannel.String(), Name: "off", Active: false, GoalType: models.GoalDate, DatePattern: "0 9 * * *"},
		{ChannelID: testChannel.String(), Name: "threshold", Active: true, GoalType: models.GoalTally, GoalTallyName: "wins", GoalCount: 10},
	}
	for _, a := range seed {
		require.NoError(t, repo.Upsert(ctx, a))
	}

	s := NewScheduler(repo, sender)
	t.Cleanup(s.Stop)

	require.NoError(t, s.Restore(ctx))
	// Only the live cron goal is back on the scheduler.
	assert.Equal(t, 1, s.entryCount())
}
