// Package announce manages announcement goals: tally thresholds
// evaluated reactively on count changes, and date/cron goals registered
// with a scheduler. The schedule registry is owned here, keyed by
// (channel, name); re-registering a key always cancels the prior entry
// so a goal never fires twice for one occurrence.
package announce

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/robfig/cron/v3"
	"github.com/tallybot/tallybot/tallybot/database/models"
	"github.com/tallybot/tallybot/tallybot/database/repositories"
)

// Sender delivers a fired announcement to its channel. Firing is best
// effort: failures are logged, never retried.
type Sender interface {
	SendAnnouncement(channelID snowflake.ID, a *models.Announcement) error
}

type registryKey struct {
	ChannelID string
	Name      string
}

type Scheduler struct {
	repo   repositories.AnnouncementRepository
	sender Sender
	cron   *cron.Cron

	mu      sync.Mutex
	entries map[registryKey]func()
}

func NewScheduler(repo repositories.AnnouncementRepository, sender Sender) *Scheduler {
	s := &Scheduler{
		repo:    repo,
		sender:  sender,
		cron:    cron.New(),
		entries: map[registryKey]func(){},
	}
	s.cron.Start()
	return s
}

// Stop cancels every pending schedule. Used at shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	for key, cancel := range s.entries {
		cancel()
		delete(s.entries, key)
	}
	s.mu.Unlock()
	s.cron.Stop()
}

// Create upserts an announcement; creating an existing name refreshes
// its description without touching the goal.
func (s *Scheduler) Create(ctx context.Context, channelID snowflake.ID, name, description string) (*models.Announcement, error) {
	if len(description) > models.MaxDescriptionBytes {
		return nil, invalidArg("description too long: %d bytes, max %d", len(description), models.MaxDescriptionBytes)
	}
	a := &models.Announcement{
		ChannelID:   channelID.String(),
		Name:        name,
		Description: description,
		Active:      true,
	}
	if err := s.repo.Upsert(ctx, a); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, channelID.String(), name)
}

// Delete removes the announcement and cancels any live schedule.
func (s *Scheduler) Delete(ctx context.Context, channelID snowflake.ID, name string) error {
	if err := s.repo.Delete(ctx, channelID.String(), name); err != nil {
		if errors.Is(err, repositories.ErrNoRows) {
			return &NotFoundError{Name: name}
		}
		return err
	}
	s.unregister(registryKey{ChannelID: channelID.String(), Name: name})
	return nil
}

// SetTallyGoal attaches a threshold goal, replacing any previous goal.
// Threshold goals are not scheduled; they are checked on every count
// change of the named tally.
func (s *Scheduler) SetTallyGoal(ctx context.Context, channelID snowflake.ID, name, tallyName string, count int64) error {
	err := s.repo.SetTallyGoal(ctx, channelID.String(), name, tallyName, count)
	if err != nil {
		if errors.Is(err, repositories.ErrNoRows) {
			return &NotFoundError{Name: name}
		}
		return err
	}
	// A replaced date goal must not keep firing.
	s.unregister(registryKey{ChannelID: channelID.String(), Name: name})
	return nil
}

// SetDateGoal attaches a date or cron goal, replacing any previous
// goal, and registers its schedule: one-shot for an absolute date,
// repeating for a cron expression.
func (s *Scheduler) SetDateGoal(ctx context.Context, channelID snowflake.ID, name, pattern string) error {
	if _, _, err := parsePattern(pattern); err != nil {
		return err
	}
	err := s.repo.SetDateGoal(ctx, channelID.String(), name, pattern)
	if err != nil {
		if errors.Is(err, repositories.ErrNoRows) {
			return &NotFoundError{Name: name}
		}
		return err
	}
	a, err := s.repo.Get(ctx, channelID.String(), name)
	if err != nil {
		return err
	}
	if a.Active {
		if _, err := s.register(a); err != nil {
			return err
		}
	}
	return nil
}

// EnableResult reports whether enabling had any scheduling effect.
// AlreadyPassed is set when a one-shot date goal lies in the past; the
// announcement stays configured but nothing is registered.
type EnableResult struct {
	Announcement  *models.Announcement
	AlreadyPassed bool
}

func (s *Scheduler) Enable(ctx context.Context, channelID snowflake.ID, name string) (*EnableResult, error) {
	if err := s.setActive(ctx, channelID, name, true); err != nil {
		return nil, err
	}
	a, err := s.repo.Get(ctx, channelID.String(), name)
	if err != nil {
		return nil, err
	}
	res := &EnableResult{Announcement: a}
	if a.GoalType == models.GoalDate {
		registered, err := s.register(a)
		if err != nil {
			return nil, err
		}
		res.AlreadyPassed = !registered
	}
	return res, nil
}

// Disable deactivates the announcement without losing its goal and
// cancels any pending schedule.
func (s *Scheduler) Disable(ctx context.Context, channelID snowflake.ID, name string) (*models.Announcement, error) {
	if err := s.setActive(ctx, channelID, name, false); err != nil {
		return nil, err
	}
	s.unregister(registryKey{ChannelID: channelID.String(), Name: name})
	return s.repo.Get(ctx, channelID.String(), name)
}

func (s *Scheduler) setActive(ctx context.Context, channelID snowflake.ID, name string, active bool) error {
	err := s.repo.SetActive(ctx, channelID.String(), name, active)
	if errors.Is(err, repositories.ErrNoRows) {
		return &NotFoundError{Name: name}
	}
	return err
}

// List returns every announcement configured in a channel.
func (s *Scheduler) List(ctx context.Context, channelID snowflake.ID) ([]*models.Announcement, error) {
	return s.repo.ListByChannel(ctx, channelID.String())
}

// CheckTallyGoals fires every active threshold goal in the channel
// that the given count change crossed. A fired announcement is marked
// inactive first so later counts above the threshold don't re-fire it.
func (s *Scheduler) CheckTallyGoals(ctx context.Context, channelID snowflake.ID, tallyName string, current int64) {
	goals, err := s.repo.ActiveTallyGoals(ctx, channelID.String(), tallyName)
	if err != nil {
		slog.Error("Failed to load tally goals",
			slog.String("type", "db"),
			slog.String("channel_id", channelID.String()),
			slog.String("tally", tallyName),
			slog.Any("error", err))
		return
	}
	for _, a := range goals {
		if current < a.GoalCount {
			continue
		}
		// The conditional flip decides which of several concurrent
		// checks fires; the losers see no row affected and back off.
		won, err := s.repo.Deactivate(ctx, a.ChannelID, a.Name)
		if err != nil {
			slog.Error("Failed to deactivate fired announcement",
				slog.String("type", "db"),
				slog.String("announcement", a.Name),
				slog.Any("error", err))
			continue
		}
		if !won {
			continue
		}
		a.Active = false
		s.fire(a)
	}
}

// Restore re-registers every active date/cron goal after a restart.
// Past one-shot dates are skipped.
func (s *Scheduler) Restore(ctx context.Context) error {
	goals, err := s.repo.ActiveDateGoals(ctx)
	if err != nil {
		return fmt.Errorf("failed to list date goals: %w", err)
	}
	for _, a := range goals {
		if _, err := s.register(a); err != nil {
			slog.Warn("Skipping unschedulable announcement",
				slog.String("type", "sys"),
				slog.String("announcement", a.Name),
				slog.String("pattern", a.DatePattern),
				slog.Any("error", err))
		}
	}
	return nil
}

// register schedules a date goal. Returns false when a one-shot date
// lies in the past and nothing was registered.
func (s *Scheduler) register(a *models.Announcement) (bool, error) {
	at, schedule, err := parsePattern(a.DatePattern)
	if err != nil {
		return false, err
	}
	key := registryKey{ChannelID: a.ChannelID, Name: a.Name}
	announcement := *a

	if schedule != nil {
		entryID := s.cron.Schedule(schedule, cron.FuncJob(func() {
			s.fire(&announcement)
		}))
		s.track(key, func() { s.cron.Remove(entryID) })
		return true, nil
	}

	delay := time.Until(at)
	if delay <= 0 {
		return false, nil
	}
	timer := time.AfterFunc(delay, func() {
		s.fireOneShot(&announcement)
	})
	s.track(key, func() { timer.Stop() })
	return true, nil
}

func (s *Scheduler) track(key registryKey, cancel func()) {
	s.mu.Lock()
	if prior, ok := s.entries[key]; ok {
		prior()
	}
	s.entries[key] = cancel
	s.mu.Unlock()
}

func (s *Scheduler) unregister(key registryKey) {
	s.mu.Lock()
	if cancel, ok := s.entries[key]; ok {
		cancel()
		delete(s.entries, key)
	}
	s.mu.Unlock()
}

// fireOneShot deactivates a one-shot date announcement so a later
// enable doesn't replay it, then fires.
func (s *Scheduler) fireOneShot(a *models.Announcement) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.repo.SetActive(ctx, a.ChannelID, a.Name, false); err != nil {
		slog.Error("Failed to deactivate fired announcement",
			slog.String("type", "db"),
			slog.String("announcement", a.Name),
			slog.Any("error", err))
	}
	s.unregister(registryKey{ChannelID: a.ChannelID, Name: a.Name})
	s.fire(a)
}

func (s *Scheduler) fire(a *models.Announcement) {
	channelID, err := snowflake.Parse(a.ChannelID)
	if err != nil {
		slog.Error("Announcement has an invalid channel id",
			slog.String("type", "sys"),
			slog.String("announcement", a.Name),
			slog.String("channel_id", a.ChannelID))
		return
	}
	if err := s.sender.SendAnnouncement(channelID, a); err != nil {
		slog.Error("Failed to deliver announcement",
			slog.String("type", "sys"),
			slog.String("announcement", a.Name),
			slog.String("channel_id", a.ChannelID),
			slog.Any("error", err))
	}
}
