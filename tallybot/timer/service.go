// Package timer implements named stopwatches bound to a channel.
package timer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/tallybot/tallybot/tallybot/database/models"
	"github.com/tallybot/tallybot/tallybot/database/repositories"
)

// NotFoundError is returned when stopping a timer that was never
// started in the channel.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no timer named %s has been started here", e.Name)
}

type Service struct {
	repo repositories.TimerRepository
	now  func() time.Time
}

func NewService(repo repositories.TimerRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Start begins the stopwatch, creating it on first use. Starting a
// running timer keeps its original start time; starting a stopped one
// restarts it from now. Either way the stop time is cleared.
func (s *Service) Start(ctx context.Context, channelID snowflake.ID, name string) (*models.Timer, error) {
	timer, err := s.repo.Get(ctx, channelID.String(), name)
	if err != nil {
		if !errors.Is(err, repositories.ErrNoRows) {
			return nil, err
		}
		now := s.now()
		timer = &models.Timer{
			ChannelID: channelID.String(),
			Name:      name,
			StartTime: &now,
		}
		if err := s.repo.Create(ctx, timer); err != nil {
			return nil, err
		}
		return timer, nil
	}

	if !timer.Running() {
		now := s.now()
		timer.StartTime = &now
	}
	timer.StopTime = nil
	if err := s.repo.Update(ctx, timer); err != nil {
		return nil, err
	}
	return timer, nil
}

// StopResult carries the elapsed duration for display.
type StopResult struct {
	Timer   *models.Timer
	Elapsed time.Duration
}

// ListEntry is one stopwatch as shown by the timers listing: running
// timers report elapsed time so far, stopped ones their final time.
type ListEntry struct {
	Name    string
	Running bool
	Elapsed time.Duration
}

// List reports every stopwatch in the channel, sorted by name.
func (s *Service) List(ctx context.Context, channelID snowflake.ID) ([]ListEntry, error) {
	timers, err := s.repo.ListByChannel(ctx, channelID.String())
	if err != nil {
		return nil, err
	}
	entries := make([]ListEntry, 0, len(timers))
	for _, t := range timers {
		entry := ListEntry{Name: t.Name, Running: t.Running()}
		switch {
		case t.Running():
			entry.Elapsed = s.now().Sub(*t.StartTime)
		case t.StartTime != nil && t.StopTime != nil:
			entry.Elapsed = t.StopTime.Sub(*t.StartTime)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Stop halts the stopwatch and reports elapsed time since start.
func (s *Service) Stop(ctx context.Context, channelID snowflake.ID, name string) (*StopResult, error) {
	timer, err := s.repo.Get(ctx, channelID.String(), name)
	if err != nil {
		if errors.Is(err, repositories.ErrNoRows) {
			return nil, &NotFoundError{Name: name}
		}
		return nil, err
	}
	if timer.StartTime == nil {
		return nil, &NotFoundError{Name: name}
	}

	now := s.now()
	timer.StopTime = &now
	if err := s.repo.Update(ctx, timer); err != nil {
		return nil, err
	}
	return &StopResult{
		Timer:   timer,
		Elapsed: now.Sub(*timer.StartTime),
	}, nil
}
