// Package tally implements the counter state machine: create, read,
// mutate, rescope, and bulk operations over scoped named counters.
package tally

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sahilm/fuzzy"
	"github.com/tallybot/tallybot/tallybot/command"
	"github.com/tallybot/tallybot/tallybot/database/models"
	"github.com/tallybot/tallybot/tallybot/database/repositories"
)

// PageSize is the number of tallies per show page.
const PageSize = 25

const maxSuggestions = 3

// Hook observes successful count mutations. Hooks run on their own
// goroutine and must never block or fail the primary reply.
type Hook func(ctx context.Context, mctx command.Context, scope command.Scope, name string, current int64)

type Service struct {
	repo   repositories.TallyRepository
	hooks  []Hook
	totals Totals
}

func NewService(repo repositories.TallyRepository) *Service {
	return &Service{repo: repo}
}

// OnCountChange registers a post-mutation hook. Registration happens
// during wiring, before any dispatch, so no locking is needed.
func (s *Service) OnCountChange(h Hook) {
	s.hooks = append(s.hooks, h)
}

// Totals returns the process-wide bump/dump counters.
func (s *Service) Totals() (bumps, dumps int64) {
	return s.totals.Bumps(), s.totals.Dumps()
}

// BumpResult carries the pre- and post-mutation counts for display.
type BumpResult struct {
	Tally    *models.Tally
	Previous int64
	Current  int64
}

// ListResult is one page of tallies ordered by count descending.
type ListResult struct {
	Tallies    []*models.Tally
	Page       int
	TotalPages int
	Total      int
}

func (s *Service) Create(ctx context.Context, scope command.Scope, name, description string) (*models.Tally, error) {
	if err := validateDescription(description); err != nil {
		return nil, err
	}
	tally := &models.Tally{
		Scope:       scope.Kind.String(),
		ScopeID:     scope.ID.String(),
		Name:        name,
		Description: description,
	}
	if err := s.repo.Create(ctx, tally); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, &ConflictError{Name: name}
		}
		return nil, err
	}
	return tally, nil
}

func (s *Service) Get(ctx context.Context, scope command.Scope, name string) (*models.Tally, error) {
	tally, err := s.repo.Get(ctx, scope.Kind.String(), scope.ID.String(), name)
	if err != nil {
		if errors.Is(err, repositories.ErrNoRows) {
			return nil, s.notFound(ctx, scope, name)
		}
		return nil, err
	}
	return tally, nil
}

// Bump increments a tally by amount and reports previous and current
// counts. The increment is atomic at the storage boundary, so two
// concurrent bumps both land.
func (s *Service) Bump(ctx context.Context, mctx command.Context, scope command.Scope, name string, amount int64) (*BumpResult, error) {
	if amount < 1 {
		return nil, invalidArg("amount must be a positive number")
	}
	res, err := s.addToCount(ctx, mctx, scope, name, amount)
	if err != nil {
		return nil, err
	}
	s.totals.AddBump()
	return res, nil
}

// Dump decrements a tally by amount.
func (s *Service) Dump(ctx context.Context, mctx command.Context, scope command.Scope, name string, amount int64) (*BumpResult, error) {
	if amount < 1 {
		return nil, invalidArg("amount must be a positive number")
	}
	res, err := s.addToCount(ctx, mctx, scope, name, -amount)
	if err != nil {
		return nil, err
	}
	s.totals.AddDump()
	return res, nil
}

func (s *Service) addToCount(ctx context.Context, mctx command.Context, scope command.Scope, name string, delta int64) (*BumpResult, error) {
	tally, err := s.repo.AddToCount(ctx, scope.Kind.String(), scope.ID.String(), name, delta)
	if err != nil {
		if errors.Is(err, repositories.ErrNoRows) {
			return nil, s.notFound(ctx, scope, name)
		}
		return nil, err
	}
	s.fireHooks(mctx, scope, name, tally.Count)
	return &BumpResult{
		Tally:    tally,
		Previous: tally.Count - delta,
		Current:  tally.Count,
	}, nil
}

func (s *Service) Set(ctx context.Context, mctx command.Context, scope command.Scope, name string, amount int64) (*models.Tally, error) {
	tally, err := s.repo.SetCount(ctx, scope.Kind.String(), scope.ID.String(), name, amount)
	if err != nil {
		if errors.Is(err, repositories.ErrNoRows) {
			return nil, s.notFound(ctx, scope, name)
		}
		return nil, err
	}
	s.fireHooks(mctx, scope, name, tally.Count)
	return tally, nil
}

// Empty sets a tally's count to zero. Idempotent.
func (s *Service) Empty(ctx context.Context, mctx command.Context, scope command.Scope, name string) (*models.Tally, error) {
	return s.Set(ctx, mctx, scope, name, 0)
}

// EmptyAll zeroes every tally in the resolved scope and reports how
// many rows were touched. Rows in other scopes are untouched.
func (s *Service) EmptyAll(ctx context.Context, scope command.Scope) (int64, error) {
	return s.repo.SetCountAll(ctx, scope.Kind.String(), scope.ID.String(), 0)
}

// DeleteAll removes every tally in the resolved scope.
func (s *Service) DeleteAll(ctx context.Context, scope command.Scope) (int64, error) {
	return s.repo.DeleteAll(ctx, scope.Kind.String(), scope.ID.String())
}

func (s *Service) Delete(ctx context.Context, scope command.Scope, name string) error {
	err := s.repo.Delete(ctx, scope.Kind.String(), scope.ID.String(), name)
	if errors.Is(err, repositories.ErrNoRows) {
		return s.notFound(ctx, scope, name)
	}
	return err
}

func (s *Service) Describe(ctx context.Context, scope command.Scope, name, description string) error {
	if err := validateDescription(description); err != nil {
		return err
	}
	err := s.repo.SetDescription(ctx, scope.Kind.String(), scope.ID.String(), name, description)
	if errors.Is(err, repositories.ErrNoRows) {
		return s.notFound(ctx, scope, name)
	}
	return err
}

// Rescope re-keys a tally into the target scope. The source row is
// left unchanged when the target scope already holds the name.
func (s *Service) Rescope(ctx context.Context, scope command.Scope, name string, target command.Scope) error {
	err := s.repo.Rescope(ctx,
		scope.Kind.String(), scope.ID.String(), name,
		target.Kind.String(), target.ID.String())
	if err != nil {
		if errors.Is(err, repositories.ErrNoRows) {
			return s.notFound(ctx, scope, name)
		}
		if errors.Is(err, repositories.ErrDuplicate) {
			return &ConflictError{Name: name}
		}
		return err
	}
	return nil
}

// List returns one 25-row page ordered by count descending. An empty
// scope yields page 1 of 1; a page past the end is an error.
func (s *Service) List(ctx context.Context, scope command.Scope, page int) (*ListResult, error) {
	if page < 1 {
		return nil, invalidArg("page must be 1 or higher")
	}
	total, err := s.repo.CountByScope(ctx, scope.Kind.String(), scope.ID.String())
	if err != nil {
		return nil, err
	}
	totalPages := (total + PageSize - 1) / PageSize
	if totalPages == 0 {
		totalPages = 1
	}
	if page > totalPages {
		return nil, invalidArg("page number [%d] is higher than total pages [%d]", page, totalPages)
	}
	tallies, err := s.repo.ListByScope(ctx, scope.Kind.String(), scope.ID.String(), PageSize, (page-1)*PageSize)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Tallies:    tallies,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	}, nil
}

func (s *Service) fireHooks(mctx command.Context, scope command.Scope, name string, current int64) {
	for _, h := range s.hooks {
		h := h
		go func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("Count change hook panicked",
						slog.String("type", "sys"),
						slog.String("tally", name),
						slog.Any("panic", r))
				}
			}()
			ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
			defer cancel()
			h(ctx, mctx, scope, name, current)
		}()
	}
}

// notFound builds a NotFoundError with fuzzy name suggestions from the
// same scope. Suggestion lookup is best effort.
func (s *Service) notFound(ctx context.Context, scope command.Scope, name string) error {
	nf := &NotFoundError{Name: name}
	names, err := s.repo.NamesByScope(ctx, scope.Kind.String(), scope.ID.String())
	if err != nil {
		return nf
	}
	matches := fuzzy.Find(name, names)
	for i, m := range matches {
		if i == maxSuggestions {
			break
		}
		nf.Suggestions = append(nf.Suggestions, m.Str)
	}
	return nf
}

func validateDescription(description string) error {
	if len(description) > models.MaxDescriptionBytes {
		return invalidArg("description too long: %d bytes, max %d", len(description), models.MaxDescriptionBytes)
	}
	return nil
}
