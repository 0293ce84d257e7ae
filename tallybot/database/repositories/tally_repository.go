package repositories

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/tallybot/tallybot/tallybot/database/models"
	"github.com/uptrace/bun"
)

type TallyRepository interface {
	Create(ctx context.Context, tally *models.Tally) error
	Get(ctx context.Context, scope, scopeID, name string) (*models.Tally, error)
	// AddToCount applies count = count + delta in a single statement and
	// returns the updated row, so concurrent bumps never lose updates.
	AddToCount(ctx context.Context, scope, scopeID, name string, delta int64) (*models.Tally, error)
	SetCount(ctx context.Context, scope, scopeID, name string, count int64) (*models.Tally, error)
	SetDescription(ctx context.Context, scope, scopeID, name, description string) error
	Rescope(ctx context.Context, scope, scopeID, name, newScope, newScopeID string) error
	Delete(ctx context.Context, scope, scopeID, name string) error
	ListByScope(ctx context.Context, scope, scopeID string, limit, offset int) ([]*models.Tally, error)
	CountByScope(ctx context.Context, scope, scopeID string) (int, error)
	NamesByScope(ctx context.Context, scope, scopeID string) ([]string, error)
	SetCountAll(ctx context.Context, scope, scopeID string, count int64) (int64, error)
	DeleteAll(ctx context.Context, scope, scopeID string) (int64, error)
}

type tallyRepository struct {
	db *bun.DB
}

func NewTallyRepository(db *bun.DB) TallyRepository {
	return &tallyRepository{db: db}
}

func (r *tallyRepository) Create(ctx context.Context, tally *models.Tally) error {
	tally.CreatedAt = time.Now()
	tally.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().Model(tally).Exec(ctx)
	return translateError(err)
}

func (r *tallyRepository) Get(ctx context.Context, scope, scopeID, name string) (*models.Tally, error) {
	tally := new(models.Tally)
	err := r.db.NewSelect().
		Model(tally).
		Where("scope = ?", scope).
		Where("scope_id = ?", scopeID).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRows
		}
		slog.Error("Database error when getting tally",
			slog.String("type", "db"),
			slog.String("operation", "Get"),
			slog.String("scope", scope),
			slog.String("name", name),
			slog.String("error", err.Error()))
		return nil, err
	}
	return tally, nil
}

func (r *tallyRepository) AddToCount(ctx context.Context, scope, scopeID, name string, delta int64) (*models.Tally, error) {
	tally := new(models.Tally)
	res, err := r.db.NewUpdate().
		Model(tally).
		Set("count = count + ?", delta).
		Set("updated_at = ?", time.Now()).
		Where("scope = ?", scope).
		Where("scope_id = ?", scopeID).
		Where("name = ?", name).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRows
		}
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNoRows
	}
	return tally, nil
}

func (r *tallyRepository) SetCount(ctx context.Context, scope, scopeID, name string, count int64) (*models.Tally, error) {
	tally := new(models.Tally)
	res, err := r.db.NewUpdate().
		Model(tally).
		Set("count = ?", count).
		Set("updated_at = ?", time.Now()).
		Where("scope = ?", scope).
		Where("scope_id = ?", scopeID).
		Where("name = ?", name).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRows
		}
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNoRows
	}
	return tally, nil
}

func (r *tallyRepository) SetDescription(ctx context.Context, scope, scopeID, name, description string) error {
	res, err := r.db.NewUpdate().
		Model((*models.Tally)(nil)).
		Set("description = ?", description).
		Set("updated_at = ?", time.Now()).
		Where("scope = ?", scope).
		Where("scope_id = ?", scopeID).
		Where("name = ?", name).
		Exec(ctx)
	if err != nil {
		return translateError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoRows
	}
	return nil
}

func (r *tallyRepository) Rescope(ctx context.Context, scope, scopeID, name, newScope, newScopeID string) error {
	res, err := r.db.NewUpdate().
		Model((*models.Tally)(nil)).
		Set("scope = ?", newScope).
		Set("scope_id = ?", newScopeID).
		Set("updated_at = ?", time.Now()).
		Where("scope = ?", scope).
		Where("scope_id = ?", scopeID).
		Where("name = ?", name).
		Exec(ctx)
	if err != nil {
		return translateError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoRows
	}
	return nil
}

func (r *tallyRepository) Delete(ctx context.Context, scope, scopeID, name string) error {
	res, err := r.db.NewDelete().
		Model((*models.Tally)(nil)).
		Where("scope = ?", scope).
		Where("scope_id = ?", scopeID).
		Where("name = ?", name).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoRows
	}
	return nil
}

func (r *tallyRepository) ListByScope(ctx context.Context, scope, scopeID string, limit, offset int) ([]*models.Tally, error) {
	var tallies []*models.Tally
	err := r.db.NewSelect().
		Model(&tallies).
		Where("scope = ?", scope).
		Where("scope_id = ?", scopeID).
		OrderExpr("count DESC, name ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	return tallies, err
}

func (r *tallyRepository) CountByScope(ctx context.Context, scope, scopeID string) (int, error) {
	return r.db.NewSelect().
		Model((*models.Tally)(nil)).
		Where("scope = ?", scope).
		Where("scope_id = ?", scopeID).
		Count(ctx)
}

func (r *tallyRepository) NamesByScope(ctx context.Context, scope, scopeID string) ([]string, error) {
	var names []string
	err := r.db.NewSelect().
		Model((*models.Tally)(nil)).
		Column("name").
		Where("scope = ?", scope).
		Where("scope_id = ?", scopeID).
		Scan(ctx, &names)
	return names, err
}

func (r *tallyRepository) SetCountAll(ctx context.Context, scope, scopeID string, count int64) (int64, error) {
	res, err := r.db.NewUpdate().
		Model((*models.Tally)(nil)).
		Set("count = ?", count).
		Set("updated_at = ?", time.Now()).
		Where("scope = ?", scope).
		Where("scope_id = ?", scopeID).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *tallyRepository) DeleteAll(ctx context.Context, scope, scopeID string) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*models.Tally)(nil)).
		Where("scope = ?", scope).
		Where("scope_id = ?", scopeID).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
