package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tallybot/tallybot/tallybot/database/models"
	"github.com/uptrace/bun"
)

type TimerRepository interface {
	Get(ctx context.Context, channelID, name string) (*models.Timer, error)
	Create(ctx context.Context, timer *models.Timer) error
	Update(ctx context.Context, timer *models.Timer) error
	ListByChannel(ctx context.Context, channelID string) ([]*models.Timer, error)
}

type timerRepository struct {
	db *bun.DB
}

func NewTimerRepository(db *bun.DB) TimerRepository {
	return &timerRepository{db: db}
}

func (r *timerRepository) Get(ctx context.Context, channelID, name string) (*models.Timer, error) {
	timer := new(models.Timer)
	err := r.db.NewSelect().
		Model(timer).
		Where("channel_id = ?", channelID).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRows
		}
		return nil, err
	}
	return timer, nil
}

func (r *timerRepository) Create(ctx context.Context, timer *models.Timer) error {
	_, err := r.db.NewInsert().Model(timer).Exec(ctx)
	return translateError(err)
}

func (r *timerRepository) Update(ctx context.Context, timer *models.Timer) error {
	_, err := r.db.NewUpdate().
		Model(timer).
		WherePK().
		Exec(ctx)
	return err
}

func (r *timerRepository) ListByChannel(ctx context.Context, channelID string) ([]*models.Timer, error) {
	var timers []*models.Timer
	err := r.db.NewSelect().
		Model(&timers).
		Where("channel_id = ?", channelID).
		Order("name ASC").
		Scan(ctx)
	return timers, err
}
