package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/tallybot/tallybot/tallybot/database/models"
	"github.com/uptrace/bun"
)

type AnnouncementRepository interface {
	// Upsert creates the announcement or refreshes its description.
	Upsert(ctx context.Context, a *models.Announcement) error
	Get(ctx context.Context, channelID, name string) (*models.Announcement, error)
	Delete(ctx context.Context, channelID, name string) error
	SetTallyGoal(ctx context.Context, channelID, name, tallyName string, count int64) error
	SetDateGoal(ctx context.Context, channelID, name, pattern string) error
	SetActive(ctx context.Context, channelID, name string, active bool) error
	// Deactivate flips an announcement inactive only if it is still
	// active, reporting whether this call won the flip. Concurrent
	// goal checks use it to fire at most once.
	Deactivate(ctx context.Context, channelID, name string) (bool, error)
	// ActiveTallyGoals lists active announcements in a channel whose
	// goal references the given tally name.
	ActiveTallyGoals(ctx context.Context, channelID, tallyName string) ([]*models.Announcement, error)
	// ActiveDateGoals lists every active date/cron goal, for schedule
	// restoration at startup.
	ActiveDateGoals(ctx context.Context) ([]*models.Announcement, error)
	ListByChannel(ctx context.Context, channelID string) ([]*models.Announcement, error)
}

type announcementRepository struct {
	db *bun.DB
}

func NewAnnouncementRepository(db *bun.DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) Upsert(ctx context.Context, a *models.Announcement) error {
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().
		Model(a).
		On("CONFLICT (channel_id, name) DO UPDATE").
		Set("description = EXCLUDED.description").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return translateError(err)
}

func (r *announcementRepository) Get(ctx context.Context, channelID, name string) (*models.Announcement, error) {
	a := new(models.Announcement)
	err := r.db.NewSelect().
		Model(a).
		Where("channel_id = ?", channelID).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRows
		}
		return nil, err
	}
	return a, nil
}

func (r *announcementRepository) Delete(ctx context.Context, channelID, name string) error {
	res, err := r.db.NewDelete().
		Model((*models.Announcement)(nil)).
		Where("channel_id = ?", channelID).
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

func (r *announcementRepository) SetTallyGoal(ctx context.Context, channelID, name, tallyName string, count int64) error {
	return r.setGoal(ctx, channelID, name, map[string]any{
		"goal_type":       models.GoalTally,
		"goal_tally_name": tallyName,
		"goal_count":      count,
		"date_pattern":    "",
	})
}

func (r *announcementRepository) SetDateGoal(ctx context.Context, channelID, name, pattern string) error {
	return r.setGoal(ctx, channelID, name, map[string]any{
		"goal_type":       models.GoalDate,
		"goal_tally_name": "",
		"goal_count":      int64(0),
		"date_pattern":    pattern,
	})
}

func (r *announcementRepository) setGoal(ctx context.Context, channelID, name string, values map[string]any) error {
	q := r.db.NewUpdate().
		Model((*models.Announcement)(nil)).
		Set("updated_at = ?", time.Now()).
		Where("channel_id = ?", channelID).
		Where("name = ?", name)
	for col, v := range values {
		q = q.Set("? = ?", bun.Ident(col), v)
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoRows
	}
	return nil
}

func (r *announcementRepository) SetActive(ctx context.Context, channelID, name string, active bool) error {
	res, err := r.db.NewUpdate().
		Model((*models.Announcement)(nil)).
		Set("active = ?", active).
		Set("updated_at = ?", time.Now()).
		Where("channel_id = ?", channelID).
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

func (r *announcementRepository) Deactivate(ctx context.Context, channelID, name string) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*models.Announcement)(nil)).
		Set("active = FALSE").
		Set("updated_at = ?", time.Now()).
		Where("channel_id = ?", channelID).
		Where("name = ?", name).
		Where("active = TRUE").
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *announcementRepository) ActiveTallyGoals(ctx context.Context, channelID, tallyName string) ([]*models.Announcement, error) {
	var announcements []*models.Announcement
	err := r.db.NewSelect().
		Model(&announcements).
		Where("channel_id = ?", channelID).
		Where("active = TRUE").
		Where("goal_type = ?", models.GoalTally).
		Where("goal_tally_name = ?", tallyName).
		Scan(ctx)
	return announcements, err
}

func (r *announcementRepository) ActiveDateGoals(ctx context.Context) ([]*models.Announcement, error) {
	var announcements []*models.Announcement
	err := r.db.NewSelect().
		Model(&announcements).
		Where("active = TRUE").
		Where("goal_type = ?", models.GoalDate).
		Scan(ctx)
	return announcements, err
}

func (r *announcementRepository) ListByChannel(ctx context.Context, channelID string) ([]*models.Announcement, error) {
	var announcements []*models.Announcement
	err := r.db.NewSelect().
		Model(&announcements).
		Where("channel_id = ?", channelID).
		Order("name ASC").
		Scan(ctx)
	return announcements, err
}
