package repositories

import (
	"context"
	"time"

	"github.com/tallybot/tallybot/tallybot/database/models"
	"github.com/uptrace/bun"
)

type PermissionRepository interface {
	Set(ctx context.Context, p *models.Permission) error
	ListByServer(ctx context.Context, serverID string) ([]*models.Permission, error)
}

type permissionRepository struct {
	db *bun.DB
}

func NewPermissionRepository(db *bun.DB) PermissionRepository {
	return &permissionRepository{db: db}
}

func (r *permissionRepository) Set(ctx context.Context, p *models.Permission) error {
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().
		Model(p).
		On("CONFLICT (server_id, command) DO UPDATE").
		Set("role_id = EXCLUDED.role_id").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return translateError(err)
}

func (r *permissionRepository) ListByServer(ctx context.Context, serverID string) ([]*models.Permission, error) {
	var perms []*models.Permission
	err := r.db.NewSelect().
		Model(&perms).
		Where("server_id = ?", serverID).
		Order("command ASC").
		Scan(ctx)
	return perms, err
}
