// Package permissions resolves per-server command->role bindings. A
// command without a binding may be run by anyone.
package permissions

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	lru "github.com/hashicorp/golang-lru"
	"github.com/tallybot/tallybot/tallybot/database/models"
	"github.com/tallybot/tallybot/tallybot/database/repositories"
)

const cacheSize = 1024

type Service struct {
	repo  repositories.PermissionRepository
	cache *lru.Cache // server id -> map[command]roleID
}

func NewService(repo repositories.PermissionRepository) *Service {
	cache, _ := lru.New(cacheSize)
	return &Service{repo: repo, cache: cache}
}

// Allowed reports whether a member holding the given roles may run the
// command in the server.
func (s *Service) Allowed(ctx context.Context, serverID snowflake.ID, commandName string, roleIDs []snowflake.ID) (bool, error) {
	bindings, err := s.bindings(ctx, serverID)
	if err != nil {
		return false, err
	}
	required, bound := bindings[commandName]
	if !bound {
		return true, nil
	}
	for _, id := range roleIDs {
		if id.String() == required {
			return true, nil
		}
	}
	return false, nil
}

// List returns the server's bindings for display.
func (s *Service) List(ctx context.Context, serverID snowflake.ID) ([]*models.Permission, error) {
	return s.repo.ListByServer(ctx, serverID.String())
}

// Set binds a command to a role and invalidates the cached config.
func (s *Service) Set(ctx context.Context, serverID snowflake.ID, commandName string, roleID snowflake.ID) error {
	err := s.repo.Set(ctx, &models.Permission{
		ServerID: serverID.String(),
		Command:  commandName,
		RoleID:   roleID.String(),
	})
	if err != nil {
		return err
	}
	s.cache.Remove(serverID.String())
	return nil
}

func (s *Service) bindings(ctx context.Context, serverID snowflake.ID) (map[string]string, error) {
	if cached, ok := s.cache.Get(serverID.String()); ok {
		return cached.(map[string]string), nil
	}
	perms, err := s.repo.ListByServer(ctx, serverID.String())
	if err != nil {
		return nil, err
	}
	bindings := make(map[string]string, len(perms))
	for _, p := range perms {
		bindings[p.Command] = p.RoleID
	}
	s.cache.Add(serverID.String(), bindings)
	return bindings, nil
}
