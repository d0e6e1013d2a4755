package usecase

import (
	"context"
	"fmt"

	"officine/internal/domain"
)

// RoleService wraps role storage with the owner gate and permission-cache
// invalidation. Reserved-module filtering happens at write time in both the
// service and the repository, so a role can never persist a grant on the
// employes or roles modules.
type RoleService struct {
	Roles       RoleRepository
	Invalidator PermissionInvalidator
}

func NewRoleService(roles RoleRepository, invalidator PermissionInvalidator) *RoleService {
	return &RoleService{Roles: roles, Invalidator: invalidator}
}

func (s *RoleService) Create(ctx context.Context, actor domain.ActorContext, role domain.Role) (*domain.Role, error) {
	if err := RequireOwner(actor); err != nil {
		return nil, err
	}
	if role.Nom == "" {
		return nil, fmt.Errorf("%w: le nom du rôle est requis", domain.ErrValidation)
	}
	role.Permissions = domain.FilterGrantable(role.Permissions)
	return s.Roles.Create(ctx, actor, role)
}

func (s *RoleService) Get(ctx context.Context, actor domain.ActorContext, roleID string) (*domain.Role, error) {
	if err := RequireOwner(actor); err != nil {
		return nil, err
	}
	return s.Roles.GetByID(ctx, actor, roleID)
}

func (s *RoleService) List(ctx context.Context, actor domain.ActorContext) ([]domain.Role, error) {
	if err := RequireOwner(actor); err != nil {
		return nil, err
	}
	return s.Roles.List(ctx, actor)
}

func (s *RoleService) Update(ctx context.Context, actor domain.ActorContext, role domain.Role) (*domain.Role, error) {
	if err := RequireOwner(actor); err != nil {
		return nil, err
	}
	role.Permissions = domain.FilterGrantable(role.Permissions)
	updated, err := s.Roles.Update(ctx, actor, role)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, actor.TenantID, role.ID)
	return updated, nil
}

func (s *RoleService) Delete(ctx context.Context, actor domain.ActorContext, roleID string) error {
	if err := RequireOwner(actor); err != nil {
		return err
	}
	if err := s.Roles.SoftDelete(ctx, actor, roleID); err != nil {
		return err
	}
	s.invalidate(ctx, actor.TenantID, roleID)
	return nil
}

func (s *RoleService) invalidate(ctx context.Context, tenantID, roleID string) {
	if s.Invalidator != nil {
		s.Invalidator.Invalidate(ctx, tenantID, roleID)
	}
}
