package db

import (
	"context"
	"errors"
	"time"

	"officine/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// Create persists the role and its permission set in one transaction. Callers
// are expected to have filtered reserved modules already; the filter is
// re-applied here so a reserved grant can never reach storage.
func (r *RoleRepository) Create(ctx context.Context, actor domain.ActorContext, role domain.Role) (*domain.Role, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	role.ID = uuid.NewString()
	role.TenantID = actor.TenantID
	role.Permissions = domain.FilterGrantable(role.Permissions)
	now := time.Now().UTC()
	role.CreatedAt = now
	role.UpdatedAt = now

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := RoleModel{
			ID:        role.ID,
			TenantID:  role.TenantID,
			Nom:       role.Nom,
			Actif:     true,
			CreatedAt: role.CreatedAt,
			UpdatedAt: role.UpdatedAt,
		}
		if err := tx.Create(&model).Error; err != nil {
			return translateErr(err)
		}
		for i := range role.Permissions {
			role.Permissions[i].ID = uuid.NewString()
			role.Permissions[i].RoleID = role.ID
		}
		if err := createPermissions(tx, role.Permissions); err != nil {
			return err
		}
		return appendAudit(tx, actor, domain.ModuleRoles, domain.ActionCreer,
			role.ID, role.Nom, nil, role)
	})
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepository) GetByID(ctx context.Context, actor domain.ActorContext, roleID string) (*domain.Role, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model RoleModel
	err := r.db.WithContext(ctx).
		First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", roleID, actor.TenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	perms, err := r.listPermissions(ctx, model.ID)
	if err != nil {
		return nil, err
	}
	role := roleFromModel(model)
	role.Permissions = perms
	return &role, nil
}

func (r *RoleRepository) List(ctx context.Context, actor domain.ActorContext) ([]domain.Role, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []RoleModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND actif = TRUE", actor.TenantID).
		Order("nom ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Role, 0, len(models))
	for _, model := range models {
		perms, err := r.listPermissions(ctx, model.ID)
		if err != nil {
			return nil, err
		}
		role := roleFromModel(model)
		role.Permissions = perms
		out = append(out, role)
	}
	return out, nil
}

// Update replaces the role's name and its whole permission set (delete-all
// then recreate) in one transaction.
func (r *RoleRepository) Update(ctx context.Context, actor domain.ActorContext, role domain.Role) (*domain.Role, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	role.Permissions = domain.FilterGrantable(role.Permissions)

	var updated domain.Role
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model RoleModel
		err := tx.First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", role.ID, actor.TenantID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		beforePerms, err := listPermissionsTx(tx, model.ID)
		if err != nil {
			return err
		}
		before := roleFromModel(model)
		before.Permissions = beforePerms

		if role.Nom != "" {
			model.Nom = role.Nom
		}
		model.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&model).Error; err != nil {
			return translateErr(err)
		}
		if err := tx.Where("role_id = ?", model.ID).Delete(&PermissionModel{}).Error; err != nil {
			return err
		}
		for i := range role.Permissions {
			role.Permissions[i].ID = uuid.NewString()
			role.Permissions[i].RoleID = model.ID
		}
		if err := createPermissions(tx, role.Permissions); err != nil {
			return err
		}
		updated = roleFromModel(model)
		updated.Permissions = role.Permissions
		return appendAudit(tx, actor, domain.ModuleRoles, domain.ActionModifier,
			model.ID, model.Nom, before, updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *RoleRepository) SoftDelete(ctx context.Context, actor domain.ActorContext, roleID string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model RoleModel
		err := tx.First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", roleID, actor.TenantID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if err := tx.Model(&RoleModel{}).
			Where("id = ?", model.ID).
			Update("actif", false).Error; err != nil {
			return err
		}
		// Employees holding the role fall back to no role, which denies
		// everything until the owner reassigns one.
		if err := tx.Model(&AccountModel{}).
			Where("role_id = ? AND tenant_id = ?", model.ID, actor.TenantID).
			Update("role_id", nil).Error; err != nil {
			return err
		}
		return appendAudit(tx, actor, domain.ModuleRoles, domain.ActionSupprimer,
			model.ID, model.Nom, roleFromModel(model), nil)
	})
}

// ListByRole implements rbac.PermissionSource. The tenant check keeps one
// tenant's role ids from resolving another tenant's permission rows.
func (r *RoleRepository) ListByRole(ctx context.Context, tenantID, roleID string) ([]domain.Permission, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&RoleModel{}).
		Where("id = ? AND tenant_id = ? AND actif = TRUE", roleID, tenantID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	return r.listPermissions(ctx, roleID)
}

func (r *RoleRepository) listPermissions(ctx context.Context, roleID string) ([]domain.Permission, error) {
	return listPermissionsTx(r.db.WithContext(ctx), roleID)
}

func listPermissionsTx(tx *gorm.DB, roleID string) ([]domain.Permission, error) {
	var models []PermissionModel
	if err := tx.Where("role_id = ?", roleID).Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Permission, 0, len(models))
	for _, model := range models {
		out = append(out, domain.Permission{
			ID:     model.ID,
			RoleID: model.RoleID,
			Module: domain.Module(model.Module),
			Action: domain.Action(model.Action),
		})
	}
	return out, nil
}

func createPermissions(tx *gorm.DB, perms []domain.Permission) error {
	for _, p := range perms {
		model := PermissionModel{
			ID:     p.ID,
			RoleID: p.RoleID,
			Module: string(p.Module),
			Action: string(p.Action),
		}
		if err := tx.Create(&model).Error; err != nil {
			return translateErr(err)
		}
	}
	return nil
}

func roleFromModel(model RoleModel) domain.Role {
	return domain.Role{
		ID:        model.ID,
		TenantID:  model.TenantID,
		Nom:       model.Nom,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
