package db

import (
	"context"
	"errors"

	"officine/internal/domain"

	"gorm.io/gorm"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := accountModelFromDomain(account)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return translateErr(err)
	}
	return nil
}

// GetBySubject looks an account up by its identity-provider subject id. This
// is the one repository read not scoped by tenant: it is what resolves the
// tenant in the first place.
func (r *AccountRepository) GetBySubject(ctx context.Context, subjectID string) (*domain.Account, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model AccountModel
	err := r.db.WithContext(ctx).
		First(&model, "subject_id = ? AND actif = TRUE", subjectID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	account := accountFromModel(model)
	return &account, nil
}

func (r *AccountRepository) ListEmployees(ctx context.Context, actor domain.ActorContext) ([]domain.Account, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []AccountModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_owner = FALSE AND actif = TRUE", actor.TenantID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Account, 0, len(models))
	for _, model := range models {
		out = append(out, accountFromModel(model))
	}
	return out, nil
}

func (r *AccountRepository) GetEmployee(ctx context.Context, actor domain.ActorContext, subjectID string) (*domain.Account, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model AccountModel
	err := r.db.WithContext(ctx).
		First(&model, "subject_id = ? AND tenant_id = ? AND is_owner = FALSE AND actif = TRUE", subjectID, actor.TenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	account := accountFromModel(model)
	return &account, nil
}

// AssignRole sets or clears (roleID == "") an employee's role. The role must
// belong to the same tenant.
func (r *AccountRepository) AssignRole(ctx context.Context, actor domain.ActorContext, subjectID, roleID string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if roleID != "" {
			var role RoleModel
			err := tx.First(&role, "id = ? AND tenant_id = ? AND actif = TRUE", roleID, actor.TenantID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrNotFound
				}
				return err
			}
		}
		result := tx.Model(&AccountModel{}).
			Where("subject_id = ? AND tenant_id = ? AND is_owner = FALSE AND actif = TRUE", subjectID, actor.TenantID).
			Update("role_id", stringPtrIfNotEmpty(roleID))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *AccountRepository) SoftDeleteEmployee(ctx context.Context, actor domain.ActorContext, subjectID string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model AccountModel
		err := tx.First(&model, "subject_id = ? AND tenant_id = ? AND is_owner = FALSE AND actif = TRUE", subjectID, actor.TenantID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		before := accountFromModel(model)
		if err := tx.Model(&AccountModel{}).
			Where("subject_id = ?", model.SubjectID).
			Update("actif", false).Error; err != nil {
			return err
		}
		return appendAudit(tx, actor, domain.ModuleEmployes, domain.ActionSupprimer,
			model.SubjectID, model.Nom+" "+model.Prenom, before, nil)
	})
}

func accountModelFromDomain(account domain.Account) AccountModel {
	return AccountModel{
		SubjectID: account.SubjectID,
		Email:     account.Email,
		Nom:       account.Nom,
		Prenom:    account.Prenom,
		IsOwner:   account.IsOwner,
		TenantID:  stringPtrIfNotEmpty(account.TenantID),
		RoleID:    stringPtrIfNotEmpty(account.RoleID),
		Actif:     account.Actif,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
}

func accountFromModel(model AccountModel) domain.Account {
	return domain.Account{
		SubjectID: model.SubjectID,
		Email:     model.Email,
		Nom:       model.Nom,
		Prenom:    model.Prenom,
		IsOwner:   model.IsOwner,
		TenantID:  stringValue(model.TenantID),
		RoleID:    stringValue(model.RoleID),
		Actif:     model.Actif,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
