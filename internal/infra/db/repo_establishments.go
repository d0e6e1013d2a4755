package db

import (
	"context"
	"errors"
	"time"

	"officine/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EstablishmentRepository struct {
	db *gorm.DB
}

func NewEstablishmentRepository(db *gorm.DB) *EstablishmentRepository {
	return &EstablishmentRepository{db: db}
}

func (r *EstablishmentRepository) Create(ctx context.Context, actor domain.ActorContext, establishment domain.Establishment) (*domain.Establishment, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	now := time.Now().UTC()
	establishment.ID = uuid.NewString()
	establishment.TenantID = actor.TenantID
	establishment.Actif = true
	establishment.CreatedAt = now
	establishment.UpdatedAt = now

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := establishmentModelFromDomain(establishment)
		if err := tx.Create(&model).Error; err != nil {
			return translateErr(err)
		}
		return appendAudit(tx, actor, domain.ModuleEtablissements, domain.ActionCreer,
			establishment.ID, establishment.Nom, nil, establishment)
	})
	if err != nil {
		return nil, err
	}
	return &establishment, nil
}

func (r *EstablishmentRepository) GetByID(ctx context.Context, actor domain.ActorContext, id string) (*domain.Establishment, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model EstablishmentModel
	err := r.db.WithContext(ctx).
		First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", id, actor.TenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	establishment := establishmentFromModel(model)
	return &establishment, nil
}

func (r *EstablishmentRepository) List(ctx context.Context, actor domain.ActorContext) ([]domain.Establishment, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []EstablishmentModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND actif = TRUE", actor.TenantID).
		Order("nom ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Establishment, 0, len(models))
	for _, model := range models {
		out = append(out, establishmentFromModel(model))
	}
	return out, nil
}

func (r *EstablishmentRepository) Update(ctx context.Context, actor domain.ActorContext, establishment domain.Establishment) (*domain.Establishment, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var updated domain.Establishment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model EstablishmentModel
		err := tx.First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", establishment.ID, actor.TenantID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		before := establishmentFromModel(model)
		model.Nom = establishment.Nom
		model.Adresse = establishment.Adresse
		model.Telephone = establishment.Telephone
		model.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&model).Error; err != nil {
			return translateErr(err)
		}
		updated = establishmentFromModel(model)
		return appendAudit(tx, actor, domain.ModuleEtablissements, domain.ActionModifier,
			model.ID, model.Nom, before, updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *EstablishmentRepository) SoftDelete(ctx context.Context, actor domain.ActorContext, id string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model EstablishmentModel
		err := tx.First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", id, actor.TenantID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if err := tx.Model(&EstablishmentModel{}).
			Where("id = ?", model.ID).
			Update("actif", false).Error; err != nil {
			return err
		}
		return appendAudit(tx, actor, domain.ModuleEtablissements, domain.ActionSupprimer,
			model.ID, model.Nom, establishmentFromModel(model), nil)
	})
}

func establishmentModelFromDomain(establishment domain.Establishment) EstablishmentModel {
	return EstablishmentModel{
		ID:        establishment.ID,
		TenantID:  establishment.TenantID,
		Nom:       establishment.Nom,
		Adresse:   establishment.Adresse,
		Telephone: establishment.Telephone,
		Actif:     establishment.Actif,
		CreatedAt: establishment.CreatedAt,
		UpdatedAt: establishment.UpdatedAt,
	}
}

func establishmentFromModel(model EstablishmentModel) domain.Establishment {
	return domain.Establishment{
		ID:        model.ID,
		TenantID:  model.TenantID,
		Nom:       model.Nom,
		Adresse:   model.Adresse,
		Telephone: model.Telephone,
		Actif:     model.Actif,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
