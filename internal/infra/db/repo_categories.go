package db

import (
	"context"
	"errors"
	"time"

	"officine/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, actor domain.ActorContext, category domain.Category) (*domain.Category, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	now := time.Now().UTC()
	category.ID = uuid.NewString()
	category.TenantID = actor.TenantID
	category.Actif = true
	category.CreatedAt = now
	category.UpdatedAt = now

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := categoryModelFromDomain(category)
		if err := tx.Create(&model).Error; err != nil {
			return translateErr(err)
		}
		return appendAudit(tx, actor, domain.ModuleCategories, domain.ActionCreer,
			category.ID, category.Nom, nil, category)
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, actor domain.ActorContext, id string) (*domain.Category, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model CategoryModel
	err := r.db.WithContext(ctx).
		First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", id, actor.TenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	category := categoryFromModel(model)
	return &category, nil
}

func (r *CategoryRepository) List(ctx context.Context, actor domain.ActorContext) ([]domain.Category, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []CategoryModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND actif = TRUE", actor.TenantID).
		Order("nom ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(models))
	for _, model := range models {
		out = append(out, categoryFromModel(model))
	}
	return out, nil
}

func (r *CategoryRepository) Update(ctx context.Context, actor domain.ActorContext, category domain.Category) (*domain.Category, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var updated domain.Category
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model CategoryModel
		err := tx.First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", category.ID, actor.TenantID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		before := categoryFromModel(model)
		model.Nom = category.Nom
		model.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&model).Error; err != nil {
			return translateErr(err)
		}
		updated = categoryFromModel(model)
		return appendAudit(tx, actor, domain.ModuleCategories, domain.ActionModifier,
			model.ID, model.Nom, before, updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *CategoryRepository) SoftDelete(ctx context.Context, actor domain.ActorContext, id string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model CategoryModel
		err := tx.First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", id, actor.TenantID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if err := tx.Model(&CategoryModel{}).
			Where("id = ?", model.ID).
			Update("actif", false).Error; err != nil {
			return err
		}
		return appendAudit(tx, actor, domain.ModuleCategories, domain.ActionSupprimer,
			model.ID, model.Nom, categoryFromModel(model), nil)
	})
}

func categoryModelFromDomain(category domain.Category) CategoryModel {
	return CategoryModel{
		ID:        category.ID,
		TenantID:  category.TenantID,
		Nom:       category.Nom,
		Actif:     category.Actif,
		CreatedAt: category.CreatedAt,
		UpdatedAt: category.UpdatedAt,
	}
}

func categoryFromModel(model CategoryModel) domain.Category {
	return domain.Category{
		ID:        model.ID,
		TenantID:  model.TenantID,
		Nom:       model.Nom,
		Actif:     model.Actif,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
