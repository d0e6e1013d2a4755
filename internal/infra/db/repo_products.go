package db

import (
	"context"
	"errors"
	"time"

	"officine/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, actor domain.ActorContext, product domain.Product) (*domain.Product, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	now := time.Now().UTC()
	product.ID = uuid.NewString()
	product.TenantID = actor.TenantID
	product.Actif = true
	product.CreatedAt = now
	product.UpdatedAt = now

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if product.CategoryID != "" {
			var count int64
			if err := tx.Model(&CategoryModel{}).
				Where("id = ? AND tenant_id = ? AND actif = TRUE", product.CategoryID, actor.TenantID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return domain.ErrNotFound
			}
		}
		model := productModelFromDomain(product)
		if err := tx.Create(&model).Error; err != nil {
			return translateErr(err)
		}
		return appendAudit(tx, actor, domain.ModuleProduits, domain.ActionCreer,
			product.ID, product.Nom, nil, product)
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, actor domain.ActorContext, id string) (*domain.Product, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model ProductModel
	err := r.db.WithContext(ctx).
		First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", id, actor.TenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	product := productFromModel(model)
	return &product, nil
}

// List returns the tenant's active products, optionally narrowed by a
// case-insensitive substring match on name or barcode.
func (r *ProductRepository) List(ctx context.Context, actor domain.ActorContext, search string) ([]domain.Product, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	q := r.db.WithContext(ctx).
		Where("tenant_id = ? AND actif = TRUE", actor.TenantID)
	if search != "" {
		pattern := "%" + search + "%"
		q = q.Where("nom ILIKE ? OR code_barres ILIKE ?", pattern, pattern)
	}
	var models []ProductModel
	if err := q.Order("nom ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(models))
	for _, model := range models {
		out = append(out, productFromModel(model))
	}
	return out, nil
}

// ListExpiringBefore returns active products whose lot expires before the
// given date. Used by the notification sweep.
func (r *ProductRepository) ListExpiringBefore(ctx context.Context, tenantID string, before time.Time) ([]domain.Product, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []ProductModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND actif = TRUE AND date_peremption IS NOT NULL AND date_peremption <= ?", tenantID, before).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(models))
	for _, model := range models {
		out = append(out, productFromModel(model))
	}
	return out, nil
}

// NamesByID maps product ids to display names within a tenant. Missing or
// foreign-tenant ids are simply absent from the result.
func (r *ProductRepository) NamesByID(ctx context.Context, tenantID string, ids []string) (map[string]string, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var models []ProductModel
	err := r.db.WithContext(ctx).
		Select("id", "nom").
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	for _, model := range models {
		out[model.ID] = model.Nom
	}
	return out, nil
}

func (r *ProductRepository) Update(ctx context.Context, actor domain.ActorContext, product domain.Product) (*domain.Product, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var updated domain.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model ProductModel
		err := tx.First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", product.ID, actor.TenantID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		before := productFromModel(model)
		model.Nom = product.Nom
		model.CodeBarres = product.CodeBarres
		model.Description = product.Description
		model.PrixAchat = product.PrixAchat
		model.PrixVente = product.PrixVente
		model.DatePeremption = product.DatePeremption
		model.CategoryID = stringPtrIfNotEmpty(product.CategoryID)
		model.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&model).Error; err != nil {
			return translateErr(err)
		}
		updated = productFromModel(model)
		return appendAudit(tx, actor, domain.ModuleProduits, domain.ActionModifier,
			model.ID, model.Nom, before, updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *ProductRepository) SoftDelete(ctx context.Context, actor domain.ActorContext, id string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model ProductModel
		err := tx.First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", id, actor.TenantID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if err := tx.Model(&ProductModel{}).
			Where("id = ?", model.ID).
			Update("actif", false).Error; err != nil {
			return err
		}
		return appendAudit(tx, actor, domain.ModuleProduits, domain.ActionSupprimer,
			model.ID, model.Nom, productFromModel(model), nil)
	})
}

func productModelFromDomain(product domain.Product) ProductModel {
	return ProductModel{
		ID:             product.ID,
		TenantID:       product.TenantID,
		CategoryID:     stringPtrIfNotEmpty(product.CategoryID),
		Nom:            product.Nom,
		CodeBarres:     product.CodeBarres,
		Description:    product.Description,
		PrixAchat:      product.PrixAchat,
		PrixVente:      product.PrixVente,
		DatePeremption: product.DatePeremption,
		Actif:          product.Actif,
		CreatedAt:      product.CreatedAt,
		UpdatedAt:      product.UpdatedAt,
	}
}

func productFromModel(model ProductModel) domain.Product {
	return domain.Product{
		ID:             model.ID,
		TenantID:       model.TenantID,
		CategoryID:     stringValue(model.CategoryID),
		Nom:            model.Nom,
		CodeBarres:     model.CodeBarres,
		Description:    model.Description,
		PrixAchat:      model.PrixAchat,
		PrixVente:      model.PrixVente,
		DatePeremption: model.DatePeremption,
		Actif:          model.Actif,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}
