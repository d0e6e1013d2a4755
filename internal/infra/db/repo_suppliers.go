package db

import (
	"context"
	"errors"
	"time"

	"officine/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

func (r *SupplierRepository) Create(ctx context.Context, actor domain.ActorContext, supplier domain.Supplier) (*domain.Supplier, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	now := time.Now().UTC()
	supplier.ID = uuid.NewString()
	supplier.TenantID = actor.TenantID
	supplier.Actif = true
	supplier.CreatedAt = now
	supplier.UpdatedAt = now

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := supplierModelFromDomain(supplier)
		if err := tx.Create(&model).Error; err != nil {
			return translateErr(err)
		}
		return appendAudit(tx, actor, domain.ModuleFournisseurs, domain.ActionCreer,
			supplier.ID, supplier.Nom, nil, supplier)
	})
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *SupplierRepository) GetByID(ctx context.Context, actor domain.ActorContext, id string) (*domain.Supplier, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model SupplierModel
	err := r.db.WithContext(ctx).
		First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", id, actor.TenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	supplier := supplierFromModel(model)
	return &supplier, nil
}

func (r *SupplierRepository) List(ctx context.Context, actor domain.ActorContext, search string) ([]domain.Supplier, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	q := r.db.WithContext(ctx).
		Where("tenant_id = ? AND actif = TRUE", actor.TenantID)
	if search != "" {
		q = q.Where("nom ILIKE ?", "%"+search+"%")
	}
	var models []SupplierModel
	if err := q.Order("nom ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Supplier, 0, len(models))
	for _, model := range models {
		out = append(out, supplierFromModel(model))
	}
	return out, nil
}

func (r *SupplierRepository) Update(ctx context.Context, actor domain.ActorContext, supplier domain.Supplier) (*domain.Supplier, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var updated domain.Supplier
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model SupplierModel
		err := tx.First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", supplier.ID, actor.TenantID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		before := supplierFromModel(model)
		model.Nom = supplier.Nom
		model.Contact = supplier.Contact
		model.Telephone = supplier.Telephone
		model.Email = supplier.Email
		model.Adresse = supplier.Adresse
		model.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&model).Error; err != nil {
			return translateErr(err)
		}
		updated = supplierFromModel(model)
		return appendAudit(tx, actor, domain.ModuleFournisseurs, domain.ActionModifier,
			model.ID, model.Nom, before, updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *SupplierRepository) SoftDelete(ctx context.Context, actor domain.ActorContext, id string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model SupplierModel
		err := tx.First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", id, actor.TenantID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if err := tx.Model(&SupplierModel{}).
			Where("id = ?", model.ID).
			Update("actif", false).Error; err != nil {
			return err
		}
		return appendAudit(tx, actor, domain.ModuleFournisseurs, domain.ActionSupprimer,
			model.ID, model.Nom, supplierFromModel(model), nil)
	})
}

func supplierModelFromDomain(supplier domain.Supplier) SupplierModel {
	return SupplierModel{
		ID:        supplier.ID,
		TenantID:  supplier.TenantID,
		Nom:       supplier.Nom,
		Contact:   supplier.Contact,
		Telephone: supplier.Telephone,
		Email:     supplier.Email,
		Adresse:   supplier.Adresse,
		Actif:     supplier.Actif,
		CreatedAt: supplier.CreatedAt,
		UpdatedAt: supplier.UpdatedAt,
	}
}

func supplierFromModel(model SupplierModel) domain.Supplier {
	return domain.Supplier{
		ID:        model.ID,
		TenantID:  model.TenantID,
		Nom:       model.Nom,
		Contact:   model.Contact,
		Telephone: model.Telephone,
		Email:     model.Email,
		Adresse:   model.Adresse,
		Actif:     model.Actif,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
