package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"officine/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) *StockRepository {
	return &StockRepository{db: db}
}

func (r *StockRepository) Create(ctx context.Context, actor domain.ActorContext, stock domain.Stock) (*domain.Stock, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	now := time.Now().UTC()
	stock.ID = uuid.NewString()
	stock.TenantID = actor.TenantID
	stock.Actif = true
	stock.CreatedAt = now
	stock.UpdatedAt = now

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireTenantRow(tx, &ProductModel{}, stock.ProductID, actor.TenantID); err != nil {
			return err
		}
		if err := requireTenantRow(tx, &EstablishmentModel{}, stock.EstablishmentID, actor.TenantID); err != nil {
			return err
		}
		model := stockModelFromDomain(stock)
		if err := tx.Create(&model).Error; err != nil {
			return translateErr(err)
		}
		return appendAudit(tx, actor, domain.ModuleStock, domain.ActionCreer,
			stock.ID, stock.ProductID, nil, stock)
	})
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

func (r *StockRepository) GetByID(ctx context.Context, actor domain.ActorContext, id string) (*domain.Stock, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model StockModel
	err := r.db.WithContext(ctx).
		First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", id, actor.TenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	stock := stockFromModel(model)
	return &stock, nil
}

func (r *StockRepository) List(ctx context.Context, actor domain.ActorContext, establishmentID string) ([]domain.Stock, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	q := r.db.WithContext(ctx).
		Where("tenant_id = ? AND actif = TRUE", actor.TenantID)
	if establishmentID != "" {
		q = q.Where("establishment_id = ?", establishmentID)
	}
	var models []StockModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Stock, 0, len(models))
	for _, model := range models {
		out = append(out, stockFromModel(model))
	}
	return out, nil
}

// ListBelowThreshold returns active stock rows at or under their alert
// threshold. Used by the notification sweep.
func (r *StockRepository) ListBelowThreshold(ctx context.Context, tenantID string) ([]domain.Stock, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []StockModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND actif = TRUE AND seuil_alerte > 0 AND quantite <= seuil_alerte", tenantID).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Stock, 0, len(models))
	for _, model := range models {
		out = append(out, stockFromModel(model))
	}
	return out, nil
}

// Adjust applies a signed quantity delta and writes the audit entry in the
// same transaction. Concurrent adjustments race last-write-wins at the
// storage isolation level; the only hard floor is a non-negative quantity.
func (r *StockRepository) Adjust(ctx context.Context, actor domain.ActorContext, id string, delta int64) (*domain.Stock, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var updated domain.Stock
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model StockModel
		err := tx.First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", id, actor.TenantID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		before := stockFromModel(model)
		if err := adjustStockQuantityTx(tx, model.ID, delta); err != nil {
			return err
		}
		if err := tx.First(&model, "id = ?", model.ID).Error; err != nil {
			return err
		}
		updated = stockFromModel(model)
		return appendAudit(tx, actor, domain.ModuleStock, domain.ActionModifier,
			model.ID, model.ProductID, before, updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *StockRepository) UpdateThreshold(ctx context.Context, actor domain.ActorContext, id string, seuil int64) (*domain.Stock, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var updated domain.Stock
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model StockModel
		err := tx.First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", id, actor.TenantID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		before := stockFromModel(model)
		model.SeuilAlerte = seuil
		model.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&model).Error; err != nil {
			return err
		}
		updated = stockFromModel(model)
		return appendAudit(tx, actor, domain.ModuleStock, domain.ActionModifier,
			model.ID, model.ProductID, before, updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *StockRepository) SoftDelete(ctx context.Context, actor domain.ActorContext, id string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model StockModel
		err := tx.First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", id, actor.TenantID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if err := tx.Model(&StockModel{}).
			Where("id = ?", model.ID).
			Update("actif", false).Error; err != nil {
			return err
		}
		return appendAudit(tx, actor, domain.ModuleStock, domain.ActionSupprimer,
			model.ID, model.ProductID, stockFromModel(model), nil)
	})
}

// adjustStockQuantityTx is the single place stock quantities move. The guard
// keeps quantities from going negative; callers translate a zero-row update
// into "stock insuffisant".
func adjustStockQuantityTx(tx *gorm.DB, stockID string, delta int64) error {
	result := tx.Model(&StockModel{}).
		Where("id = ? AND quantite + ? >= 0", stockID, delta).
		Updates(map[string]any{
			"quantite":   gorm.Expr("quantite + ?", delta),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: stock insuffisant", domain.ErrValidation)
	}
	return nil
}

// adjustStockForProductTx resolves the stock row for (product, establishment)
// under the tenant and applies the delta. Shared by sales, deliveries and
// transfers. An incoming quantity with no row yet creates one, so the first
// delivery of a product to an establishment needs no manual stock setup.
func adjustStockForProductTx(tx *gorm.DB, tenantID, productID, establishmentID string, delta int64) error {
	var model StockModel
	err := tx.First(&model,
		"tenant_id = ? AND product_id = ? AND establishment_id = ? AND actif = TRUE",
		tenantID, productID, establishmentID).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if delta <= 0 {
			return domain.ErrNotFound
		}
		now := time.Now().UTC()
		model = StockModel{
			ID:              uuid.NewString(),
			TenantID:        tenantID,
			ProductID:       productID,
			EstablishmentID: establishmentID,
			Quantite:        delta,
			Actif:           true,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		return translateErr(tx.Create(&model).Error)
	}
	return adjustStockQuantityTx(tx, model.ID, delta)
}

func requireTenantRow(tx *gorm.DB, model any, id, tenantID string) error {
	var count int64
	if err := tx.Model(model).
		Where("id = ? AND tenant_id = ? AND actif = TRUE", id, tenantID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func stockModelFromDomain(stock domain.Stock) StockModel {
	return StockModel{
		ID:              stock.ID,
		TenantID:        stock.TenantID,
		ProductID:       stock.ProductID,
		EstablishmentID: stock.EstablishmentID,
		Quantite:        stock.Quantite,
		SeuilAlerte:     stock.SeuilAlerte,
		Actif:           stock.Actif,
		CreatedAt:       stock.CreatedAt,
		UpdatedAt:       stock.UpdatedAt,
	}
}

func stockFromModel(model StockModel) domain.Stock {
	return domain.Stock{
		ID:              model.ID,
		TenantID:        model.TenantID,
		ProductID:       model.ProductID,
		EstablishmentID: model.EstablishmentID,
		Quantite:        model.Quantite,
		SeuilAlerte:     model.SeuilAlerte,
		Actif:           model.Actif,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}
