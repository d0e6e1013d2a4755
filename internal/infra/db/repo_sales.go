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

type SaleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) *SaleRepository {
	return &SaleRepository{db: db}
}

// Create records the sale and decrements every line's stock at the selling
// establishment in one transaction. An insufficient stock row aborts the
// whole sale.
func (r *SaleRepository) Create(ctx context.Context, actor domain.ActorContext, sale domain.Sale) (*domain.Sale, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	if len(sale.Lines) == 0 {
		return nil, fmt.Errorf("%w: une vente requiert au moins une ligne", domain.ErrValidation)
	}
	now := time.Now().UTC()
	sale.ID = uuid.NewString()
	sale.TenantID = actor.TenantID
	sale.Reference = domain.NewReference(domain.RefPrefixVente, now)
	sale.Actif = true
	sale.CreatedAt = now
	sale.UpdatedAt = now

	total := 0.0
	for _, line := range sale.Lines {
		total += float64(line.Quantite) * line.PrixUnitaire
	}
	sale.Total = total

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireTenantRow(tx, &EstablishmentModel{}, sale.EstablishmentID, actor.TenantID); err != nil {
			return err
		}
		if sale.ClientID != "" {
			if err := requireTenantRow(tx, &ClientModel{}, sale.ClientID, actor.TenantID); err != nil {
				return err
			}
		}
		model := saleModelFromDomain(sale)
		if err := tx.Create(&model).Error; err != nil {
			return translateErr(err)
		}
		for i := range sale.Lines {
			sale.Lines[i].ID = uuid.NewString()
			sale.Lines[i].SaleID = sale.ID
			line := saleLineModelFromDomain(sale.Lines[i])
			if err := tx.Create(&line).Error; err != nil {
				return translateErr(err)
			}
			if err := adjustStockForProductTx(tx, actor.TenantID, line.ProductID, sale.EstablishmentID, -line.Quantite); err != nil {
				return err
			}
		}
		return appendAudit(tx, actor, domain.ModuleVentes, domain.ActionCreer,
			sale.ID, sale.Reference, nil, sale)
	})
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *SaleRepository) GetByID(ctx context.Context, actor domain.ActorContext, id string) (*domain.Sale, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model SaleModel
	err := r.db.WithContext(ctx).
		First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", id, actor.TenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var lineModels []SaleLineModel
	if err := r.db.WithContext(ctx).Where("sale_id = ?", model.ID).Find(&lineModels).Error; err != nil {
		return nil, err
	}
	sale := saleFromModel(model)
	for _, line := range lineModels {
		sale.Lines = append(sale.Lines, domain.SaleLine{
			ID:           line.ID,
			SaleID:       line.SaleID,
			ProductID:    line.ProductID,
			Quantite:     line.Quantite,
			PrixUnitaire: line.PrixUnitaire,
		})
	}
	return &sale, nil
}

func (r *SaleRepository) List(ctx context.Context, actor domain.ActorContext) ([]domain.Sale, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []SaleModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND actif = TRUE", actor.TenantID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Sale, 0, len(models))
	for _, model := range models {
		out = append(out, saleFromModel(model))
	}
	return out, nil
}

func (r *SaleRepository) SoftDelete(ctx context.Context, actor domain.ActorContext, id string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model SaleModel
		err := tx.First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", id, actor.TenantID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if err := tx.Model(&SaleModel{}).
			Where("id = ?", model.ID).
			Update("actif", false).Error; err != nil {
			return err
		}
		return appendAudit(tx, actor, domain.ModuleVentes, domain.ActionSupprimer,
			model.ID, model.Reference, saleFromModel(model), nil)
	})
}

func saleModelFromDomain(sale domain.Sale) SaleModel {
	return SaleModel{
		ID:              sale.ID,
		TenantID:        sale.TenantID,
		Reference:       sale.Reference,
		ClientID:        stringPtrIfNotEmpty(sale.ClientID),
		EstablishmentID: sale.EstablishmentID,
		Total:           sale.Total,
		Actif:           sale.Actif,
		CreatedAt:       sale.CreatedAt,
		UpdatedAt:       sale.UpdatedAt,
	}
}

func saleLineModelFromDomain(line domain.SaleLine) SaleLineModel {
	return SaleLineModel{
		ID:           line.ID,
		SaleID:       line.SaleID,
		ProductID:    line.ProductID,
		Quantite:     line.Quantite,
		PrixUnitaire: line.PrixUnitaire,
	}
}

func saleFromModel(model SaleModel) domain.Sale {
	return domain.Sale{
		ID:              model.ID,
		TenantID:        model.TenantID,
		Reference:       model.Reference,
		ClientID:        stringValue(model.ClientID),
		EstablishmentID: model.EstablishmentID,
		Total:           model.Total,
		Actif:           model.Actif,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}
