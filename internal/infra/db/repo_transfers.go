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

type TransferRepository struct {
	db *gorm.DB
}

func NewTransferRepository(db *gorm.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

func (r *TransferRepository) Create(ctx context.Context, actor domain.ActorContext, transfer domain.Transfer) (*domain.Transfer, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	if transfer.Quantite <= 0 {
		return nil, fmt.Errorf("%w: la quantité doit être positive", domain.ErrValidation)
	}
	if transfer.FromEstablishment == transfer.ToEstablishment {
		return nil, fmt.Errorf("%w: les établissements source et destination doivent différer", domain.ErrValidation)
	}
	now := time.Now().UTC()
	transfer.ID = uuid.NewString()
	transfer.TenantID = actor.TenantID
	transfer.Reference = domain.NewReference(domain.RefPrefixTransfert, now)
	transfer.Statut = domain.TransferEnAttente
	transfer.Actif = true
	transfer.CreatedAt = now
	transfer.UpdatedAt = now

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireTenantRow(tx, &ProductModel{}, transfer.ProductID, actor.TenantID); err != nil {
			return err
		}
		if err := requireTenantRow(tx, &EstablishmentModel{}, transfer.FromEstablishment, actor.TenantID); err != nil {
			return err
		}
		if err := requireTenantRow(tx, &EstablishmentModel{}, transfer.ToEstablishment, actor.TenantID); err != nil {
			return err
		}
		model := transferModelFromDomain(transfer)
		if err := tx.Create(&model).Error; err != nil {
			return translateErr(err)
		}
		return appendAudit(tx, actor, domain.ModuleTransferts, domain.ActionCreer,
			transfer.ID, transfer.Reference, nil, transfer)
	})
	if err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (r *TransferRepository) GetByID(ctx context.Context, actor domain.ActorContext, id string) (*domain.Transfer, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model TransferModel
	err := r.db.WithContext(ctx).
		First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", id, actor.TenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	transfer := transferFromModel(model)
	return &transfer, nil
}

func (r *TransferRepository) List(ctx context.Context, actor domain.ActorContext) ([]domain.Transfer, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []TransferModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND actif = TRUE", actor.TenantID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Transfer, 0, len(models))
	for _, model := range models {
		out = append(out, transferFromModel(model))
	}
	return out, nil
}

// Transition validates or cancels a pending transfer. Validation moves the
// quantity out of the source establishment's stock and into the
// destination's, both sides in the same transaction.
func (r *TransferRepository) Transition(ctx context.Context, actor domain.ActorContext, id string, next domain.TransferStatus) (*domain.Transfer, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var updated domain.Transfer
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model TransferModel
		err := tx.First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", id, actor.TenantID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		current := domain.TransferStatus(model.Statut)
		if !current.CanTransitionTo(next) {
			return fmt.Errorf("%w: transition %s -> %s interdite", domain.ErrValidation, current, next)
		}
		before := transferFromModel(model)
		if next == domain.TransferValidee {
			if err := adjustStockForProductTx(tx, actor.TenantID, model.ProductID, model.FromEstablishment, -model.Quantite); err != nil {
				return err
			}
			if err := adjustStockForProductTx(tx, actor.TenantID, model.ProductID, model.ToEstablishment, model.Quantite); err != nil {
				return err
			}
		}
		model.Statut = string(next)
		model.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&model).Error; err != nil {
			return err
		}
		updated = transferFromModel(model)
		return appendAudit(tx, actor, domain.ModuleTransferts, domain.ActionModifier,
			model.ID, model.Reference, before, updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func transferModelFromDomain(transfer domain.Transfer) TransferModel {
	return TransferModel{
		ID:                transfer.ID,
		TenantID:          transfer.TenantID,
		Reference:         transfer.Reference,
		ProductID:         transfer.ProductID,
		FromEstablishment: transfer.FromEstablishment,
		ToEstablishment:   transfer.ToEstablishment,
		Quantite:          transfer.Quantite,
		Statut:            string(transfer.Statut),
		Actif:             transfer.Actif,
		CreatedAt:         transfer.CreatedAt,
		UpdatedAt:         transfer.UpdatedAt,
	}
}

func transferFromModel(model TransferModel) domain.Transfer {
	return domain.Transfer{
		ID:                model.ID,
		TenantID:          model.TenantID,
		Reference:         model.Reference,
		ProductID:         model.ProductID,
		FromEstablishment: model.FromEstablishment,
		ToEstablishment:   model.ToEstablishment,
		Quantite:          model.Quantite,
		Statut:            domain.TransferStatus(model.Statut),
		Actif:             model.Actif,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}
