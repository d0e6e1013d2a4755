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

type CreditNoteRepository struct {
	db *gorm.DB
}

func NewCreditNoteRepository(db *gorm.DB) *CreditNoteRepository {
	return &CreditNoteRepository{db: db}
}

func (r *CreditNoteRepository) Create(ctx context.Context, actor domain.ActorContext, note domain.CreditNote) (*domain.CreditNote, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	if note.Montant <= 0 {
		return nil, fmt.Errorf("%w: le montant doit être positif", domain.ErrValidation)
	}
	now := time.Now().UTC()
	note.ID = uuid.NewString()
	note.TenantID = actor.TenantID
	note.Reference = domain.NewReference(domain.RefPrefixAvoir, now)
	note.Statut = domain.CreditNoteEnAttente
	note.Actif = true
	note.CreatedAt = now
	note.UpdatedAt = now

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if note.ClientID != "" {
			if err := requireTenantRow(tx, &ClientModel{}, note.ClientID, actor.TenantID); err != nil {
				return err
			}
		}
		model := creditNoteModelFromDomain(note)
		if err := tx.Create(&model).Error; err != nil {
			return translateErr(err)
		}
		return appendAudit(tx, actor, domain.ModuleAvoirs, domain.ActionCreer,
			note.ID, note.Reference, nil, note)
	})
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *CreditNoteRepository) GetByID(ctx context.Context, actor domain.ActorContext, id string) (*domain.CreditNote, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model CreditNoteModel
	err := r.db.WithContext(ctx).
		First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", id, actor.TenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	note := creditNoteFromModel(model)
	return &note, nil
}

func (r *CreditNoteRepository) List(ctx context.Context, actor domain.ActorContext, statut string) ([]domain.CreditNote, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	q := r.db.WithContext(ctx).
		Where("tenant_id = ? AND actif = TRUE", actor.TenantID)
	if statut != "" {
		q = q.Where("statut = ?", statut)
	}
	var models []CreditNoteModel
	if err := q.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.CreditNote, 0, len(models))
	for _, model := range models {
		out = append(out, creditNoteFromModel(model))
	}
	return out, nil
}

// Transition advances the note through en_attente -> validee -> utilisee
// (annulee from either non-terminal state). Validation credits the linked
// client's balance by the note amount; consumption debits it by the same
// amount. Status write and counter update share the transaction.
func (r *CreditNoteRepository) Transition(ctx context.Context, actor domain.ActorContext, id string, next domain.CreditNoteStatus) (*domain.CreditNote, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var updated domain.CreditNote
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model CreditNoteModel
		err := tx.First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", id, actor.TenantID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		current := domain.CreditNoteStatus(model.Statut)
		if !current.CanTransitionTo(next) {
			return fmt.Errorf("%w: transition %s -> %s interdite", domain.ErrValidation, current, next)
		}
		before := creditNoteFromModel(model)
		if model.ClientID != nil {
			switch next {
			case domain.CreditNoteValidee:
				if err := adjustClientCreditTx(tx, actor.TenantID, *model.ClientID, model.Montant); err != nil {
					return err
				}
			case domain.CreditNoteUtilisee:
				if err := adjustClientCreditTx(tx, actor.TenantID, *model.ClientID, -model.Montant); err != nil {
					return err
				}
			}
		}
		model.Statut = string(next)
		model.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&model).Error; err != nil {
			return err
		}
		updated = creditNoteFromModel(model)
		return appendAudit(tx, actor, domain.ModuleAvoirs, domain.ActionModifier,
			model.ID, model.Reference, before, updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *CreditNoteRepository) SoftDelete(ctx context.Context, actor domain.ActorContext, id string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model CreditNoteModel
		err := tx.First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", id, actor.TenantID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if err := tx.Model(&CreditNoteModel{}).
			Where("id = ?", model.ID).
			Update("actif", false).Error; err != nil {
			return err
		}
		return appendAudit(tx, actor, domain.ModuleAvoirs, domain.ActionSupprimer,
			model.ID, model.Reference, creditNoteFromModel(model), nil)
	})
}

func creditNoteModelFromDomain(note domain.CreditNote) CreditNoteModel {
	return CreditNoteModel{
		ID:        note.ID,
		TenantID:  note.TenantID,
		Reference: note.Reference,
		ClientID:  stringPtrIfNotEmpty(note.ClientID),
		Montant:   note.Montant,
		Motif:     note.Motif,
		Statut:    string(note.Statut),
		Actif:     note.Actif,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}

func creditNoteFromModel(model CreditNoteModel) domain.CreditNote {
	return domain.CreditNote{
		ID:        model.ID,
		TenantID:  model.TenantID,
		Reference: model.Reference,
		ClientID:  stringValue(model.ClientID),
		Montant:   model.Montant,
		Motif:     model.Motif,
		Statut:    domain.CreditNoteStatus(model.Statut),
		Actif:     model.Actif,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
