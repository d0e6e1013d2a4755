package db

import (
	"context"
	"errors"
	"time"

	"officine/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, actor domain.ActorContext, client domain.Client) (*domain.Client, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	now := time.Now().UTC()
	client.ID = uuid.NewString()
	client.TenantID = actor.TenantID
	client.Credit = 0
	client.Actif = true
	client.CreatedAt = now
	client.UpdatedAt = now

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&ClientModel{}).
			Where("tenant_id = ? AND nom = ? AND prenom = ? AND actif = TRUE", actor.TenantID, client.Nom, client.Prenom).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrConflict
		}
		model := clientModelFromDomain(client)
		if err := tx.Create(&model).Error; err != nil {
			return translateErr(err)
		}
		return appendAudit(tx, actor, domain.ModuleClients, domain.ActionCreer,
			client.ID, client.Nom+" "+client.Prenom, nil, client)
	})
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *ClientRepository) GetByID(ctx context.Context, actor domain.ActorContext, id string) (*domain.Client, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model ClientModel
	err := r.db.WithContext(ctx).
		First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", id, actor.TenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	client := clientFromModel(model)
	return &client, nil
}

func (r *ClientRepository) List(ctx context.Context, actor domain.ActorContext, search string) ([]domain.Client, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	q := r.db.WithContext(ctx).
		Where("tenant_id = ? AND actif = TRUE", actor.TenantID)
	if search != "" {
		pattern := "%" + search + "%"
		q = q.Where("nom ILIKE ? OR prenom ILIKE ? OR telephone ILIKE ?", pattern, pattern, pattern)
	}
	var models []ClientModel
	if err := q.Order("nom ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Client, 0, len(models))
	for _, model := range models {
		out = append(out, clientFromModel(model))
	}
	return out, nil
}

func (r *ClientRepository) Update(ctx context.Context, actor domain.ActorContext, client domain.Client) (*domain.Client, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var updated domain.Client
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model ClientModel
		err := tx.First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", client.ID, actor.TenantID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		before := clientFromModel(model)
		model.Nom = client.Nom
		model.Prenom = client.Prenom
		model.Telephone = client.Telephone
		model.Email = client.Email
		model.Adresse = client.Adresse
		model.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&model).Error; err != nil {
			return translateErr(err)
		}
		updated = clientFromModel(model)
		return appendAudit(tx, actor, domain.ModuleClients, domain.ActionModifier,
			model.ID, model.Nom+" "+model.Prenom, before, updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *ClientRepository) SoftDelete(ctx context.Context, actor domain.ActorContext, id string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model ClientModel
		err := tx.First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", id, actor.TenantID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if err := tx.Model(&ClientModel{}).
			Where("id = ?", model.ID).
			Update("actif", false).Error; err != nil {
			return err
		}
		return appendAudit(tx, actor, domain.ModuleClients, domain.ActionSupprimer,
			model.ID, model.Nom+" "+model.Prenom, clientFromModel(model), nil)
	})
}

// adjustClientCreditTx moves a client's running credit balance with an atomic
// counter update. Only credit-note transitions call it.
func adjustClientCreditTx(tx *gorm.DB, tenantID, clientID string, delta float64) error {
	result := tx.Model(&ClientModel{}).
		Where("id = ? AND tenant_id = ? AND actif = TRUE", clientID, tenantID).
		Updates(map[string]any{
			"credit":     gorm.Expr("credit + ?", delta),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func clientModelFromDomain(client domain.Client) ClientModel {
	return ClientModel{
		ID:        client.ID,
		TenantID:  client.TenantID,
		Nom:       client.Nom,
		Prenom:    client.Prenom,
		Telephone: client.Telephone,
		Email:     client.Email,
		Adresse:   client.Adresse,
		Credit:    client.Credit,
		Actif:     client.Actif,
		CreatedAt: client.CreatedAt,
		UpdatedAt: client.UpdatedAt,
	}
}

func clientFromModel(model ClientModel) domain.Client {
	return domain.Client{
		ID:        model.ID,
		TenantID:  model.TenantID,
		Nom:       model.Nom,
		Prenom:    model.Prenom,
		Telephone: model.Telephone,
		Email:     model.Email,
		Adresse:   model.Adresse,
		Credit:    model.Credit,
		Actif:     model.Actif,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
