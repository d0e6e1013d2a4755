package db

import (
	"context"

	"officine/internal/domain"

	"gorm.io/gorm"
)

// AuditRepository only reads. Entries are written by the mutating
// repositories inside their own transactions (see appendAudit) and are never
// updated or deleted outside full tenant erasure.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) List(ctx context.Context, actor domain.ActorContext, module string, limit int) ([]domain.AuditEntry, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := r.db.WithContext(ctx).
		Where("tenant_id = ?", actor.TenantID)
	if module != "" {
		q = q.Where("module = ?", module)
	}
	var models []AuditEntryModel
	if err := q.Order("created_at DESC").Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.AuditEntry, 0, len(models))
	for _, model := range models {
		out = append(out, domain.AuditEntry{
			ID:         model.ID,
			TenantID:   model.TenantID,
			Module:     domain.Module(model.Module),
			Action:     domain.Action(model.Action),
			EntityID:   model.EntityID,
			EntityName: model.EntityName,
			Before:     model.Before,
			After:      model.After,
			ActorID:    model.ActorID,
			ActorName:  model.ActorName,
			CreatedAt:  model.CreatedAt,
		})
	}
	return out, nil
}
