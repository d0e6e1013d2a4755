package db

import (
	"context"
	"time"

	"officine/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateIfAbsent inserts the notification unless an unread one of the same
// kind already exists for the same subject, which keeps the periodic sweep
// idempotent.
func (r *NotificationRepository) CreateIfAbsent(ctx context.Context, notification domain.Notification) (bool, error) {
	if r.db == nil {
		return false, errDBUnavailable
	}
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&NotificationModel{}).
			Where("tenant_id = ? AND kind = ? AND subject_id = ? AND lu = FALSE AND actif = TRUE",
				notification.TenantID, notification.Kind, notification.SubjectID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		model := NotificationModel{
			ID:        uuid.NewString(),
			TenantID:  notification.TenantID,
			Kind:      string(notification.Kind),
			SubjectID: notification.SubjectID,
			Message:   notification.Message,
			Actif:     true,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}

func (r *NotificationRepository) List(ctx context.Context, actor domain.ActorContext, unreadOnly bool) ([]domain.Notification, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	q := r.db.WithContext(ctx).
		Where("tenant_id = ? AND actif = TRUE", actor.TenantID)
	if unreadOnly {
		q = q.Where("lu = FALSE")
	}
	var models []NotificationModel
	if err := q.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Notification, 0, len(models))
	for _, model := range models {
		out = append(out, domain.Notification{
			ID:        model.ID,
			TenantID:  model.TenantID,
			Kind:      domain.NotificationKind(model.Kind),
			SubjectID: model.SubjectID,
			Message:   model.Message,
			Lu:        model.Lu,
			Actif:     model.Actif,
			CreatedAt: model.CreatedAt,
		})
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, actor domain.ActorContext, id string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).Model(&NotificationModel{}).
		Where("id = ? AND tenant_id = ? AND actif = TRUE", id, actor.TenantID).
		Update("lu", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// TenantIDs lists every owner subject id, which is the tenant universe the
// notification sweep iterates.
func (r *NotificationRepository) TenantIDs(ctx context.Context) ([]string, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var ids []string
	err := r.db.WithContext(ctx).Model(&AccountModel{}).
		Where("is_owner = TRUE AND actif = TRUE").
		Pluck("subject_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
