package db

import (
	"encoding/json"
	"errors"
	"time"

	"officine/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errDBUnavailable = errors.New("db unavailable")

func translateErr(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrConflict
	default:
		return err
	}
}

func stringPtrIfNotEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func stringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// appendAudit writes the audit row for a mutation inside the caller's
// transaction, so the entry and the write it describes commit together.
func appendAudit(tx *gorm.DB, actor domain.ActorContext, module domain.Module, action domain.Action, entityID, entityName string, before, after any) error {
	entry := AuditEntryModel{
		ID:         uuid.NewString(),
		TenantID:   actor.TenantID,
		Module:     string(module),
		Action:     string(action),
		EntityID:   entityID,
		EntityName: entityName,
		ActorID:    actor.SubjectID,
		ActorName:  actor.DisplayName,
		CreatedAt:  time.Now().UTC(),
	}
	if before != nil {
		raw, err := json.Marshal(before)
		if err != nil {
			return err
		}
		entry.Before = raw
	}
	if after != nil {
		raw, err := json.Marshal(after)
		if err != nil {
			return err
		}
		entry.After = raw
	}
	return tx.Create(&entry).Error
}
