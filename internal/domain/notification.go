package domain

import "time"

type NotificationKind string

const (
	NotificationStockBas   NotificationKind = "stock_bas"
	NotificationPeremption NotificationKind = "peremption"
)

type Notification struct {
	ID       string
	TenantID string
	Kind     NotificationKind
	// Entity the notification is about (stock row or product).
	SubjectID string
	Message   string
	Lu        bool
	Actif     bool
	CreatedAt time.Time
}
