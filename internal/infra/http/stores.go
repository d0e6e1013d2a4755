package http

import (
	"context"

	"officine/internal/domain"
)

// SessionIssuer mints the opaque credential handed back on login.
type SessionIssuer interface {
	Issue(subjectID string) (string, error)
}

// The store interfaces below are the handler-facing slices of the db
// repositories. Tests swap in map-backed fakes.

type CategoryStore interface {
	Create(ctx context.Context, actor domain.ActorContext, category domain.Category) (*domain.Category, error)
	GetByID(ctx context.Context, actor domain.ActorContext, id string) (*domain.Category, error)
	List(ctx context.Context, actor domain.ActorContext) ([]domain.Category, error)
	Update(ctx context.Context, actor domain.ActorContext, category domain.Category) (*domain.Category, error)
	SoftDelete(ctx context.Context, actor domain.ActorContext, id string) error
}

type ProductStore interface {
	Create(ctx context.Context, actor domain.ActorContext, product domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, actor domain.ActorContext, id string) (*domain.Product, error)
	List(ctx context.Context, actor domain.ActorContext, search string) ([]domain.Product, error)
	Update(ctx context.Context, actor domain.ActorContext, product domain.Product) (*domain.Product, error)
	SoftDelete(ctx context.Context, actor domain.ActorContext, id string) error
}

type StockStore interface {
	Create(ctx context.Context, actor domain.ActorContext, stock domain.Stock) (*domain.Stock, error)
	GetByID(ctx context.Context, actor domain.ActorContext, id string) (*domain.Stock, error)
	List(ctx context.Context, actor domain.ActorContext, establishmentID string) ([]domain.Stock, error)
	Adjust(ctx context.Context, actor domain.ActorContext, id string, delta int64) (*domain.Stock, error)
	UpdateThreshold(ctx context.Context, actor domain.ActorContext, id string, seuil int64) (*domain.Stock, error)
	SoftDelete(ctx context.Context, actor domain.ActorContext, id string) error
}

type EstablishmentStore interface {
	Create(ctx context.Context, actor domain.ActorContext, establishment domain.Establishment) (*domain.Establishment, error)
	GetByID(ctx context.Context, actor domain.ActorContext, id string) (*domain.Establishment, error)
	List(ctx context.Context, actor domain.ActorContext) ([]domain.Establishment, error)
	Update(ctx context.Context, actor domain.ActorContext, establishment domain.Establishment) (*domain.Establishment, error)
	SoftDelete(ctx context.Context, actor domain.ActorContext, id string) error
}

type ClientStore interface {
	Create(ctx context.Context, actor domain.ActorContext, client domain.Client) (*domain.Client, error)
	GetByID(ctx context.Context, actor domain.ActorContext, id string) (*domain.Client, error)
	List(ctx context.Context, actor domain.ActorContext, search string) ([]domain.Client, error)
	Update(ctx context.Context, actor domain.ActorContext, client domain.Client) (*domain.Client, error)
	SoftDelete(ctx context.Context, actor domain.ActorContext, id string) error
}

type SupplierStore interface {
	Create(ctx context.Context, actor domain.ActorContext, supplier domain.Supplier) (*domain.Supplier, error)
	GetByID(ctx context.Context, actor domain.ActorContext, id string) (*domain.Supplier, error)
	List(ctx context.Context, actor domain.ActorContext, search string) ([]domain.Supplier, error)
	Update(ctx context.Context, actor domain.ActorContext, supplier domain.Supplier) (*domain.Supplier, error)
	SoftDelete(ctx context.Context, actor domain.ActorContext, id string) error
}

type OrderStore interface {
	Create(ctx context.Context, actor domain.ActorContext, order domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, actor domain.ActorContext, id string) (*domain.Order, error)
	List(ctx context.Context, actor domain.ActorContext, statut string) ([]domain.Order, error)
	Transition(ctx context.Context, actor domain.ActorContext, id string, next domain.OrderStatus) (*domain.Order, error)
	SoftDelete(ctx context.Context, actor domain.ActorContext, id string) error
}

type SaleStore interface {
	Create(ctx context.Context, actor domain.ActorContext, sale domain.Sale) (*domain.Sale, error)
	GetByID(ctx context.Context, actor domain.ActorContext, id string) (*domain.Sale, error)
	List(ctx context.Context, actor domain.ActorContext) ([]domain.Sale, error)
	SoftDelete(ctx context.Context, actor domain.ActorContext, id string) error
}

type CreditNoteStore interface {
	Create(ctx context.Context, actor domain.ActorContext, note domain.CreditNote) (*domain.CreditNote, error)
	GetByID(ctx context.Context, actor domain.ActorContext, id string) (*domain.CreditNote, error)
	List(ctx context.Context, actor domain.ActorContext, statut string) ([]domain.CreditNote, error)
	Transition(ctx context.Context, actor domain.ActorContext, id string, next domain.CreditNoteStatus) (*domain.CreditNote, error)
	SoftDelete(ctx context.Context, actor domain.ActorContext, id string) error
}

type TransferStore interface {
	Create(ctx context.Context, actor domain.ActorContext, transfer domain.Transfer) (*domain.Transfer, error)
	GetByID(ctx context.Context, actor domain.ActorContext, id string) (*domain.Transfer, error)
	List(ctx context.Context, actor domain.ActorContext) ([]domain.Transfer, error)
	Transition(ctx context.Context, actor domain.ActorContext, id string, next domain.TransferStatus) (*domain.Transfer, error)
}

type AuditStore interface {
	List(ctx context.Context, actor domain.ActorContext, module string, limit int) ([]domain.AuditEntry, error)
}

type NotificationStore interface {
	List(ctx context.Context, actor domain.ActorContext, unreadOnly bool) ([]domain.Notification, error)
	MarkRead(ctx context.Context, actor domain.ActorContext, id string) error
}
