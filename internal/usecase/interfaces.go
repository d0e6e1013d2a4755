package usecase

import (
	"context"
	"time"

	"officine/internal/domain"
)

type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	GetBySubject(ctx context.Context, subjectID string) (*domain.Account, error)
	ListEmployees(ctx context.Context, actor domain.ActorContext) ([]domain.Account, error)
	GetEmployee(ctx context.Context, actor domain.ActorContext, subjectID string) (*domain.Account, error)
	AssignRole(ctx context.Context, actor domain.ActorContext, subjectID, roleID string) error
	SoftDeleteEmployee(ctx context.Context, actor domain.ActorContext, subjectID string) error
}

type RoleRepository interface {
	Create(ctx context.Context, actor domain.ActorContext, role domain.Role) (*domain.Role, error)
	GetByID(ctx context.Context, actor domain.ActorContext, roleID string) (*domain.Role, error)
	List(ctx context.Context, actor domain.ActorContext) ([]domain.Role, error)
	Update(ctx context.Context, actor domain.ActorContext, role domain.Role) (*domain.Role, error)
	SoftDelete(ctx context.Context, actor domain.ActorContext, roleID string) error
}

type StockSweepRepository interface {
	ListBelowThreshold(ctx context.Context, tenantID string) ([]domain.Stock, error)
}

type ProductSweepRepository interface {
	ListExpiringBefore(ctx context.Context, tenantID string, before time.Time) ([]domain.Product, error)
	NamesByID(ctx context.Context, tenantID string, ids []string) (map[string]string, error)
}

type NotificationRepository interface {
	CreateIfAbsent(ctx context.Context, notification domain.Notification) (bool, error)
	TenantIDs(ctx context.Context) ([]string, error)
}

type EraseRepository interface {
	EraseTenant(ctx context.Context, tenantID string) error
	EmployeeSubjects(ctx context.Context, tenantID string) ([]string, error)
}

// PermissionInvalidator drops a role's cached permission set after a role
// mutation. The redis cache implements it; a nil invalidator is a no-op.
type PermissionInvalidator interface {
	Invalidate(ctx context.Context, tenantID, roleID string)
}
