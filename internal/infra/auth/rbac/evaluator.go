package rbac

import (
	"context"
	"errors"

	"officine/internal/domain"
)

type AuthzError struct {
	Code string
	Err  error
}

func (e *AuthzError) Error() string {
	if e == nil {
		return ""
	}
	return e.Code
}

func (e *AuthzError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// PermissionSource resolves a role's permission set. The db repository
// implements it directly; the redis read-through cache wraps it.
type PermissionSource interface {
	ListByRole(ctx context.Context, tenantID, roleID string) ([]domain.Permission, error)
}

// Evaluator decides allow/deny for one module/action pair.
//
// Owners are allowed unconditionally, without consulting permission rows.
// Employees without a role are denied everything. Employees with a role are
// allowed iff an exact (module, action) row exists in the role's set.
type Evaluator struct {
	source PermissionSource
}

func NewEvaluator(source PermissionSource) *Evaluator {
	return &Evaluator{source: source}
}

func (e *Evaluator) Check(ctx context.Context, actor domain.ActorContext, module domain.Module, action domain.Action) error {
	if actor.SubjectID == "" {
		return domain.ErrUnauthenticated
	}
	if actor.IsOwner() {
		return nil
	}
	if actor.RoleID == "" {
		return &AuthzError{Code: "NO_ROLE", Err: domain.ErrForbidden}
	}
	perms, err := e.source.ListByRole(ctx, actor.TenantID, actor.RoleID)
	if err != nil {
		// A lookup failure must never turn into an allow.
		return err
	}
	for _, p := range perms {
		if p.Module == module && p.Action == action {
			return nil
		}
	}
	return &AuthzError{Code: "MISSING_PERMISSION", Err: domain.ErrForbidden}
}

func IsAuthzError(err error) (*AuthzError, bool) {
	var authz *AuthzError
	if errors.As(err, &authz) {
		return authz, true
	}
	return nil, false
}

var _ domain.PermissionEvaluator = (*Evaluator)(nil)
