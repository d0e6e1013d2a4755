package usecase

import (
	"context"
	"errors"
	"strings"

	"officine/internal/domain"
)

// Resolver maps an authenticated subject to its tenant context. Owners are
// their own tenant; employees belong to exactly one. An account with neither
// the owner flag nor a tenant linkage is orphaned and denied outright.
type Resolver struct {
	Accounts AccountRepository
	Roles    RoleRepository
}

func NewResolver(accounts AccountRepository, roles RoleRepository) *Resolver {
	return &Resolver{Accounts: accounts, Roles: roles}
}

func (r *Resolver) Resolve(ctx context.Context, subjectID string) (domain.ActorContext, error) {
	if subjectID == "" {
		return domain.ActorContext{}, domain.ErrUnauthenticated
	}
	account, err := r.Accounts.GetBySubject(ctx, subjectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ActorContext{}, domain.ErrUnauthenticated
		}
		return domain.ActorContext{}, err
	}
	displayName := strings.TrimSpace(account.Prenom + " " + account.Nom)

	if account.IsOwner {
		return domain.ActorContext{
			SubjectID:   account.SubjectID,
			DisplayName: displayName,
			TenantID:    account.SubjectID,
			Kind:        domain.ActorOwner,
		}, nil
	}
	if account.TenantID == "" {
		return domain.ActorContext{}, domain.ErrTenantNotFound
	}
	actor := domain.ActorContext{
		SubjectID:   account.SubjectID,
		DisplayName: displayName,
		TenantID:    account.TenantID,
		Kind:        domain.ActorEmployee,
		RoleID:      account.RoleID,
	}
	if account.RoleID != "" {
		role, err := r.Roles.GetByID(ctx, actor, account.RoleID)
		switch {
		case err == nil:
			actor.RoleName = role.Nom
		case errors.Is(err, domain.ErrNotFound):
			// Role was deleted out from under the account; the employee
			// simply has no role until one is reassigned.
			actor.RoleID = ""
		default:
			return domain.ActorContext{}, err
		}
	}
	return actor, nil
}

// RequireOwner gates operations reserved strictly to tenant owners: role and
// employee management, full account erasure.
func RequireOwner(actor domain.ActorContext) error {
	if !actor.IsOwner() {
		return domain.ErrForbidden
	}
	return nil
}

var _ domain.ActorResolver = (*Resolver)(nil)
