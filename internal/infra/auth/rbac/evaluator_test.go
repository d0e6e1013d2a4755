package rbac

import (
	"context"
	"errors"
	"testing"

	"officine/internal/domain"
)

type fakeSource struct {
	perms map[string][]domain.Permission
	err   error
}

func (f *fakeSource) ListByRole(_ context.Context, tenantID, roleID string) ([]domain.Permission, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.perms[tenantID+"/"+roleID], nil
}

func TestCheckOwnerAlwaysAllowed(t *testing.T) {
	// The source must never be consulted for owners.
	e := NewEvaluator(&fakeSource{err: errors.New("source should not be called")})
	actor := domain.ActorContext{SubjectID: "owner-1", TenantID: "owner-1", Kind: domain.ActorOwner}
	for _, m := range domain.GrantableModules {
		if err := e.Check(context.Background(), actor, m, domain.ActionSupprimer); err != nil {
			t.Fatalf("owner denied on %s: %v", m, err)
		}
	}
}

func TestCheckEmployeeWithoutRoleDenied(t *testing.T) {
	e := NewEvaluator(&fakeSource{})
	actor := domain.ActorContext{SubjectID: "emp-1", TenantID: "tenant-1", Kind: domain.ActorEmployee}
	err := e.Check(context.Background(), actor, domain.ModuleClients, domain.ActionVoir)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	authz, ok := IsAuthzError(err)
	if !ok || authz.Code != "NO_ROLE" {
		t.Fatalf("expected NO_ROLE authz error, got %v", err)
	}
}

func TestCheckExactRowMatch(t *testing.T) {
	source := &fakeSource{perms: map[string][]domain.Permission{
		"tenant-1/role-1": {
			{Module: domain.ModuleVentes, Action: domain.ActionCreer},
			{Module: domain.ModuleClients, Action: domain.ActionVoir},
		},
	}}
	e := NewEvaluator(source)
	actor := domain.ActorContext{
		SubjectID: "emp-1", TenantID: "tenant-1",
		Kind: domain.ActorEmployee, RoleID: "role-1",
	}

	if err := e.Check(context.Background(), actor, domain.ModuleVentes, domain.ActionCreer); err != nil {
		t.Fatalf("granted pair denied: %v", err)
	}

	// Same module, different action: no implication between actions.
	err := e.Check(context.Background(), actor, domain.ModuleVentes, domain.ActionSupprimer)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	authz, ok := IsAuthzError(err)
	if !ok || authz.Code != "MISSING_PERMISSION" {
		t.Fatalf("expected MISSING_PERMISSION, got %v", err)
	}
}

func TestCheckSourceErrorIsNotAllow(t *testing.T) {
	wantErr := errors.New("store down")
	e := NewEvaluator(&fakeSource{err: wantErr})
	actor := domain.ActorContext{
		SubjectID: "emp-1", TenantID: "tenant-1",
		Kind: domain.ActorEmployee, RoleID: "role-1",
	}
	err := e.Check(context.Background(), actor, domain.ModuleClients, domain.ActionVoir)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected source error to propagate, got %v", err)
	}
}

func TestCheckUnauthenticatedActor(t *testing.T) {
	e := NewEvaluator(&fakeSource{})
	err := e.Check(context.Background(), domain.ActorContext{}, domain.ModuleClients, domain.ActionVoir)
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
