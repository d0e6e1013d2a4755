package usecase

import (
	"context"
	"errors"
	"testing"

	"officine/internal/domain"
)

type fakeAccounts struct {
	accounts  map[string]domain.Account
	createErr error
}

func (f *fakeAccounts) Create(_ context.Context, account domain.Account) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.accounts == nil {
		f.accounts = map[string]domain.Account{}
	}
	f.accounts[account.SubjectID] = account
	return nil
}

func (f *fakeAccounts) GetBySubject(_ context.Context, subjectID string) (*domain.Account, error) {
	account, ok := f.accounts[subjectID]
	if !ok || !account.Actif {
		return nil, domain.ErrNotFound
	}
	return &account, nil
}

func (f *fakeAccounts) ListEmployees(_ context.Context, actor domain.ActorContext) ([]domain.Account, error) {
	var out []domain.Account
	for _, account := range f.accounts {
		if !account.IsOwner && account.TenantID == actor.TenantID && account.Actif {
			out = append(out, account)
		}
	}
	return out, nil
}

func (f *fakeAccounts) GetEmployee(_ context.Context, actor domain.ActorContext, subjectID string) (*domain.Account, error) {
	account, ok := f.accounts[subjectID]
	if !ok || account.IsOwner || account.TenantID != actor.TenantID || !account.Actif {
		return nil, domain.ErrNotFound
	}
	return &account, nil
}

func (f *fakeAccounts) AssignRole(_ context.Context, actor domain.ActorContext, subjectID, roleID string) error {
	account, ok := f.accounts[subjectID]
	if !ok || account.TenantID != actor.TenantID {
		return domain.ErrNotFound
	}
	account.RoleID = roleID
	f.accounts[subjectID] = account
	return nil
}

func (f *fakeAccounts) SoftDeleteEmployee(_ context.Context, actor domain.ActorContext, subjectID string) error {
	account, ok := f.accounts[subjectID]
	if !ok || account.TenantID != actor.TenantID {
		return domain.ErrNotFound
	}
	account.Actif = false
	account.RoleID = ""
	f.accounts[subjectID] = account
	return nil
}

type fakeRoles struct {
	roles map[string]domain.Role
}

func (f *fakeRoles) Create(_ context.Context, actor domain.ActorContext, role domain.Role) (*domain.Role, error) {
	if f.roles == nil {
		f.roles = map[string]domain.Role{}
	}
	role.TenantID = actor.TenantID
	f.roles[role.ID] = role
	return &role, nil
}

func (f *fakeRoles) GetByID(_ context.Context, actor domain.ActorContext, roleID string) (*domain.Role, error) {
	role, ok := f.roles[roleID]
	if !ok || role.TenantID != actor.TenantID {
		return nil, domain.ErrNotFound
	}
	return &role, nil
}

func (f *fakeRoles) List(_ context.Context, actor domain.ActorContext) ([]domain.Role, error) {
	var out []domain.Role
	for _, role := range f.roles {
		if role.TenantID == actor.TenantID {
			out = append(out, role)
		}
	}
	return out, nil
}

func (f *fakeRoles) Update(_ context.Context, actor domain.ActorContext, role domain.Role) (*domain.Role, error) {
	existing, ok := f.roles[role.ID]
	if !ok || existing.TenantID != actor.TenantID {
		return nil, domain.ErrNotFound
	}
	role.TenantID = existing.TenantID
	f.roles[role.ID] = role
	return &role, nil
}

func (f *fakeRoles) SoftDelete(_ context.Context, actor domain.ActorContext, roleID string) error {
	role, ok := f.roles[roleID]
	if !ok || role.TenantID != actor.TenantID {
		return domain.ErrNotFound
	}
	delete(f.roles, roleID)
	return nil
}

func TestResolveOwner(t *testing.T) {
	accounts := &fakeAccounts{accounts: map[string]domain.Account{
		"owner-1": {SubjectID: "owner-1", Nom: "Diallo", Prenom: "Awa", IsOwner: true, Actif: true},
	}}
	r := NewResolver(accounts, &fakeRoles{})

	actor, err := r.Resolve(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !actor.IsOwner() {
		t.Fatal("expected owner kind")
	}
	if actor.TenantID != "owner-1" {
		t.Fatalf("owner tenant should be own subject id, got %s", actor.TenantID)
	}
	if actor.DisplayName != "Awa Diallo" {
		t.Fatalf("unexpected display name: %s", actor.DisplayName)
	}
}

func TestResolveEmployeeWithRole(t *testing.T) {
	roles := &fakeRoles{roles: map[string]domain.Role{
		"role-1": {ID: "role-1", TenantID: "owner-1", Nom: "Caissier"},
	}}
	accounts := &fakeAccounts{accounts: map[string]domain.Account{
		"emp-1": {SubjectID: "emp-1", Nom: "Ba", TenantID: "owner-1", RoleID: "role-1", Actif: true},
	}}
	r := NewResolver(accounts, roles)

	actor, err := r.Resolve(context.Background(), "emp-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if actor.Kind != domain.ActorEmployee {
		t.Fatalf("expected employee kind, got %s", actor.Kind)
	}
	if actor.TenantID != "owner-1" {
		t.Fatalf("unexpected tenant: %s", actor.TenantID)
	}
	if actor.RoleID != "role-1" || actor.RoleName != "Caissier" {
		t.Fatalf("role not resolved: %+v", actor)
	}
}

func TestResolveEmployeeDeletedRole(t *testing.T) {
	accounts := &fakeAccounts{accounts: map[string]domain.Account{
		"emp-1": {SubjectID: "emp-1", TenantID: "owner-1", RoleID: "gone", Actif: true},
	}}
	r := NewResolver(accounts, &fakeRoles{})

	actor, err := r.Resolve(context.Background(), "emp-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if actor.RoleID != "" {
		t.Fatalf("deleted role should clear RoleID, got %s", actor.RoleID)
	}
}

func TestResolveOrphanAccount(t *testing.T) {
	accounts := &fakeAccounts{accounts: map[string]domain.Account{
		"orphan": {SubjectID: "orphan", Actif: true},
	}}
	r := NewResolver(accounts, &fakeRoles{})

	if _, err := r.Resolve(context.Background(), "orphan"); !errors.Is(err, domain.ErrTenantNotFound) {
		t.Fatalf("expected ErrTenantNotFound, got %v", err)
	}
}

func TestResolveUnknownSubject(t *testing.T) {
	r := NewResolver(&fakeAccounts{}, &fakeRoles{})
	if _, err := r.Resolve(context.Background(), "nobody"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := r.Resolve(context.Background(), ""); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for empty subject, got %v", err)
	}
}

func TestRequireOwner(t *testing.T) {
	owner := domain.ActorContext{SubjectID: "o", TenantID: "o", Kind: domain.ActorOwner}
	if err := RequireOwner(owner); err != nil {
		t.Fatalf("owner rejected: %v", err)
	}
	employee := domain.ActorContext{SubjectID: "e", TenantID: "o", Kind: domain.ActorEmployee, RoleID: "r"}
	if err := RequireOwner(employee); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
