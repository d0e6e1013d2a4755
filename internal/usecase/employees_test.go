package usecase

import (
	"context"
	"errors"
	"testing"

	"officine/internal/domain"
)

func TestEmployeeCreateProvisionsAccount(t *testing.T) {
	accounts := &fakeAccounts{}
	idp := &fakeIdentity{}
	svc := NewEmployeeService(accounts, idp, nil)

	created, err := svc.Create(context.Background(), ownerActor("owner-1"), domain.Account{
		Email: "emp@officine.test",
		Nom:   "Ndiaye",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(idp.provisioned) != 1 || idp.provisioned[0] != "emp@officine.test" {
		t.Fatalf("expected one provider provisioning call, got %v", idp.provisioned)
	}
	// The local row must be keyed on the provider-issued subject id, or the
	// employee's logins would never resolve to this tenant.
	if created.SubjectID != "subject-emp@officine.test" {
		t.Fatalf("subject id not provider-issued: %s", created.SubjectID)
	}
	if created.TenantID != "owner-1" {
		t.Fatalf("employee tenant: %s", created.TenantID)
	}
	if created.IsOwner {
		t.Fatal("employee must not be owner")
	}
	if !created.Actif {
		t.Fatal("new employee must be active")
	}
	stored, ok := accounts.accounts[created.SubjectID]
	if !ok {
		t.Fatal("account row not persisted")
	}
	if stored.Email != "emp@officine.test" {
		t.Fatalf("stored email: %s", stored.Email)
	}
}

func TestEmployeeCreateProvisioningFailureAborts(t *testing.T) {
	accounts := &fakeAccounts{}
	idp := &fakeIdentity{createErr: errors.New("provider down")}
	svc := NewEmployeeService(accounts, idp, nil)

	_, err := svc.Create(context.Background(), ownerActor("owner-1"), domain.Account{
		Email: "emp@officine.test",
		Nom:   "Ndiaye",
	})
	if err == nil {
		t.Fatal("expected provisioning failure to surface")
	}
	if len(accounts.accounts) != 0 {
		t.Fatalf("no local row should exist, got %v", accounts.accounts)
	}
}

func TestEmployeeCreateLocalFailureRemovesProviderAccount(t *testing.T) {
	accounts := &fakeAccounts{createErr: errors.New("duplicate email")}
	idp := &fakeIdentity{}
	svc := NewEmployeeService(accounts, idp, nil)

	_, err := svc.Create(context.Background(), ownerActor("owner-1"), domain.Account{
		Email: "emp@officine.test",
		Nom:   "Ndiaye",
	})
	if err == nil {
		t.Fatal("expected local write failure to surface")
	}
	if len(idp.deleted) != 1 || idp.deleted[0] != "subject-emp@officine.test" {
		t.Fatalf("orphaned provider account should be removed, got %v", idp.deleted)
	}
}

func TestEmployeeCreateWithoutProvider(t *testing.T) {
	svc := NewEmployeeService(&fakeAccounts{}, nil, nil)
	_, err := svc.Create(context.Background(), ownerActor("owner-1"), domain.Account{
		Email: "emp@officine.test",
		Nom:   "Ndiaye",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation without a provider, got %v", err)
	}
}

func TestEmployeeCreateValidation(t *testing.T) {
	svc := NewEmployeeService(&fakeAccounts{}, &fakeIdentity{}, nil)
	_, err := svc.Create(context.Background(), ownerActor("owner-1"), domain.Account{Nom: "SansEmail"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestEmployeeOwnerGate(t *testing.T) {
	svc := NewEmployeeService(&fakeAccounts{}, &fakeIdentity{}, nil)
	employee := domain.ActorContext{SubjectID: "e", TenantID: "owner-1", Kind: domain.ActorEmployee}

	if _, err := svc.Create(context.Background(), employee, domain.Account{Email: "a@b", Nom: "X"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("create: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.List(context.Background(), employee); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("list: expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(context.Background(), employee, "emp-1"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("delete: expected ErrForbidden, got %v", err)
	}
}

func TestEmployeeAssignRoleForcesSignOut(t *testing.T) {
	accounts := &fakeAccounts{accounts: map[string]domain.Account{
		"emp-1": {SubjectID: "emp-1", TenantID: "owner-1", Actif: true},
	}}
	idp := &fakeIdentity{}
	svc := NewEmployeeService(accounts, idp, nil)

	if err := svc.AssignRole(context.Background(), ownerActor("owner-1"), "emp-1", "role-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if accounts.accounts["emp-1"].RoleID != "role-1" {
		t.Fatal("role not persisted")
	}
	if len(idp.signedOut) != 1 || idp.signedOut[0] != "emp-1" {
		t.Fatalf("expected forced sign-out of emp-1, got %v", idp.signedOut)
	}
}

func TestEmployeeDeleteBestEffortIdentityCleanup(t *testing.T) {
	accounts := &fakeAccounts{accounts: map[string]domain.Account{
		"emp-1": {SubjectID: "emp-1", TenantID: "owner-1", Actif: true},
	}}
	idp := &fakeIdentity{deleteErr: errors.New("provider down")}
	svc := NewEmployeeService(accounts, idp, nil)

	if err := svc.Delete(context.Background(), ownerActor("owner-1"), "emp-1"); err != nil {
		t.Fatalf("provider failure must be swallowed, got %v", err)
	}
	if accounts.accounts["emp-1"].Actif {
		t.Fatal("employee should be soft-deleted locally")
	}
}

func TestEmployeeDeleteWrongTenant(t *testing.T) {
	accounts := &fakeAccounts{accounts: map[string]domain.Account{
		"emp-1": {SubjectID: "emp-1", TenantID: "owner-2", Actif: true},
	}}
	svc := NewEmployeeService(accounts, &fakeIdentity{}, nil)

	if err := svc.Delete(context.Background(), ownerActor("owner-1"), "emp-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign tenant, got %v", err)
	}
}
