package usecase

import (
	"context"
	"errors"
	"testing"

	"officine/internal/domain"
)

type fakeErase struct {
	employees []string
	erased    []string
	eraseErr  error
}

func (f *fakeErase) EraseTenant(_ context.Context, tenantID string) error {
	if f.eraseErr != nil {
		return f.eraseErr
	}
	f.erased = append(f.erased, tenantID)
	return nil
}

func (f *fakeErase) EmployeeSubjects(_ context.Context, _ string) ([]string, error) {
	return f.employees, nil
}

type fakeIdentity struct {
	authenticated map[string]string
	provisioned   []string
	deleted       []string
	signedOut     []string
	createErr     error
	deleteErr     error
}

func (f *fakeIdentity) Authenticate(_ context.Context, email, _ string) (string, error) {
	subject, ok := f.authenticated[email]
	if !ok {
		return "", domain.ErrUnauthenticated
	}
	return subject, nil
}

func (f *fakeIdentity) CreateAccount(_ context.Context, email, _ string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.provisioned = append(f.provisioned, email)
	return "subject-" + email, nil
}

func (f *fakeIdentity) DeleteAccount(_ context.Context, subjectID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, subjectID)
	return nil
}

func (f *fakeIdentity) ForceSignOut(_ context.Context, subjectID string) error {
	f.signedOut = append(f.signedOut, subjectID)
	return nil
}

func TestEraseTenantDeletesEmployeesBeforeOwner(t *testing.T) {
	repo := &fakeErase{employees: []string{"emp-1", "emp-2"}}
	idp := &fakeIdentity{}
	svc := NewEraseService(repo, idp, nil)

	if err := svc.EraseTenant(context.Background(), ownerActor("owner-1")); err != nil {
		t.Fatalf("erase: %v", err)
	}
	if len(repo.erased) != 1 || repo.erased[0] != "owner-1" {
		t.Fatalf("tenant not erased: %v", repo.erased)
	}
	want := []string{"emp-1", "emp-2", "owner-1"}
	if len(idp.deleted) != len(want) {
		t.Fatalf("expected %v deletions, got %v", want, idp.deleted)
	}
	for i, subject := range want {
		if idp.deleted[i] != subject {
			t.Fatalf("deletion order: expected %v, got %v", want, idp.deleted)
		}
	}
}

func TestEraseTenantOwnerOnly(t *testing.T) {
	svc := NewEraseService(&fakeErase{}, &fakeIdentity{}, nil)
	employee := domain.ActorContext{SubjectID: "e", TenantID: "owner-1", Kind: domain.ActorEmployee}
	if err := svc.EraseTenant(context.Background(), employee); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestEraseTenantIdentityFailureIsNotFatal(t *testing.T) {
	repo := &fakeErase{employees: []string{"emp-1"}}
	idp := &fakeIdentity{deleteErr: errors.New("provider down")}
	svc := NewEraseService(repo, idp, nil)

	if err := svc.EraseTenant(context.Background(), ownerActor("owner-1")); err != nil {
		t.Fatalf("identity failures must be swallowed, got %v", err)
	}
	if len(repo.erased) != 1 {
		t.Fatal("local erase should have happened")
	}
}

func TestEraseTenantLocalFailureAborts(t *testing.T) {
	repo := &fakeErase{eraseErr: errors.New("db down")}
	idp := &fakeIdentity{}
	svc := NewEraseService(repo, idp, nil)

	if err := svc.EraseTenant(context.Background(), ownerActor("owner-1")); err == nil {
		t.Fatal("expected error when local erase fails")
	}
	if len(idp.deleted) != 0 {
		t.Fatalf("identity deletions must not run after a failed erase: %v", idp.deleted)
	}
}
