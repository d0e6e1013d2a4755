package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"officine/internal/domain"

	"go.uber.org/zap"
)

// EmployeeService is owner-only management of the tenant's staff accounts.
type EmployeeService struct {
	Accounts AccountRepository
	Identity domain.IdentityProvider
	Logger   *zap.Logger
}

func NewEmployeeService(accounts AccountRepository, identity domain.IdentityProvider, logger *zap.Logger) *EmployeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{Accounts: accounts, Identity: identity, Logger: logger}
}

// Create provisions the credential account at the identity provider and
// stores the local row under the provider-issued subject id, so the new
// employee's future logins resolve to this tenant. A provisioning failure
// aborts the whole creation. If the local write fails afterwards, the
// orphaned provider account is best-effort removed.
func (s *EmployeeService) Create(ctx context.Context, actor domain.ActorContext, employee domain.Account) (*domain.Account, error) {
	if err := RequireOwner(actor); err != nil {
		return nil, err
	}
	if employee.Email == "" || employee.Nom == "" {
		return nil, fmt.Errorf("%w: email et nom sont requis", domain.ErrValidation)
	}
	if s.Identity == nil {
		return nil, fmt.Errorf("%w: fournisseur d'identité indisponible", domain.ErrValidation)
	}
	displayName := strings.TrimSpace(employee.Prenom + " " + employee.Nom)
	subjectID, err := s.Identity.CreateAccount(ctx, employee.Email, displayName)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	employee.SubjectID = subjectID
	employee.IsOwner = false
	employee.TenantID = actor.TenantID
	employee.Actif = true
	employee.CreatedAt = now
	employee.UpdatedAt = now
	if err := s.Accounts.Create(ctx, employee); err != nil {
		if cleanupErr := s.Identity.DeleteAccount(ctx, subjectID); cleanupErr != nil {
			s.Logger.Warn("orphaned identity account cleanup failed",
				zap.String("subject_id", subjectID), zap.Error(cleanupErr))
		}
		return nil, err
	}
	return &employee, nil
}

func (s *EmployeeService) List(ctx context.Context, actor domain.ActorContext) ([]domain.Account, error) {
	if err := RequireOwner(actor); err != nil {
		return nil, err
	}
	return s.Accounts.ListEmployees(ctx, actor)
}

func (s *EmployeeService) Get(ctx context.Context, actor domain.ActorContext, subjectID string) (*domain.Account, error) {
	if err := RequireOwner(actor); err != nil {
		return nil, err
	}
	return s.Accounts.GetEmployee(ctx, actor, subjectID)
}

// AssignRole sets or clears an employee's role, then forces the employee to
// sign back in so the permission change takes effect eagerly rather than
// waiting out the cache window.
func (s *EmployeeService) AssignRole(ctx context.Context, actor domain.ActorContext, subjectID, roleID string) error {
	if err := RequireOwner(actor); err != nil {
		return err
	}
	if err := s.Accounts.AssignRole(ctx, actor, subjectID, roleID); err != nil {
		return err
	}
	if s.Identity != nil {
		if err := s.Identity.ForceSignOut(ctx, subjectID); err != nil {
			s.Logger.Warn("forced sign-out after role change failed",
				zap.String("subject_id", subjectID), zap.Error(err))
		}
	}
	return nil
}

// Delete soft-deletes the employee locally and best-effort removes the
// identity-provider account. The local row is the source of truth; provider
// failures are logged and swallowed.
func (s *EmployeeService) Delete(ctx context.Context, actor domain.ActorContext, subjectID string) error {
	if err := RequireOwner(actor); err != nil {
		return err
	}
	if err := s.Accounts.SoftDeleteEmployee(ctx, actor, subjectID); err != nil {
		return err
	}
	if s.Identity != nil {
		if err := s.Identity.DeleteAccount(ctx, subjectID); err != nil {
			s.Logger.Warn("identity provider account deletion failed",
				zap.String("subject_id", subjectID), zap.Error(err))
		}
	}
	return nil
}
