package usecase

import (
	"context"

	"officine/internal/domain"

	"go.uber.org/zap"
)

// EraseService deletes a tenant and everything under it. The local wipe is a
// single transaction; identity-provider cleanup runs after commit and is
// best-effort, since the provider rows are orphans once the local data is
// gone.
type EraseService struct {
	Repo     EraseRepository
	Identity domain.IdentityProvider
	Logger   *zap.Logger
}

func NewEraseService(repo EraseRepository, identity domain.IdentityProvider, logger *zap.Logger) *EraseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EraseService{Repo: repo, Identity: identity, Logger: logger}
}

// EraseTenant removes the acting owner's tenant in full. Employees' provider
// accounts are removed before the owner's so a partial failure never leaves
// the owner deleted while staff can still sign in.
func (s *EraseService) EraseTenant(ctx context.Context, actor domain.ActorContext) error {
	if err := RequireOwner(actor); err != nil {
		return err
	}

	subjects, err := s.Repo.EmployeeSubjects(ctx, actor.TenantID)
	if err != nil {
		return err
	}

	if err := s.Repo.EraseTenant(ctx, actor.TenantID); err != nil {
		return err
	}

	if s.Identity == nil {
		return nil
	}
	for _, subjectID := range subjects {
		if err := s.Identity.DeleteAccount(ctx, subjectID); err != nil {
			s.Logger.Warn("identity cleanup failed for employee",
				zap.String("tenant_id", actor.TenantID),
				zap.String("subject_id", subjectID),
				zap.Error(err))
		}
	}
	if err := s.Identity.DeleteAccount(ctx, actor.SubjectID); err != nil {
		s.Logger.Warn("identity cleanup failed for owner",
			zap.String("tenant_id", actor.TenantID),
			zap.Error(err))
	}
	return nil
}
