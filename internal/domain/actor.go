package domain

import "context"

type ActorKind string

const (
	ActorOwner    ActorKind = "owner"
	ActorEmployee ActorKind = "employee"
)

// ActorContext is the request-scoped identity every operation receives.
// TenantID is the only tenant value repositories may trust; client-supplied
// tenant fields are ignored everywhere.
//
// The two kinds carry different fields: an Owner has no role (it is implicitly
// authorized for everything), an Employee has at most one.
type ActorContext struct {
	SubjectID string
	// DisplayName is carried for audit attribution only.
	DisplayName string
	TenantID    string
	Kind        ActorKind

	// Employee only. RoleID empty means the employee has no role and is
	// denied every module/action pair.
	RoleID   string
	RoleName string
}

func (a ActorContext) IsOwner() bool {
	return a.Kind == ActorOwner
}

// SessionVerifier validates an opaque session credential and extracts the
// stable subject identifier it is bound to.
type SessionVerifier interface {
	Verify(token string) (subjectID string, err error)
}

// ActorResolver maps an authenticated subject to its tenant context.
type ActorResolver interface {
	Resolve(ctx context.Context, subjectID string) (ActorContext, error)
}

// PermissionEvaluator decides allow/deny for one module/action pair.
// A nil return means allow. It must be a pure lookup with no side effects.
type PermissionEvaluator interface {
	Check(ctx context.Context, actor ActorContext, module Module, action Action) error
}

// IdentityProvider is the external credential authority. Authenticate backs
// sign-in and CreateAccount backs employee onboarding: the provider issues
// the subject id that the local account row is keyed on, so both must
// succeed for an employee to ever authenticate. The remaining admin
// operations are advisory during erasure and offboarding: failures there are
// logged, not fatal.
type IdentityProvider interface {
	Authenticate(ctx context.Context, email, password string) (subjectID string, err error)
	CreateAccount(ctx context.Context, email, displayName string) (subjectID string, err error)
	DeleteAccount(ctx context.Context, subjectID string) error
	ForceSignOut(ctx context.Context, subjectID string) error
}
