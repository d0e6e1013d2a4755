package domain

import "time"

// Account is the local record behind an identity-provider subject. Owners are
// tenants: their subject id doubles as the tenant id. Employees are linked to
// exactly one tenant through TenantID.
type Account struct {
	SubjectID string
	Email     string
	Nom       string
	Prenom    string
	IsOwner   bool

	// Employee linkage. Empty for owners.
	TenantID string
	RoleID   string

	Actif     bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
