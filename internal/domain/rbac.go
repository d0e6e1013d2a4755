package domain

import "time"

type Module string

const (
	ModuleClients        Module = "clients"
	ModuleProduits       Module = "produits"
	ModuleCategories     Module = "categories"
	ModuleStock          Module = "stock"
	ModuleCommandes      Module = "commandes"
	ModuleVentes         Module = "ventes"
	ModuleAvoirs         Module = "avoirs"
	ModuleFournisseurs   Module = "fournisseurs"
	ModuleEtablissements Module = "etablissements"
	ModuleTransferts     Module = "transferts"
	ModuleNotifications  Module = "notifications"

	// Reserved to the tenant owner. Roles can never grant these.
	ModuleEmployes Module = "employes"
	ModuleRoles    Module = "roles"
)

type Action string

const (
	ActionVoir      Action = "voir"
	ActionCreer     Action = "creer"
	ActionModifier  Action = "modifier"
	ActionSupprimer Action = "supprimer"
)

// GrantableModules are the modules a role permission may name.
var GrantableModules = []Module{
	ModuleClients,
	ModuleProduits,
	ModuleCategories,
	ModuleStock,
	ModuleCommandes,
	ModuleVentes,
	ModuleAvoirs,
	ModuleFournisseurs,
	ModuleEtablissements,
	ModuleTransferts,
	ModuleNotifications,
}

var Actions = []Action{ActionVoir, ActionCreer, ActionModifier, ActionSupprimer}

func IsReservedModule(m Module) bool {
	return m == ModuleEmployes || m == ModuleRoles
}

func IsGrantableModule(m Module) bool {
	for _, g := range GrantableModules {
		if g == m {
			return true
		}
	}
	return false
}

func IsValidAction(a Action) bool {
	for _, v := range Actions {
		if v == a {
			return true
		}
	}
	return false
}

// Permission is one (module, action) grant attached to a role.
type Permission struct {
	ID     string
	RoleID string
	Module Module
	Action Action
}

type Role struct {
	ID          string
	TenantID    string
	Nom         string
	Permissions []Permission
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FilterGrantable drops permissions naming reserved or unknown modules,
// invalid actions, and repeated (module, action) pairs. Applied at role-write
// time so a persisted role can never carry a reserved or duplicate grant.
func FilterGrantable(perms []Permission) []Permission {
	type pair struct {
		module Module
		action Action
	}
	seen := make(map[pair]bool, len(perms))
	out := make([]Permission, 0, len(perms))
	for _, p := range perms {
		if !IsGrantableModule(p.Module) {
			continue
		}
		if !IsValidAction(p.Action) {
			continue
		}
		key := pair{p.Module, p.Action}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}
