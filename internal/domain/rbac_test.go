package domain

import "testing"

func TestFilterGrantableDropsReservedModules(t *testing.T) {
	perms := []Permission{
		{Module: ModuleClients, Action: ActionVoir},
		{Module: ModuleEmployes, Action: ActionVoir},
		{Module: ModuleRoles, Action: ActionCreer},
		{Module: ModuleVentes, Action: ActionCreer},
	}
	filtered := FilterGrantable(perms)
	if len(filtered) != 2 {
		t.Fatalf("expected 2 permissions, got %d", len(filtered))
	}
	for _, p := range filtered {
		if IsReservedModule(p.Module) {
			t.Fatalf("reserved module survived filtering: %s", p.Module)
		}
	}
}

func TestFilterGrantableDropsUnknownModulesAndActions(t *testing.T) {
	perms := []Permission{
		{Module: "inconnu", Action: ActionVoir},
		{Module: ModuleStock, Action: "executer"},
		{Module: ModuleStock, Action: ActionModifier},
	}
	filtered := FilterGrantable(perms)
	if len(filtered) != 1 {
		t.Fatalf("expected 1 permission, got %d", len(filtered))
	}
	if filtered[0].Module != ModuleStock || filtered[0].Action != ActionModifier {
		t.Fatalf("unexpected surviving permission: %+v", filtered[0])
	}
}

func TestFilterGrantableDedupesPairs(t *testing.T) {
	// A repeated (module, action) pair must collapse to one grant instead of
	// tripping the unique index at insert time.
	perms := []Permission{
		{Module: ModuleVentes, Action: ActionCreer},
		{Module: ModuleVentes, Action: ActionCreer},
		{Module: ModuleVentes, Action: ActionVoir},
		{Module: ModuleVentes, Action: ActionCreer},
	}
	filtered := FilterGrantable(perms)
	if len(filtered) != 2 {
		t.Fatalf("expected 2 permissions, got %d", len(filtered))
	}
	if filtered[0].Action != ActionCreer || filtered[1].Action != ActionVoir {
		t.Fatalf("unexpected order after dedupe: %+v", filtered)
	}
}

func TestIsReservedModule(t *testing.T) {
	if !IsReservedModule(ModuleEmployes) || !IsReservedModule(ModuleRoles) {
		t.Fatal("employes and roles are reserved")
	}
	for _, m := range GrantableModules {
		if IsReservedModule(m) {
			t.Fatalf("grantable module reported reserved: %s", m)
		}
	}
}
