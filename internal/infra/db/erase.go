package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// eraseNode is one entity table in the tenant erasure graph. Line tables
// without a tenant_id column delete through their parent instead.
type eraseNode struct {
	name   string
	delete func(tx *gorm.DB, tenantID string) error
}

func byTenant(model any) func(tx *gorm.DB, tenantID string) error {
	return func(tx *gorm.DB, tenantID string) error {
		return tx.Where("tenant_id = ?", tenantID).Delete(model).Error
	}
}

var eraseNodes = map[string]eraseNode{
	"order_lines": {name: "order_lines", delete: func(tx *gorm.DB, tenantID string) error {
		return tx.Where("order_id IN (?)",
			tx.Session(&gorm.Session{NewDB: true}).Model(&OrderModel{}).Select("id").Where("tenant_id = ?", tenantID),
		).Delete(&OrderLineModel{}).Error
	}},
	"sale_lines": {name: "sale_lines", delete: func(tx *gorm.DB, tenantID string) error {
		return tx.Where("sale_id IN (?)",
			tx.Session(&gorm.Session{NewDB: true}).Model(&SaleModel{}).Select("id").Where("tenant_id = ?", tenantID),
		).Delete(&SaleLineModel{}).Error
	}},
	"permissions": {name: "permissions", delete: func(tx *gorm.DB, tenantID string) error {
		return tx.Where("role_id IN (?)",
			tx.Session(&gorm.Session{NewDB: true}).Model(&RoleModel{}).Select("id").Where("tenant_id = ?", tenantID),
		).Delete(&PermissionModel{}).Error
	}},
	"notifications":  {name: "notifications", delete: byTenant(&NotificationModel{})},
	"audit_entries":  {name: "audit_entries", delete: byTenant(&AuditEntryModel{})},
	"stocks":         {name: "stocks", delete: byTenant(&StockModel{})},
	"transfers":      {name: "transfers", delete: byTenant(&TransferModel{})},
	"credit_notes":   {name: "credit_notes", delete: byTenant(&CreditNoteModel{})},
	"sales":          {name: "sales", delete: byTenant(&SaleModel{})},
	"orders":         {name: "orders", delete: byTenant(&OrderModel{})},
	"products":       {name: "products", delete: byTenant(&ProductModel{})},
	"categories":     {name: "categories", delete: byTenant(&CategoryModel{})},
	"clients":        {name: "clients", delete: byTenant(&ClientModel{})},
	"suppliers":      {name: "suppliers", delete: byTenant(&SupplierModel{})},
	"establishments": {name: "establishments", delete: byTenant(&EstablishmentModel{})},
	"roles":          {name: "roles", delete: byTenant(&RoleModel{})},
	"accounts": {name: "accounts", delete: func(tx *gorm.DB, tenantID string) error {
		if err := tx.Where("tenant_id = ?", tenantID).Delete(&AccountModel{}).Error; err != nil {
			return err
		}
		return tx.Where("subject_id = ?", tenantID).Delete(&AccountModel{}).Error
	}},
}

// eraseDependents maps an entity to the entities that must be erased before
// it. Adding a new dependent entity is an edge here, not a new ordered
// statement.
var eraseDependents = map[string][]string{
	"orders":         {"order_lines"},
	"sales":          {"sale_lines"},
	"roles":          {"permissions", "accounts"},
	"products":       {"stocks", "order_lines", "sale_lines", "transfers"},
	"categories":     {"products"},
	"clients":        {"sales", "credit_notes"},
	"suppliers":      {"orders"},
	"establishments": {"stocks", "sales", "orders", "transfers"},
	"accounts":       {"audit_entries", "notifications"},
}

// eraseOrder walks the dependency graph depth-first, emitting dependents
// before the entities they hang off. Every node is visited exactly once.
func eraseOrder() []string {
	visited := make(map[string]bool, len(eraseNodes))
	var order []string
	var visit func(name string)
	visit = func(name string) {
		if visited[name] {
			return
		}
		visited[name] = true
		for _, dep := range eraseDependents[name] {
			visit(dep)
		}
		order = append(order, name)
	}
	for name := range eraseNodes {
		visit(name)
	}
	return order
}

type EraseRepository struct {
	db *gorm.DB
}

func NewEraseRepository(db *gorm.DB) *EraseRepository {
	return &EraseRepository{db: db}
}

// EraseTenant removes every row of every entity belonging to the tenant in a
// single all-or-nothing transaction. This is the one operation that bypasses
// soft deletion.
func (r *EraseRepository) EraseTenant(ctx context.Context, tenantID string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	if tenantID == "" {
		return fmt.Errorf("tenant id is required")
	}
	order := eraseOrder()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, name := range order {
			node := eraseNodes[name]
			if err := node.delete(tx, tenantID); err != nil {
				return fmt.Errorf("erase %s: %w", node.name, err)
			}
		}
		return nil
	})
}

// EmployeeSubjects returns the subject ids of the tenant's employees, for
// identity-provider cleanup after the erase transaction commits.
func (r *EraseRepository) EmployeeSubjects(ctx context.Context, tenantID string) ([]string, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var ids []string
	err := r.db.WithContext(ctx).Model(&AccountModel{}).
		Where("tenant_id = ? AND is_owner = FALSE", tenantID).
		Pluck("subject_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
