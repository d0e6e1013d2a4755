package db

import (
	"time"

	"gorm.io/gorm"
)

type AccountModel struct {
	SubjectID string `gorm:"type:uuid;primaryKey"`
	Email     string `gorm:"uniqueIndex;not null"`
	Nom       string
	Prenom    string
	IsOwner   bool    `gorm:"not null;default:false"`
	TenantID  *string `gorm:"type:uuid;index"`
	RoleID    *string `gorm:"type:uuid;index"`
	Actif     bool    `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type RoleModel struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	TenantID  string `gorm:"type:uuid;index;not null"`
	Nom       string `gorm:"not null"`
	Actif     bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PermissionModel struct {
	ID     string `gorm:"type:uuid;primaryKey"`
	RoleID string `gorm:"type:uuid;index:idx_perm_role_module_action,unique,priority:1;not null"`
	Module string `gorm:"index:idx_perm_role_module_action,unique,priority:2;not null"`
	Action string `gorm:"index:idx_perm_role_module_action,unique,priority:3;not null"`
}

type CategoryModel struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	TenantID  string `gorm:"type:uuid;index:idx_category_tenant_nom,unique,priority:1;not null"`
	Nom       string `gorm:"index:idx_category_tenant_nom,unique,priority:2;not null"`
	Actif     bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ProductModel struct {
	ID             string `gorm:"type:uuid;primaryKey"`
	TenantID       string `gorm:"type:uuid;index;not null"`
	CategoryID     *string `gorm:"type:uuid;index"`
	Nom            string  `gorm:"index;not null"`
	CodeBarres     string  `gorm:"index"`
	Description    string
	PrixAchat      float64 `gorm:"not null"`
	PrixVente      float64 `gorm:"not null"`
	DatePeremption *time.Time
	Actif          bool `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type StockModel struct {
	ID              string `gorm:"type:uuid;primaryKey"`
	TenantID        string `gorm:"type:uuid;index;not null"`
	ProductID       string `gorm:"type:uuid;index:idx_stock_product_estab,unique,priority:1;not null"`
	EstablishmentID string `gorm:"type:uuid;index:idx_stock_product_estab,unique,priority:2;not null"`
	Quantite        int64  `gorm:"not null;default:0"`
	SeuilAlerte     int64  `gorm:"not null;default:0"`
	Actif           bool   `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type EstablishmentModel struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	TenantID  string `gorm:"type:uuid;index;not null"`
	Nom       string `gorm:"not null"`
	Adresse   string
	Telephone string
	Actif     bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ClientModel struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	TenantID  string `gorm:"type:uuid;index:idx_client_tenant_nom,priority:1;not null"`
	Nom       string `gorm:"index:idx_client_tenant_nom,priority:2;not null"`
	Prenom    string
	Telephone string
	Email     string
	Adresse   string
	Credit    float64 `gorm:"not null;default:0"`
	Actif     bool    `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type SupplierModel struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	TenantID  string `gorm:"type:uuid;index;not null"`
	Nom       string `gorm:"index;not null"`
	Contact   string
	Telephone string
	Email     string
	Adresse   string
	Actif     bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderModel struct {
	ID              string  `gorm:"type:uuid;primaryKey"`
	TenantID        string  `gorm:"type:uuid;index;not null"`
	Reference       string  `gorm:"index;not null"`
	SupplierID      *string `gorm:"type:uuid;index"`
	EstablishmentID string  `gorm:"type:uuid;index;not null"`
	Statut          string  `gorm:"index;not null"`
	Actif           bool    `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type OrderLineModel struct {
	ID           string  `gorm:"type:uuid;primaryKey"`
	OrderID      string  `gorm:"type:uuid;index;not null"`
	ProductID    string  `gorm:"type:uuid;index;not null"`
	Quantite     int64   `gorm:"not null"`
	PrixUnitaire float64 `gorm:"not null"`
}

type SaleModel struct {
	ID              string  `gorm:"type:uuid;primaryKey"`
	TenantID        string  `gorm:"type:uuid;index;not null"`
	Reference       string  `gorm:"index;not null"`
	ClientID        *string `gorm:"type:uuid;index"`
	EstablishmentID string  `gorm:"type:uuid;index;not null"`
	Total           float64 `gorm:"not null"`
	Actif           bool    `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type SaleLineModel struct {
	ID           string  `gorm:"type:uuid;primaryKey"`
	SaleID       string  `gorm:"type:uuid;index;not null"`
	ProductID    string  `gorm:"type:uuid;index;not null"`
	Quantite     int64   `gorm:"not null"`
	PrixUnitaire float64 `gorm:"not null"`
}

type CreditNoteModel struct {
	ID        string  `gorm:"type:uuid;primaryKey"`
	TenantID  string  `gorm:"type:uuid;index;not null"`
	Reference string  `gorm:"index;not null"`
	ClientID  *string `gorm:"type:uuid;index"`
	Montant   float64 `gorm:"not null"`
	Motif     string
	Statut    string `gorm:"index;not null"`
	Actif     bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type TransferModel struct {
	ID                string `gorm:"type:uuid;primaryKey"`
	TenantID          string `gorm:"type:uuid;index;not null"`
	Reference         string `gorm:"index;not null"`
	ProductID         string `gorm:"type:uuid;index;not null"`
	FromEstablishment string `gorm:"type:uuid;not null"`
	ToEstablishment   string `gorm:"type:uuid;not null"`
	Quantite          int64  `gorm:"not null"`
	Statut            string `gorm:"index;not null"`
	Actif             bool   `gorm:"not null;default:true"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type AuditEntryModel struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	TenantID   string `gorm:"type:uuid;index;not null"`
	Module     string `gorm:"index;not null"`
	Action     string `gorm:"not null"`
	EntityID   string `gorm:"index"`
	EntityName string
	Before     []byte `gorm:"type:jsonb"`
	After      []byte `gorm:"type:jsonb"`
	ActorID    string `gorm:"type:uuid;index;not null"`
	ActorName  string
	CreatedAt  time.Time `gorm:"index;not null"`
}

type NotificationModel struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	TenantID  string `gorm:"type:uuid;index;not null"`
	Kind      string `gorm:"index;not null"`
	SubjectID string `gorm:"type:uuid;index;not null"`
	Message   string `gorm:"not null"`
	Lu        bool   `gorm:"not null;default:false"`
	Actif     bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
}

// Migrate creates or updates the schema for every model. Called at store
// init; gorm's AutoMigrate is additive and never drops columns.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&AccountModel{},
		&RoleModel{},
		&PermissionModel{},
		&CategoryModel{},
		&ProductModel{},
		&StockModel{},
		&EstablishmentModel{},
		&ClientModel{},
		&SupplierModel{},
		&OrderModel{},
		&OrderLineModel{},
		&SaleModel{},
		&SaleLineModel{},
		&CreditNoteModel{},
		&TransferModel{},
		&AuditEntryModel{},
		&NotificationModel{},
	)
}
