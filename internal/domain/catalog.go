package domain

import "time"

type Category struct {
	ID        string
	TenantID  string
	Nom       string
	Actif     bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Product struct {
	ID          string
	TenantID    string
	CategoryID  string
	Nom         string
	CodeBarres  string
	Description string
	PrixAchat   float64
	PrixVente   float64
	// Expiry of the current lot; drives the notification sweep.
	DatePeremption *time.Time
	Actif          bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Stock is the quantity of one product held at one establishment.
// SeuilAlerte is the low-stock notification threshold.
type Stock struct {
	ID              string
	TenantID        string
	ProductID       string
	EstablishmentID string
	Quantite        int64
	SeuilAlerte     int64
	Actif           bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Establishment struct {
	ID        string
	TenantID  string
	Nom       string
	Adresse   string
	Telephone string
	Actif     bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
