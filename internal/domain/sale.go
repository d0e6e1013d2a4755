package domain

import "time"

type Sale struct {
	ID       string
	TenantID string
	Reference string
	// Optional; anonymous counter sales have no client.
	ClientID        string
	EstablishmentID string
	Total           float64
	Lines           []SaleLine
	Actif           bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type SaleLine struct {
	ID           string
	SaleID       string
	ProductID    string
	Quantite     int64
	PrixUnitaire float64
}
