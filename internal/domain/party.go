package domain

import "time"

type Client struct {
	ID        string
	TenantID  string
	Nom       string
	Prenom    string
	Telephone string
	Email     string
	Adresse   string
	// Running credit from validated credit notes. Adjusted only through
	// atomic counter updates inside credit-note transitions.
	Credit    float64
	Actif     bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Supplier struct {
	ID        string
	TenantID  string
	Nom       string
	Contact   string
	Telephone string
	Email     string
	Adresse   string
	Actif     bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
