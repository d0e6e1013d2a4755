package domain

import "time"

type OrderStatus string

const (
	OrderEnAttente OrderStatus = "en_attente"
	OrderValidee   OrderStatus = "validee"
	OrderLivree    OrderStatus = "livree"
	OrderAnnulee   OrderStatus = "annulee"
)

// orderTransitions lists the allowed next states. Backward or skipping
// transitions are rejected.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderEnAttente: {OrderValidee, OrderAnnulee},
	OrderValidee:   {OrderLivree, OrderAnnulee},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Order struct {
	ID         string
	TenantID   string
	Reference  string
	SupplierID string
	// Destination establishment; delivered lines land in its stock.
	EstablishmentID string
	Statut          OrderStatus
	Lines           []OrderLine
	Actif           bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type OrderLine struct {
	ID           string
	OrderID      string
	ProductID    string
	Quantite     int64
	PrixUnitaire float64
}
