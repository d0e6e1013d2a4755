package domain

import "time"

type TransferStatus string

const (
	TransferEnAttente TransferStatus = "en_attente"
	TransferValidee   TransferStatus = "validee"
	TransferAnnulee   TransferStatus = "annulee"
)

func (s TransferStatus) CanTransitionTo(next TransferStatus) bool {
	if s != TransferEnAttente {
		return false
	}
	return next == TransferValidee || next == TransferAnnulee
}

// Transfer moves product quantity between two establishments of the same
// tenant. Validation moves the stock in one transaction.
type Transfer struct {
	ID                string
	TenantID          string
	Reference         string
	ProductID         string
	FromEstablishment string
	ToEstablishment   string
	Quantite          int64
	Statut            TransferStatus
	Actif             bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
