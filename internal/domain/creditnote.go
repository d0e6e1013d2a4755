package domain

import "time"

type CreditNoteStatus string

const (
	CreditNoteEnAttente CreditNoteStatus = "en_attente"
	CreditNoteValidee   CreditNoteStatus = "validee"
	CreditNoteUtilisee  CreditNoteStatus = "utilisee"
	CreditNoteAnnulee   CreditNoteStatus = "annulee"
)

// en_attente -> validee -> utilisee, with annulee reachable from the two
// non-terminal states. Validation credits the client's balance, consumption
// debits it by the same amount.
var creditNoteTransitions = map[CreditNoteStatus][]CreditNoteStatus{
	CreditNoteEnAttente: {CreditNoteValidee, CreditNoteAnnulee},
	CreditNoteValidee:   {CreditNoteUtilisee, CreditNoteAnnulee},
}

func (s CreditNoteStatus) CanTransitionTo(next CreditNoteStatus) bool {
	for _, allowed := range creditNoteTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type CreditNote struct {
	ID        string
	TenantID  string
	Reference string
	// Optional client whose credit balance the note feeds.
	ClientID  string
	Montant   float64
	Motif     string
	Statut    CreditNoteStatus
	Actif     bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
