package billing

import "github.com/Dan9191/fee-reminder/internal/models"

// AnchorKind tells which event a billing cycle is measured from
type AnchorKind string

const (
	AnchorAdmission   AnchorKind = "admission"
	AnchorLastPayment AnchorKind = "last_payment"
)

// Anchor is the reference date of an account's monthly cycle
type Anchor struct {
	Date Date
	Kind AnchorKind
}

// ResolveAnchor picks the date the account's cycle runs from: the admission date,
// replaced by any installment dated strictly later. Every installment is visited,
// so their order does not matter. On equal dates the candidate seen first is kept.
// ok is false when neither the admission date nor any installment date parses.
func ResolveAnchor(account *models.Account) (anchor Anchor, ok bool) {
	if d, valid := ParseDate(account.AdmissionDate); valid {
		anchor, ok = Anchor{Date: d, Kind: AnchorAdmission}, true
	}
	for _, inst := range account.Installments {
		anchor, ok = foldInstallment(anchor, ok, inst)
	}
	return anchor, ok
}

func foldInstallment(current Anchor, ok bool, inst models.Installment) (Anchor, bool) {
	d, valid := ParseDate(inst.Date)
	if !valid {
		return current, ok
	}
	if ok && !d.After(current.Date) {
		return current, ok
	}
	return Anchor{Date: d, Kind: AnchorLastPayment}, true
}
