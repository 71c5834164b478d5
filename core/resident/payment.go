package resident

import (
	"encoding/json"
	"strings"
)

type PaymentStatus string

const (
	PaymentPaid   PaymentStatus = "paid"
	PaymentExempt PaymentStatus = "exempt"
)

var paymentStatusAliases = map[string]PaymentStatus{
	"paid":     PaymentPaid,
	"payé":     PaymentPaid,
	"paye":     PaymentPaid,
	"exempt":   PaymentExempt,
	"dispensé": PaymentExempt,
	"dispense": PaymentExempt,
}

// ParsePaymentStatus normalizes a payment status, accepting the french labels used by the front end.
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	st, ok := paymentStatusAliases[strings.ToLower(strings.TrimSpace(s))]
	return st, ok
}

func (ps *PaymentStatus) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if st, ok := ParsePaymentStatus(s); ok {
		*ps = st
	} else {
		*ps = PaymentStatus(strings.TrimSpace(s)) // rejected by validation
	}
	return nil
}

// Lodging is the per-term ledger of internal residents (meals & lodging).
type Lodging struct {
	Enabled    bool          `json:"enabled"`
	Status     PaymentStatus `json:"status" validate:"omitempty,oneof=paid exempt"`
	Term1Price float64       `json:"term1Price" validate:"min=0"`
	Term2Price float64       `json:"term2Price" validate:"min=0"`
	Term3Price float64       `json:"term3Price" validate:"min=0"`
}

// Terms returns the price of each of the 3 terms, in order.
func (l Lodging) Terms() [3]float64 {
	return [3]float64{l.Term1Price, l.Term2Price, l.Term3Price}
}

// Amount is the paid amount: the sum of the terms when enabled and paid, 0 otherwise.
func (l Lodging) Amount() float64 {
	if !l.Enabled || l.Status != PaymentPaid {
		return 0
	}
	return l.Term1Price + l.Term2Price + l.Term3Price
}

// Registration is the annual ledger of external residents.
type Registration struct {
	Enabled     bool          `json:"enabled"`
	Status      PaymentStatus `json:"status" validate:"omitempty,oneof=paid exempt"`
	AnnualPrice float64       `json:"annualPrice" validate:"min=0"`
}

func (r Registration) Amount() float64 {
	if !r.Enabled || r.Status != PaymentPaid {
		return 0
	}
	return r.AnnualPrice
}

type Payment struct {
	Lodging      Lodging      `json:"lodging"`
	Registration Registration `json:"registration"`
}

// Total selects the ledger by resident type: lodging for internal residents, registration for external ones.
func (p Payment) Total(t Type) float64 {
	if t == TypeExternal {
		return p.Registration.Amount()
	}
	return p.Lodging.Amount()
}

// normalize maps the status aliases to their canonical value and defaults missing statuses to paid.
// Unknown statuses are kept as is for validation to reject.
func (p *Payment) normalize() {
	p.Lodging.Status = p.Lodging.Status.normalized()
	p.Registration.Status = p.Registration.Status.normalized()
}

func (ps PaymentStatus) normalized() PaymentStatus {
	if strings.TrimSpace(string(ps)) == "" {
		return PaymentPaid
	}
	if st, ok := ParsePaymentStatus(string(ps)); ok {
		return st
	}
	return ps
}
