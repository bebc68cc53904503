package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind discriminates the three balance change variants found on a
// student loan statement.
type Kind string

const (
	KindInterest  Kind = "interest"
	KindPayment   Kind = "payment"
	KindRepayment Kind = "repayment"
)

// Entry is a single dated balance change. Extraction fills Kind, Date,
// Amount and (for interest entries) Rate; everything else is stamped by
// Build and stays at its zero value until then.
type Entry struct {
	Kind   Kind            `json:"kind"`
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`

	// Rate is the fractional interest rate, e.g. 0.0595 for 5.95%.
	// Interest entries only.
	Rate decimal.Decimal `json:"rate,omitempty"`

	// Running totals after this entry was applied.
	InterestOutstanding  decimal.Decimal `json:"interest_outstanding"`
	PrincipalOutstanding decimal.Decimal `json:"principal_outstanding"`

	// Repayment entries only. PrincipalShare stays nil when no
	// allocation was possible, the conversion fields stay nil when the
	// rate table never loaded.
	PrincipalShare *decimal.Decimal `json:"principal_share,omitempty"`
	ConversionRate *decimal.Decimal `json:"conversion_rate,omitempty"`
	AmountEUR      *decimal.Decimal `json:"amount_eur,omitempty"`
}

// Portions splits a repayment into its principal and interest parts
// using the share computed during the ledger pass. ok is false for
// non-repayments and for repayments that could not be allocated.
func (e Entry) Portions() (principal, interest decimal.Decimal, ok bool) {
	if e.Kind != KindRepayment || e.PrincipalShare == nil {
		return decimal.Zero, decimal.Zero, false
	}
	principal = e.Amount.Mul(*e.PrincipalShare)
	return principal, e.Amount.Sub(principal), true
}

// PortionsEUR is Portions applied to the converted amount.
func (e Entry) PortionsEUR() (principal, interest decimal.Decimal, ok bool) {
	if e.Kind != KindRepayment || e.PrincipalShare == nil || e.AmountEUR == nil {
		return decimal.Zero, decimal.Zero, false
	}
	principal = e.AmountEUR.Mul(*e.PrincipalShare)
	return principal, e.AmountEUR.Sub(principal), true
}

// Statement holds the facts extracted from one statement document.
// Statements are never mutated after extraction; Build copies their
// entries out into a new ordered ledger.
type Statement struct {
	Source              string          `json:"source"`
	PeriodFrom          time.Time       `json:"period_from"`
	PeriodTo            time.Time       `json:"period_to"`
	OpeningDebitBalance decimal.Decimal `json:"opening_debit_balance"`
	TotalBorrowed       decimal.Decimal `json:"total_borrowed"`
	Interests           []Entry         `json:"interests"`
	Payments            []Entry         `json:"payments"`
	Repayments          []Entry         `json:"repayments"`
}

// Events returns the number of balance changes on the statement.
func (s Statement) Events() int {
	return len(s.Interests) + len(s.Payments) + len(s.Repayments)
}
