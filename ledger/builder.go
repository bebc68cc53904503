package ledger

import (
	"errors"
	"log"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNoStatements is returned by Build when there is nothing to process.
var ErrNoStatements = errors.New("no statements provided for processing")

// RateSource answers conversion rate lookups for repayment dates.
// Loaded reports whether the table ever finished loading; Resolve
// returns the rate for a date and false when it fell back to the
// default because nothing was found within the lookback window.
type RateSource interface {
	Loaded() bool
	Resolve(date time.Time) (decimal.Decimal, bool)
}

// Build flattens every balance change from every statement into one
// date-ordered ledger and stamps each entry with the running totals
// after it was applied. Repayments are split between principal and
// interest in proportion to the outstanding balances at that point in
// time, and converted to the reference currency when rates are
// available. The sort is stable: entries sharing a date keep statement
// order, and within a statement interests come before payments before
// repayments.
func Build(statements []Statement, rates RateSource) ([]Entry, error) {
	if len(statements) == 0 {
		return nil, ErrNoStatements
	}

	total := 0
	for _, stmt := range statements {
		total += stmt.Events()
	}
	entries := make([]Entry, 0, total)
	for _, stmt := range statements {
		entries = append(entries, stmt.Interests...)
		entries = append(entries, stmt.Payments...)
		entries = append(entries, stmt.Repayments...)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})

	interestOutstanding := decimal.Zero
	principalOutstanding := decimal.Zero

	for i := range entries {
		entry := &entries[i]

		switch entry.Kind {
		case KindInterest:
			interestOutstanding = interestOutstanding.Add(entry.Amount)
		case KindPayment:
			principalOutstanding = principalOutstanding.Add(entry.Amount)
		case KindRepayment:
			outstanding := principalOutstanding.Add(interestOutstanding)
			if outstanding.IsPositive() {
				share := principalOutstanding.Div(outstanding)
				principalPortion := entry.Amount.Mul(share)
				interestPortion := entry.Amount.Sub(principalPortion)

				// Not clamped: an overshooting repayment drives the
				// totals negative so the data surfaces as-is.
				principalOutstanding = principalOutstanding.Sub(principalPortion)
				interestOutstanding = interestOutstanding.Sub(interestPortion)

				entry.PrincipalShare = &share
			}

			if rates != nil && rates.Loaded() {
				rate, ok := rates.Resolve(entry.Date)
				if !ok {
					log.Printf("no exchange rate for %s within lookback window, using default",
						entry.Date.Format("2006-01-02"))
				}
				amountEUR := entry.Amount.Div(rate)
				entry.ConversionRate = &rate
				entry.AmountEUR = &amountEUR
			}
		}

		entry.InterestOutstanding = interestOutstanding
		entry.PrincipalOutstanding = principalOutstanding
	}

	return entries, nil
}
