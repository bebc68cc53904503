package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

type stubRates struct {
	loaded bool
	rates  map[string]decimal.Decimal
}

func (s stubRates) Loaded() bool {
	return s.loaded
}

func (s stubRates) Resolve(d time.Time) (decimal.Decimal, bool) {
	if rate, ok := s.rates[d.Format("2006-01-02")]; ok {
		return rate, true
	}
	return decimal.NewFromInt(1), false
}

func interest(d time.Time, amount, rate string) Entry {
	return Entry{
		Kind:   KindInterest,
		Date:   d,
		Amount: decimal.RequireFromString(amount),
		Rate:   decimal.RequireFromString(rate),
	}
}

func payment(d time.Time, amount string) Entry {
	return Entry{Kind: KindPayment, Date: d, Amount: decimal.RequireFromString(amount)}
}

func repayment(d time.Time, amount string) Entry {
	return Entry{Kind: KindRepayment, Date: d, Amount: decimal.RequireFromString(amount)}
}

func TestBuild_EmptyInput(t *testing.T) {
	entries, err := Build(nil, nil)
	if !errors.Is(err, ErrNoStatements) {
		t.Fatalf("Expected ErrNoStatements, got %v", err)
	}
	if entries != nil {
		t.Errorf("Expected no partial ledger, got %d entries", len(entries))
	}
}

func TestBuild_ChronologicalOrder(t *testing.T) {
	statements := []Statement{
		{
			Interests:  []Entry{interest(date(2023, 11, 15), "4.95", "0.0595")},
			Repayments: []Entry{repayment(date(2023, 9, 20), "50.00")},
		},
		{
			Payments: []Entry{payment(date(2022, 10, 1), "4625.00")},
		},
	}

	entries, err := Build(statements, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	for i := 0; i < len(entries)-1; i++ {
		if entries[i].Date.After(entries[i+1].Date) {
			t.Errorf("Entries out of order at %d: %v after %v", i, entries[i].Date, entries[i+1].Date)
		}
	}
}

func TestBuild_StableTieBreak(t *testing.T) {
	// Everything on the same date: order must be statement order, and
	// within a statement interests, then payments, then repayments.
	day := date(2023, 9, 1)
	statements := []Statement{
		{
			Interests:  []Entry{interest(day, "1.00", "0.05")},
			Payments:   []Entry{payment(day, "2.00")},
			Repayments: []Entry{repayment(day, "3.00")},
		},
		{
			Interests: []Entry{interest(day, "4.00", "0.05")},
		},
	}

	entries, err := Build(statements, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	wantKinds := []Kind{KindInterest, KindPayment, KindRepayment, KindInterest}
	wantAmounts := []string{"1", "2", "3", "4"}
	for i, entry := range entries {
		if entry.Kind != wantKinds[i] {
			t.Errorf("Entry %d: expected kind %s, got %s", i, wantKinds[i], entry.Kind)
		}
		if entry.Amount.String() != wantAmounts[i] {
			t.Errorf("Entry %d: expected amount %s, got %s", i, wantAmounts[i], entry.Amount)
		}
	}
}

func TestBuild_RunningTotals(t *testing.T) {
	statements := []Statement{{
		Interests: []Entry{interest(date(2023, 9, 15), "4.95", "0.0595")},
		Payments:  []Entry{payment(date(2023, 9, 1), "1000.00")},
	}}

	entries, err := Build(statements, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Payment first (earlier date).
	if !entries[0].PrincipalOutstanding.Equal(decimal.RequireFromString("1000.00")) {
		t.Errorf("Expected principal 1000.00, got %s", entries[0].PrincipalOutstanding)
	}
	if !entries[0].InterestOutstanding.IsZero() {
		t.Errorf("Expected interest 0, got %s", entries[0].InterestOutstanding)
	}
	if !entries[1].InterestOutstanding.Equal(decimal.RequireFromString("4.95")) {
		t.Errorf("Expected interest 4.95, got %s", entries[1].InterestOutstanding)
	}
	if !entries[1].PrincipalOutstanding.Equal(decimal.RequireFromString("1000.00")) {
		t.Errorf("Expected principal unchanged at 1000.00, got %s", entries[1].PrincipalOutstanding)
	}
}

func TestBuild_RepaymentAllocation(t *testing.T) {
	// 3000 principal vs 1000 interest outstanding: share is exactly 0.75.
	statements := []Statement{{
		Interests:  []Entry{interest(date(2023, 1, 10), "1000.00", "0.05")},
		Payments:   []Entry{payment(date(2023, 1, 5), "3000.00")},
		Repayments: []Entry{repayment(date(2023, 2, 1), "400.00")},
	}}

	entries, err := Build(statements, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	rep := entries[2]
	if rep.Kind != KindRepayment {
		t.Fatalf("Expected repayment last, got %s", rep.Kind)
	}
	if rep.PrincipalShare == nil {
		t.Fatal("Expected principal share to be set")
	}
	if !rep.PrincipalShare.Equal(decimal.RequireFromString("0.75")) {
		t.Errorf("Expected share 0.75, got %s", rep.PrincipalShare)
	}

	principal, interestPart, ok := rep.Portions()
	if !ok {
		t.Fatal("Expected portions to be available")
	}
	if !principal.Add(interestPart).Equal(rep.Amount) {
		t.Errorf("Portions do not conserve the amount: %s + %s != %s", principal, interestPart, rep.Amount)
	}
	if !principal.Equal(decimal.RequireFromString("300.00")) {
		t.Errorf("Expected principal portion 300.00, got %s", principal)
	}

	if !rep.PrincipalOutstanding.Equal(decimal.RequireFromString("2700.00")) {
		t.Errorf("Expected principal outstanding 2700.00, got %s", rep.PrincipalOutstanding)
	}
	if !rep.InterestOutstanding.Equal(decimal.RequireFromString("900.00")) {
		t.Errorf("Expected interest outstanding 900.00, got %s", rep.InterestOutstanding)
	}
}

func TestBuild_RepaymentOvershootGoesNegative(t *testing.T) {
	statements := []Statement{{
		Payments:   []Entry{payment(date(2023, 1, 5), "100.00")},
		Repayments: []Entry{repayment(date(2023, 2, 1), "150.00")},
	}}

	entries, err := Build(statements, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	rep := entries[1]
	if !rep.PrincipalOutstanding.Equal(decimal.RequireFromString("-50.00")) {
		t.Errorf("Expected principal outstanding -50.00, got %s", rep.PrincipalOutstanding)
	}
}

func TestBuild_RepaymentAtZeroOutstanding(t *testing.T) {
	statements := []Statement{{
		Repayments: []Entry{repayment(date(2023, 2, 1), "50.00")},
	}}

	entries, err := Build(statements, stubRates{loaded: true})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	rep := entries[0]
	if rep.PrincipalShare != nil {
		t.Errorf("Expected no allocation, got share %s", rep.PrincipalShare)
	}
	if !rep.PrincipalOutstanding.IsZero() || !rep.InterestOutstanding.IsZero() {
		t.Errorf("Expected totals unchanged at zero, got P=%s I=%s", rep.PrincipalOutstanding, rep.InterestOutstanding)
	}
	// Conversion is independent of allocation.
	if rep.ConversionRate == nil {
		t.Error("Expected conversion rate to be stamped")
	}
}

func TestBuild_ConversionWithLoadedRates(t *testing.T) {
	rates := stubRates{
		loaded: true,
		rates: map[string]decimal.Decimal{
			"2023-02-01": decimal.RequireFromString("0.8"),
		},
	}
	statements := []Statement{{
		Payments:   []Entry{payment(date(2023, 1, 5), "1000.00")},
		Repayments: []Entry{repayment(date(2023, 2, 1), "100.00")},
	}}

	entries, err := Build(statements, rates)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	rep := entries[1]
	if rep.ConversionRate == nil || !rep.ConversionRate.Equal(decimal.RequireFromString("0.8")) {
		t.Fatalf("Expected conversion rate 0.8, got %v", rep.ConversionRate)
	}
	if rep.AmountEUR == nil || !rep.AmountEUR.Equal(decimal.RequireFromString("125")) {
		t.Fatalf("Expected 125 EUR (100 / 0.8), got %v", rep.AmountEUR)
	}
}

func TestBuild_NoConversionWhenRatesUnloaded(t *testing.T) {
	statements := []Statement{{
		Payments:   []Entry{payment(date(2023, 1, 5), "1000.00")},
		Repayments: []Entry{repayment(date(2023, 2, 1), "100.00")},
	}}

	entries, err := Build(statements, stubRates{loaded: false})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	rep := entries[1]
	if rep.ConversionRate != nil || rep.AmountEUR != nil {
		t.Error("Expected no conversion fields when the rate table never loaded")
	}
	if rep.PrincipalShare == nil {
		t.Error("Expected allocation to happen regardless of rates")
	}
}

func TestBuild_DoesNotMutateStatements(t *testing.T) {
	statements := []Statement{{
		Repayments: []Entry{repayment(date(2023, 2, 1), "50.00")},
		Payments:   []Entry{payment(date(2023, 1, 5), "1000.00")},
	}}

	if _, err := Build(statements, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if statements[0].Repayments[0].PrincipalShare != nil {
		t.Error("Build mutated the statement's repayment")
	}
	if !statements[0].Payments[0].PrincipalOutstanding.IsZero() {
		t.Error("Build mutated the statement's payment")
	}
}
