// Package rates maintains the date-indexed table of daily GBP/EUR
// conversion rates used to express repayments in the reference
// currency.
package rates

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// lookbackDays bounds the backward scan for dates without a published
// rate (weekends, holidays).
const lookbackDays = 10

const dateKeyFormat = "2006-01-02"

var defaultRate = decimal.NewFromInt(1)

// Observation is a single published daily rate.
type Observation struct {
	Date string          `json:"date"` // YYYY-MM-DD
	Rate decimal.Decimal `json:"rate"`
}

// Source fetches rate observations for an inclusive date range. Dates
// are YYYY-MM-DD strings; non-trading days are simply absent from the
// result.
type Source interface {
	Fetch(ctx context.Context, startDate, endDate string) ([]Observation, error)
}

// Table is the day-keyed rate lookup. It is populated once per session
// and read-only afterwards, so Resolve needs no locking.
type Table struct {
	rates  map[string]decimal.Decimal
	loaded bool
	err    error
}

func NewTable() *Table {
	return &Table{rates: make(map[string]decimal.Decimal)}
}

// Load fetches all observations in [from, to] from src. A fetch
// failure leaves the table unloaded for the rest of the session; the
// pipeline then runs without currency conversion rather than aborting.
func (t *Table) Load(ctx context.Context, src Source, from, to time.Time) error {
	observations, err := src.Fetch(ctx, from.Format(dateKeyFormat), to.Format(dateKeyFormat))
	if err != nil {
		t.err = err
		log.Printf("exchange rate fetch failed, conversions disabled: %v", err)
		return err
	}

	for _, obs := range observations {
		t.rates[obs.Date] = obs.Rate
	}
	t.loaded = true
	log.Printf("loaded %d exchange rate observations", len(observations))
	return nil
}

// Set stores a single observation and marks the table loaded.
func (t *Table) Set(date time.Time, rate decimal.Decimal) {
	t.rates[date.Format(dateKeyFormat)] = rate
	t.loaded = true
}

// Loaded reports whether the table finished loading.
func (t *Table) Loaded() bool {
	return t.loaded
}

// Err returns the fetch error that left the table unloaded, if any.
func (t *Table) Err() error {
	return t.err
}

// Resolve returns the rate for a date. Dates with no published rate
// fall back to the closest previous day within the lookback window;
// past that the neutral default of 1 is returned with ok=false. It
// never fails: a missing date is expected, not an error.
func (t *Table) Resolve(date time.Time) (rate decimal.Decimal, ok bool) {
	if rate, ok := t.rates[date.Format(dateKeyFormat)]; ok {
		return rate, true
	}

	for i := 1; i <= lookbackDays; i++ {
		key := date.AddDate(0, 0, -i).Format(dateKeyFormat)
		if rate, ok := t.rates[key]; ok {
			return rate, true
		}
	}

	return defaultRate, false
}

// All returns every stored observation sorted by date.
func (t *Table) All() []Observation {
	observations := make([]Observation, 0, len(t.rates))
	for date, rate := range t.rates {
		observations = append(observations, Observation{Date: date, Rate: rate})
	}
	sort.Slice(observations, func(i, j int) bool {
		return observations[i].Date < observations[j].Date
	})
	return observations
}
