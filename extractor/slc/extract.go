// Package slc extracts structured statements out of Student Loans
// Company annual statement PDFs.
package slc

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"slstmt/extractor/common"
	"slstmt/ledger"
)

// ErrStatementParse is returned when matched statement content cannot
// be turned into a structurally valid statement.
var ErrStatementParse = errors.New("failed to parse statement content")

var percentDivisor = decimal.NewFromInt(100)

// rules is the enumerable table of patterns recognised on an SLC
// statement. Each rule is an independent global scan over the full
// statement text; lines matching none of them are ignored.
type rules struct {
	Period         *regexp.Regexp
	OpeningBalance *regexp.Regexp
	TotalBorrowed  *regexp.Regexp
	Interest       *regexp.Regexp
	Payment        *regexp.Regexp
	Repayment      *regexp.Regexp
	DateFormat     string
}

func loadRules() rules {
	return rules{
		Period:         regexp.MustCompile(viper.GetString("statement.SLC.patterns.period")),
		OpeningBalance: regexp.MustCompile(viper.GetString("statement.SLC.patterns.opening_balance")),
		TotalBorrowed:  regexp.MustCompile(viper.GetString("statement.SLC.patterns.total_borrowed")),
		Interest:       regexp.MustCompile(viper.GetString("statement.SLC.patterns.interest")),
		Payment:        regexp.MustCompile(viper.GetString("statement.SLC.patterns.payment")),
		Repayment:      regexp.MustCompile(viper.GetString("statement.SLC.patterns.repayment")),
		DateFormat:     viper.GetString("statement.SLC.patterns.date_format"),
	}
}

// Extract parses the ordered page texts of one statement document.
// Pages are concatenated with single spaces and each rule scans the
// whole text independently. A missing period marker defaults the
// period to the processing date and missing balance markers default to
// zero; the statement degrades rather than fails. Only content that
// matched a rule but cannot be parsed yields an error.
func Extract(source string, pages []string) (ledger.Statement, error) {
	cfg := loadRules()
	content := strings.Join(pages, " ")

	statement := ledger.Statement{Source: source}

	if match := cfg.Period.FindStringSubmatch(content); match != nil {
		from, err := common.ParseDate(cfg.DateFormat, match[1])
		if err != nil {
			return ledger.Statement{}, fmt.Errorf("%w: period start %q: %v", ErrStatementParse, match[1], err)
		}
		to, err := common.ParseDate(cfg.DateFormat, match[2])
		if err != nil {
			return ledger.Statement{}, fmt.Errorf("%w: period end %q: %v", ErrStatementParse, match[2], err)
		}
		statement.PeriodFrom = from
		statement.PeriodTo = to
	} else {
		today := common.Today()
		statement.PeriodFrom = today
		statement.PeriodTo = today
	}

	if match := cfg.OpeningBalance.FindStringSubmatch(content); match != nil {
		amount, err := common.CleanDecimal(match[1])
		if err != nil {
			return ledger.Statement{}, fmt.Errorf("%w: opening balance %q: %v", ErrStatementParse, match[1], err)
		}
		statement.OpeningDebitBalance = amount
	}

	if match := cfg.TotalBorrowed.FindStringSubmatch(content); match != nil {
		amount, err := common.CleanDecimal(match[1])
		if err != nil {
			return ledger.Statement{}, fmt.Errorf("%w: total borrowed %q: %v", ErrStatementParse, match[1], err)
		}
		statement.TotalBorrowed = amount
	}

	for _, match := range cfg.Interest.FindAllStringSubmatch(content, -1) {
		date, err := common.ParseDate(cfg.DateFormat, match[1])
		if err != nil {
			return ledger.Statement{}, fmt.Errorf("%w: interest date %q: %v", ErrStatementParse, match[1], err)
		}
		percent, err := decimal.NewFromString(match[2])
		if err != nil {
			return ledger.Statement{}, fmt.Errorf("%w: interest rate %q: %v", ErrStatementParse, match[2], err)
		}
		amount, err := common.CleanDecimal(match[3])
		if err != nil {
			return ledger.Statement{}, fmt.Errorf("%w: interest amount %q: %v", ErrStatementParse, match[3], err)
		}
		statement.Interests = append(statement.Interests, ledger.Entry{
			Kind:   ledger.KindInterest,
			Date:   date,
			Amount: amount,
			Rate:   percent.Div(percentDivisor),
		})
	}

	for _, match := range cfg.Payment.FindAllStringSubmatch(content, -1) {
		date, err := common.ParseDate(cfg.DateFormat, match[1])
		if err != nil {
			return ledger.Statement{}, fmt.Errorf("%w: payment date %q: %v", ErrStatementParse, match[1], err)
		}
		amount, err := common.CleanDecimal(match[2])
		if err != nil {
			return ledger.Statement{}, fmt.Errorf("%w: payment amount %q: %v", ErrStatementParse, match[2], err)
		}
		statement.Payments = append(statement.Payments, ledger.Entry{
			Kind:   ledger.KindPayment,
			Date:   date,
			Amount: amount,
		})
	}

	for _, match := range cfg.Repayment.FindAllStringSubmatch(content, -1) {
		date, err := common.ParseDate(cfg.DateFormat, match[1])
		if err != nil {
			return ledger.Statement{}, fmt.Errorf("%w: repayment date %q: %v", ErrStatementParse, match[1], err)
		}
		amount, err := common.CleanDecimal(match[2])
		if err != nil {
			return ledger.Statement{}, fmt.Errorf("%w: repayment amount %q: %v", ErrStatementParse, match[2], err)
		}
		statement.Repayments = append(statement.Repayments, ledger.Entry{
			Kind:   ledger.KindRepayment,
			Date:   date,
			Amount: amount,
		})
	}

	log.Printf("extracted %s: period %s - %s, opening balance %s, %d interests, %d payments, %d repayments",
		source,
		statement.PeriodFrom.Format("2006-01-02"), statement.PeriodTo.Format("2006-01-02"),
		statement.OpeningDebitBalance,
		len(statement.Interests), len(statement.Payments), len(statement.Repayments))

	return statement, nil
}
