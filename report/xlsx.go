// Package report renders a windowed ledger into a spreadsheet, one
// row per balance change plus a trailing totals row.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"

	"slstmt/ledger"
)

var headers = []string{
	"Date",
	"Interest Rate",
	"Interest Added",
	"Payment",
	"Outstanding Principal",
	"Outstanding Interest",
	"Total Outstanding",
	"Principal %",
	"Interest %",
	"Paid Principal (£)",
	"Paid Interest (£)",
	"Paid Principal (€)",
	"Paid Interest (€)",
	"ECB Rate",
}

var hundred = decimal.NewFromInt(100)

// Generate builds the loan summary workbook for the entries falling
// inside [from, to].
func Generate(entries []ledger.Entry, from, to time.Time) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Loan Summary")
	if err != nil {
		return nil, fmt.Errorf("adding worksheet: %w", err)
	}

	bold := xlsx.NewStyle()
	bold.Font.Bold = true
	bold.ApplyFont = true

	headerRow := sheet.AddRow()
	for _, header := range headers {
		cell := headerRow.AddCell()
		cell.SetString(header)
		cell.SetStyle(bold)
	}

	window := ledger.Window(entries, from, to)

	totalPrincipal := decimal.Zero
	totalInterest := decimal.Zero
	totalPrincipalEUR := decimal.Zero
	totalInterestEUR := decimal.Zero

	for _, entry := range window {
		cells := make([]string, len(headers))
		cells[0] = entry.Date.Format("02/01/2006")
		cells[4] = gbp(entry.PrincipalOutstanding)
		cells[5] = gbp(entry.InterestOutstanding)

		outstanding := entry.PrincipalOutstanding.Add(entry.InterestOutstanding)
		cells[6] = gbp(outstanding)
		if outstanding.IsPositive() {
			cells[7] = percent(entry.PrincipalOutstanding.Div(outstanding))
			cells[8] = percent(entry.InterestOutstanding.Div(outstanding))
		}

		switch entry.Kind {
		case ledger.KindInterest:
			cells[1] = percent(entry.Rate)
			cells[2] = gbp(entry.Amount)
		case ledger.KindPayment:
			cells[3] = gbp(entry.Amount)
		case ledger.KindRepayment:
			cells[3] = gbp(entry.Amount)
			if principal, interest, ok := entry.Portions(); ok {
				cells[9] = gbp(principal)
				cells[10] = gbp(interest)
				totalPrincipal = totalPrincipal.Add(principal)
				totalInterest = totalInterest.Add(interest)
			}
			if principal, interest, ok := entry.PortionsEUR(); ok {
				cells[11] = eur(principal)
				cells[12] = eur(interest)
				totalPrincipalEUR = totalPrincipalEUR.Add(principal)
				totalInterestEUR = totalInterestEUR.Add(interest)
			}
			if entry.ConversionRate != nil {
				cells[13] = entry.ConversionRate.StringFixed(5)
			}
		}

		row := sheet.AddRow()
		for _, value := range cells {
			row.AddCell().SetString(value)
		}
	}

	// Blank spacer before the summary.
	sheet.AddRow()

	totals := make([]string, len(headers))
	totals[0] = "TOTAL:"
	totals[9] = gbp(totalPrincipal)
	totals[10] = gbp(totalInterest)
	totals[11] = eur(totalPrincipalEUR)
	totals[12] = eur(totalInterestEUR)

	totalsRow := sheet.AddRow()
	for _, value := range totals {
		cell := totalsRow.AddCell()
		cell.SetString(value)
		cell.SetStyle(bold)
	}

	sheet.SetColWidth(0, len(headers)-1, 18)

	return file, nil
}

// Bytes serialises the workbook.
func Bytes(file *xlsx.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile saves the workbook to disk.
func WriteFile(file *xlsx.File, path string) error {
	return file.Save(path)
}

// FileName is the artifact naming convention for a yearly report.
func FileName(year int) string {
	return fmt.Sprintf("loan_summary_%d.xlsx", year)
}

func gbp(amount decimal.Decimal) string {
	return "£" + amount.StringFixed(2)
}

func eur(amount decimal.Decimal) string {
	return "€" + amount.StringFixed(2)
}

func percent(fraction decimal.Decimal) string {
	return fraction.Mul(hundred).StringFixed(2) + "%"
}
