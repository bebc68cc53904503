package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"slstmt/extractor"
	"slstmt/ledger"
	"slstmt/rates"
	"slstmt/report"
)

var (
	processOut     string
	processBundle  bool
	processJSON    bool
	processNoRates bool
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process statement(s) into yearly loan summaries",
	Long: `Processes a given statement PDF or a folder of them. Statements are
extracted, merged into a single chronological ledger with running
balances, and written out as one loan summary spreadsheet per
calendar year.`,
	Run: runProcess,
}

func runProcess(cmd *cobra.Command, args []string) {
	target := viper.GetString("target")
	fmt.Println("processing", target)

	ctx := context.Background()

	// Rate loading and statement extraction are independent; overlap
	// them and join before the ledger pass needs conversions.
	table := rates.NewTable()
	ratesDone := make(chan struct{})
	if processNoRates {
		close(ratesDone)
	} else {
		go func() {
			defer close(ratesDone)
			loadRateTable(ctx, table)
		}()
	}

	statements, errs := extractor.ProcessPath(target)
	for _, err := range errs {
		fmt.Fprintln(os.Stderr, "error:", err)
	}

	<-ratesDone

	entries, err := ledger.Build(statements, table)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if processJSON {
		asJSON, _ := json.Marshal(entries)
		fmt.Println(string(asJSON))
		return
	}

	years := ledger.YearsSpanned(entries)
	artifacts := make(map[string][]byte, len(years))
	for _, year := range years {
		from, to := ledger.YearRange(year)
		workbook, err := report.Generate(entries, from, to)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		payload, err := report.Bytes(workbook)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		artifacts[report.FileName(year)] = payload
	}

	if processBundle && len(years) > 1 {
		archive, err := report.Bundle(artifacts)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		name := report.BundleName(years)
		if err := os.WriteFile(filepath.Join(processOut, name), archive, 0o644); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		fmt.Println("wrote", name)
		return
	}

	for name, payload := range artifacts {
		if err := os.WriteFile(filepath.Join(processOut, name), payload, 0o644); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		fmt.Println("wrote", name)
	}
}

// loadRateTable populates the table from the configured start date
// through tomorrow. Fetch failures are logged inside Load and leave
// the table unloaded; the ledger then runs without conversions.
func loadRateTable(ctx context.Context, table *rates.Table) {
	from, err := time.ParseInLocation("2006-01-02", viper.GetString("ecb.start_date"), time.Local)
	if err != nil {
		log.Printf("invalid ecb.start_date, using 2012-01-01: %v", err)
		from = time.Date(2012, time.January, 1, 0, 0, 0, 0, time.Local)
	}
	client := rates.NewClient(viper.GetString("ecb.base_url"))
	table.Load(ctx, client, from, time.Now().AddDate(0, 0, 1))
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().StringP("folder", "f", ".", "Statement PDF or folder of statement PDFs")
	processCmd.Flags().StringVarP(&processOut, "out", "o", ".", "Directory to write reports into")
	processCmd.Flags().BoolVar(&processBundle, "bundle", false, "Bundle yearly reports into a single zip archive")
	processCmd.Flags().BoolVar(&processJSON, "json", false, "Print the ledger as JSON instead of writing reports")
	processCmd.Flags().BoolVar(&processNoRates, "no-rates", false, "Skip exchange rate fetching")
	viper.BindPFlag("target", processCmd.Flags().Lookup("folder"))
}
