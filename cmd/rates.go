package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"slstmt/rates"
)

var (
	ratesFrom string
	ratesTo   string
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Fetch and print ECB GBP/EUR exchange rates",
	Long: `Fetches the daily GBP/EUR reference rates published by the ECB for a
date range and prints one date/rate pair per line. Non-trading days
have no published rate and are absent from the output.`,
	Run: func(cmd *cobra.Command, args []string) {
		from, err := time.ParseInLocation("2006-01-02", ratesFrom, time.Local)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid --from date %q\n", ratesFrom)
			os.Exit(1)
		}
		to, err := time.ParseInLocation("2006-01-02", ratesTo, time.Local)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid --to date %q\n", ratesTo)
			os.Exit(1)
		}

		table := rates.NewTable()
		client := rates.NewClient(viper.GetString("ecb.base_url"))
		if err := table.Load(context.Background(), client, from, to); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}

		for _, obs := range table.All() {
			fmt.Printf("%s %s\n", obs.Date, obs.Rate)
		}
	},
}

func init() {
	rootCmd.AddCommand(ratesCmd)
	ratesCmd.Flags().StringVar(&ratesFrom, "from", "2012-01-01", "Range start (YYYY-MM-DD)")
	ratesCmd.Flags().StringVar(&ratesTo, "to", time.Now().Format("2006-01-02"), "Range end (YYYY-MM-DD)")
}
