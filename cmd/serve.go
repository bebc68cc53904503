package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"slstmt/api"
)

var (
	servePort    string
	serveNoRates bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long:  `Starts the HTTP API server that accepts statement PDFs and returns the built ledger as JSON or a yearly spreadsheet.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Configure logging for server mode
		log.SetOutput(os.Stdout)
		log.SetFlags(log.Ltime | log.Lmsgprefix)

		cfg := api.DefaultConfig()
		if servePort != "" {
			cfg.Port = ":" + servePort
		}
		cfg.LogPrefix = "SERVER: "
		cfg.DisableRates = serveNoRates
		if url := viper.GetString("ecb.base_url"); url != "" {
			cfg.RatesBaseURL = url
		}
		if from := viper.GetString("ecb.start_date"); from != "" {
			cfg.RatesFrom = from
		}

		server := api.New(cfg)
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&servePort, "port", "p", "8080", "Port to run the API server on")
	serveCmd.Flags().BoolVar(&serveNoRates, "no-rates", false, "Skip exchange rate fetching")
}
