package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Embedded default configuration. The statement pattern table is the
// single enumerable set of vocabularies recognised on an SLC
// statement; a config file can override or extend it.
const defaultConfigYAML = `
statement:
  SLC:
    patterns:
      period: 'This statement is for the following period:\s+(\d{2}/\d{2}/\d{4})\s+-\s+(\d{2}/\d{2}/\d{4})'
      opening_balance: 'Opening debit balance on \d{2}/\d{2}/\d{4}\s+(£?[\d,]+\.\d{2})'
      total_borrowed: 'Total loan\(s\) borrowed during statement period\s+(£?[\d,]+\.\d{2})'
      interest: '(\d{2}/\d{2}/\d{4})\s+Interest\s+(\d+\.\d{2})%\s+(£?[\d,]+\.\d{2})'
      payment: '(\d{2}/\d{2}/\d{4})\s+Tuition Fee Loan Payment\s+(£?[\d,]+\.\d{2})'
      repayment: '(\d{2}/\d{2}/\d{4})\s+Repayment Received\s+(£?[\d,]+\.\d{2})'
      date_format: "02/01/2006"
ecb:
  base_url: https://data-api.ecb.europa.eu/service/data/EXR/D.GBP.EUR.SP00.A
  start_date: "2012-01-01"`

var (
	cfgFile string
	verbose bool
	rootCmd = &cobra.Command{
		Use:   "slstmt [filename]",
		Short: "Student loan statement processor",
		Long: `slstmt reconstructs a chronological loan ledger out of student
loan statement PDFs, converts repayments to EUR using historical ECB
rates and emits one loan summary spreadsheet per calendar year.`,
		Args: cobra.ArbitraryArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 1 {
				viper.Set("target", args[0])
				runProcess(processCmd, []string{})
				return
			}
			cmd.Help()
		},
	}
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default is ./.slstmt.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogging() {
	if !verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetFlags(log.Ltime | log.Lmsgprefix)
		log.SetPrefix("INFO: ")
	}
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in current directory and home directory
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigName(".slstmt")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file found, use embedded default configuration
			if err := viper.ReadConfig(bytes.NewBufferString(defaultConfigYAML)); err != nil {
				fmt.Printf("Error loading embedded configuration: %v\n", err)
				os.Exit(1)
			}
		} else {
			fmt.Printf("Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}
