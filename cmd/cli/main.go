package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/applicant-screening/internal/domain"
	"github.com/dvloznov/applicant-screening/internal/logger"
	"github.com/dvloznov/applicant-screening/internal/payments"
	"github.com/dvloznov/applicant-screening/internal/record"
	"github.com/dvloznov/applicant-screening/internal/transfers"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "transfers":
		runTransfers(log)
	case "payments":
		runPayments(log)
	case "demo":
		runDemo(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Applicant Screening CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  transfers   Clean and group applicant transfers from a JSON file")
	fmt.Println("  payments    Aggregate applicant payment shares from a JSON file")
	fmt.Println("  demo        Run both pipelines on built-in sample data")
	fmt.Println("  help        Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runTransfers(log zerolog.Logger) {
	fs := flag.NewFlagSet("transfers", flag.ExitOnError)
	filePath := fs.String("file", "", `Path to a JSON file with {"applicants": [...]}`)
	workers := fs.Int("workers", 0, "Process applicants concurrently with this many workers")
	pretty := fs.Bool("pretty", false, "Indent the JSON output")
	fs.Parse(os.Args[2:])

	if *filePath == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	var input struct {
		Applicants []domain.ApplicantTransfers `json:"applicants"`
	}
	if err := decodeFile(*filePath, &input); err != nil {
		log.Fatal().Err(err).Str("file", *filePath).Msg("Failed to read input file")
	}

	processor := transfers.NewProcessor(log)

	var results []domain.GroupedResult
	if *workers > 1 {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		results = processor.ProcessApplicantsConcurrent(ctx, input.Applicants, *workers)
	} else {
		results = processor.ProcessApplicants(input.Applicants)
	}

	printJSON(results, *pretty)
}

func runPayments(log zerolog.Logger) {
	fs := flag.NewFlagSet("payments", flag.ExitOnError)
	filePath := fs.String("file", "", `Path to a JSON file with {"applicants": [...]}`)
	workers := fs.Int("workers", 0, "Process applicants concurrently with this many workers")
	pretty := fs.Bool("pretty", false, "Indent the JSON output")
	fs.Parse(os.Args[2:])

	if *filePath == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	var input struct {
		Applicants []domain.ApplicantPayments `json:"applicants"`
	}
	if err := decodeFile(*filePath, &input); err != nil {
		log.Fatal().Err(err).Str("file", *filePath).Msg("Failed to read input file")
	}

	calculator := payments.NewCalculator(log)

	var totals domain.CurrencyTotals
	if *workers > 1 {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		totals = calculator.CalculatePaymentsConcurrent(ctx, input.Applicants, *workers)
	} else {
		totals = calculator.CalculatePayments(input.Applicants)
	}

	printJSON(totals, *pretty)
}

func runDemo(log zerolog.Logger) {
	transferApplicants := []domain.ApplicantTransfers{
		{
			ApplicantID: "A-1",
			Transfers: []record.Raw{
				{"country": "USA", "period": 1, "amount": 100, "source": "A"},
				{"country": "USA", "period": 1, "amount": 50, "source": "B"},
				{"country": "GE", "period": 2, "amount": 200, "source": "M"},
				{"country": "USA", "period": 2, "amount": 75, "source": "A"},
				{"country": "GE", "period": 1, "amount": 120, "source": "B"},
			},
		},
	}

	paymentApplicants := []domain.ApplicantPayments{
		{
			Currency: "USD",
			Payments: []record.Raw{
				{"active": true, "incomeshare": 0.2, "amount": 1000, "base": 0.5},
				{"active": false, "incomeshare": 0.5, "amount": 500, "base": 1},
			},
		},
	}

	processor := transfers.NewProcessor(log)
	calculator := payments.NewCalculator(log)

	results := processor.ProcessApplicants(transferApplicants)
	totals := calculator.CalculatePayments(paymentApplicants)

	fmt.Println("\n=== Grouped Transfers ===")
	printJSON(results, true)

	fmt.Println("\n=== Currency Totals ===")
	printJSON(totals, true)
}

// decodeFile reads a JSON document into v. Numbers decode as json.Number so
// the pipelines see them before any float conversion.
func decodeFile(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()
	return dec.Decode(v)
}

func printJSON(v interface{}, pretty bool) {
	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode output: %v\n", err)
		os.Exit(1)
	}
}
