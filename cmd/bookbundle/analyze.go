package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aluiziolira/bookbundle/config"
	"github.com/aluiziolira/bookbundle/models"
	"github.com/aluiziolira/bookbundle/report"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	var (
		file   string
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Find sellers who stock several books from a list",
		Long: `Reads a YAML or JSON book list and reports the sellers able to supply the
largest verified subset of it, cheapest first among equal coverage.`,
		Example: `  # books.yaml:
  #   books:
  #     - itemId: 40869703
  #       title: 소년이 온다
  #       minQuality: GOOD
  #     - itemId: 6853560
  #       title: 채식주의자
  bookbundle analyze --file books.yaml

  # Write CSV and JSON reports
  bookbundle analyze --file books.yaml --format dual --output out/bundle.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := readBookList(file)
			if err != nil {
				return err
			}

			writer, err := report.NewWriter(format, output)
			if err != nil {
				return fmt.Errorf("creating writer: %w", err)
			}
			defer func() {
				if err := writer.Close(); err != nil {
					slog.Error("close writer", slog.Any("error", err))
				}
			}()

			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			defer a.startMetricsServer()()

			result, err := a.analyzer.AnalyzeBundle(cmd.Context(), books)
			if err != nil {
				return err
			}
			if err := writer.Write(result); err != nil {
				return fmt.Errorf("writing result: %w", err)
			}
			if err := writer.Validate(); err != nil {
				return fmt.Errorf("output validation failed: %w", err)
			}

			if output != "" && output != "-" {
				printSummary(result, output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "Book list file (YAML or JSON); - reads stdin")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file; stdout when empty")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json, csv, or dual")

	return cmd
}

// bookList accepts either a bare list or {books: [...]}, the API request shape.
type bookList struct {
	Books []models.BookRequest `yaml:"books"`
}

func readBookList(path string) ([]models.BookRequest, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read book list: %w", err)
	}

	var wrapped bookList
	if err := yaml.Unmarshal(data, &wrapped); err == nil && len(wrapped.Books) > 0 {
		return wrapped.Books, nil
	}
	var books []models.BookRequest
	if err := yaml.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("parse book list: %w", err)
	}
	return books, nil
}

func printSummary(result *models.BundleResult, outputFile string) {
	separator := "--------------------------------------------------"
	fmt.Println(separator)
	fmt.Println("Bundle analysis complete")
	fmt.Printf("  Requested books: %d\n", result.TotalRequestedCount)
	fmt.Printf("  Ranked sellers:  %d\n", len(result.Sellers))
	fmt.Printf("  Complete seller: %t\n", result.HasCompleteSeller)
	if len(result.Sellers) > 0 {
		best := result.Sellers[0]
		fmt.Printf("  Best bundle:     %s (%d books, %d원)\n", best.SellerName, best.TotalBookCount, best.TotalPrice)
	}
	fmt.Printf("  Duration:        %v\n", time.Duration(result.AnalysisTimeMs)*time.Millisecond)
	fmt.Printf("  Output file:     %s\n", outputFile)
	fmt.Println(separator)
}
