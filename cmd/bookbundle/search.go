package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aluiziolira/bookbundle/config"
	"github.com/spf13/cobra"
)

func newSearchCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "search KEYWORD...",
		Short: "Search used books by keyword",
		Example: `  # Find item ids to put in a book list
  bookbundle search 데미안`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			defer a.startMetricsServer()()

			keyword := strings.Join(args, " ")
			results, err := a.analyzer.SearchBooks(cmd.Context(), keyword)
			if err != nil {
				return fmt.Errorf("search %q: %w", keyword, err)
			}
			slog.Debug("search complete", slog.Int("results", len(results)))

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(results)
		},
	}
}
