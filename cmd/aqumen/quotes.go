package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aqumen-Tech/aqumenlib/dates"
	"github.com/Aqumen-Tech/aqumenlib/instrument"
	"github.com/Aqumen-Tech/aqumenlib/quotestore"
)

type quoteOutput struct {
	Date            string                     `json:"date"`
	InstrumentID    string                     `json:"instrument_id"`
	Value           float64                    `json:"value"`
	QuoteType       string                     `json:"quote_type"`
	QuoteConvention instrument.QuoteConvention `json:"quote_convention"`
	Source          string                     `json:"source"`
}

func toQuoteOutput(q quotestore.Quote) quoteOutput {
	return quoteOutput{
		Date:            dates.Format(q.Date()),
		InstrumentID:    q.InstrumentID,
		Value:           q.Value,
		QuoteType:       q.QuoteType,
		QuoteConvention: q.Convention,
		Source:          q.Source,
	}
}

func newQuotesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quotes",
		Short: "Manage the quote store",
	}
	cmd.AddCommand(newQuotesImportCmd(a), newQuotesGetCmd(a), newQuotesListCmd(a))
	return cmd
}

func newQuotesImportCmd(a *app) *cobra.Command {
	var (
		file           string
		ignoreExisting bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import quotes from a CSV file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			s, err := a.quoteStore(cmd.Context())
			if err != nil {
				return err
			}
			n, err := s.Import(cmd.Context(), in, ignoreExisting)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]int{"imported": n})
		},
	}
	cmd.Flags().StringVar(&file, "file", "-", "CSV file; - reads stdin")
	cmd.Flags().BoolVar(&ignoreExisting, "ignore-existing", false, "skip quotes already stored")
	return cmd
}

func newQuotesGetCmd(a *app) *cobra.Command {
	var (
		date, ids, sources string
		window             int
	)
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Look up the latest quotes on or before a date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := dates.Parse(date)
			if err != nil {
				return err
			}
			names := splitList(ids)
			if len(names) == 0 {
				return fmt.Errorf("--id is required")
			}
			s, err := a.quoteStore(cmd.Context())
			if err != nil {
				return err
			}
			out := make([]quoteOutput, 0, len(names))
			for _, id := range names {
				q, err := s.Get(cmd.Context(), d, id, splitList(sources), window)
				if err != nil {
					return err
				}
				out = append(out, toQuoteOutput(q))
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "quote date")
	cmd.Flags().StringVar(&ids, "id", "", "comma separated instrument ids")
	cmd.Flags().StringVar(&sources, "source", "", "comma separated sources in priority order")
	cmd.Flags().IntVar(&window, "window", 0, "lookback in calendar days")
	return cmd
}

func newQuotesListCmd(a *app) *cobra.Command {
	var (
		like, from, to, source string
		limit                  int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored quotes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := quotestore.QueryFilter{InstrumentLike: strings.ReplaceAll(like, "*", "%"), Source: source, Limit: limit}
			var err error
			if from != "" {
				if f.MinDate, err = dates.Parse(from); err != nil {
					return err
				}
			}
			if to != "" {
				if f.MaxDate, err = dates.Parse(to); err != nil {
					return err
				}
			}
			s, err := a.quoteStore(cmd.Context())
			if err != nil {
				return err
			}
			qs, err := s.Query(cmd.Context(), f)
			if err != nil {
				return err
			}
			out := make([]quoteOutput, 0, len(qs))
			for _, q := range qs {
				out = append(out, toQuoteOutput(q))
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&like, "like", "", "instrument id pattern; * matches anything")
	cmd.Flags().StringVar(&from, "from", "", "first quote date")
	cmd.Flags().StringVar(&to, "to", "", "last quote date")
	cmd.Flags().StringVar(&source, "source", "", "only this source")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows; 0 for all")
	return cmd
}
