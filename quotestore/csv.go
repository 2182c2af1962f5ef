package quotestore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Aqumen-Tech/aqumenlib/dates"
	"github.com/Aqumen-Tech/aqumenlib/instrument"
)

// ReadCSV parses quotes with a header row naming at least date,
// instrument_id and quote; quote_type, quote_convention and source are
// optional. Dates are ISO or YYYYMMDD.
func ReadCSV(r io.Reader) ([]Quote, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("quotestore.ReadCSV: header: %w", err)
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, req := range []string{"date", "instrument_id", "quote"} {
		if _, ok := col[req]; !ok {
			return nil, fmt.Errorf("quotestore.ReadCSV: missing column %q", req)
		}
	}
	field := func(rec []string, name string) string {
		if i, ok := col[name]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	var out []Quote
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("quotestore.ReadCSV: line %d: %w", line, err)
		}
		d, err := parseDate(field(rec, "date"))
		if err != nil {
			return nil, fmt.Errorf("quotestore.ReadCSV: line %d: %w", line, err)
		}
		v, err := strconv.ParseFloat(field(rec, "quote"), 64)
		if err != nil {
			return nil, fmt.Errorf("quotestore.ReadCSV: line %d: quote: %w", line, err)
		}
		out = append(out, Quote{
			QuoteDate:    d,
			InstrumentID: field(rec, "instrument_id"),
			Value:        v,
			QuoteType:    field(rec, "quote_type"),
			Convention:   instrument.QuoteConvention(strings.ToUpper(field(rec, "quote_convention"))),
			Source:       field(rec, "source"),
		})
	}
	return out, nil
}

func parseDate(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if _, err := dates.FromISOInt(n); err != nil {
			return 0, err
		}
		return n, nil
	}
	d, err := dates.Parse(s)
	if err != nil {
		return 0, err
	}
	return dates.ISOInt(d), nil
}

// Import saves quotes read from CSV and returns how many rows were read.
func (s *Store) Import(ctx context.Context, r io.Reader, ignoreIfExists bool) (int, error) {
	qs, err := ReadCSV(r)
	if err != nil {
		return 0, err
	}
	for _, q := range qs {
		if err := s.Save(ctx, q, ignoreIfExists); err != nil {
			return 0, err
		}
	}
	return len(qs), nil
}
