// Package quotestore keeps daily instrument quotes in SQLite or PostgreSQL
// and binds them to instruments for curve building.
package quotestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Aqumen-Tech/aqumenlib/config"
	"github.com/Aqumen-Tech/aqumenlib/dates"
	"github.com/Aqumen-Tech/aqumenlib/instrument"
)

var (
	// ErrQuoteNotFound is returned when no quote matches a lookup.
	ErrQuoteNotFound = errors.New("quote not found")
	// ErrQuoteExists is returned when saving a quote that is already stored
	// for the same date, instrument and source.
	ErrQuoteExists = errors.New("quote already exists")
)

// MemoryDir selects an in-process SQLite database.
const MemoryDir = ":memory:"

const defaultTimeout = 30 * time.Second

const schema = `
CREATE TABLE IF NOT EXISTS quotes (
	quote_date       INTEGER          NOT NULL,
	instrument_id    VARCHAR(150)     NOT NULL,
	quote            DOUBLE PRECISION NOT NULL,
	quote_type       VARCHAR(25)      NOT NULL DEFAULT '',
	quote_convention VARCHAR(25)      NOT NULL DEFAULT '',
	source           VARCHAR(25)      NOT NULL DEFAULT '',
	entitlement_id   INTEGER          NOT NULL DEFAULT 0,
	added_at         BIGINT           NOT NULL,
	UNIQUE (quote_date, instrument_id, source)
);
CREATE INDEX IF NOT EXISTS quotes_date_instrument ON quotes (quote_date, instrument_id);`

// Quote is one stored observation.
type Quote struct {
	// QuoteDate is YYYYMMDD.
	QuoteDate     int
	InstrumentID  string
	Value         float64
	QuoteType     string
	Convention    instrument.QuoteConvention
	Source        string
	EntitlementID int
	AddedAt       time.Time
}

// Date returns QuoteDate as a time.
func (q Quote) Date() time.Time {
	d, _ := dates.FromISOInt(q.QuoteDate)
	return d
}

// QuoteConvention returns the stored convention or a guess from the
// instrument id: rates for swaps, dirty prices otherwise.
func (q Quote) QuoteConvention() instrument.QuoteConvention {
	switch {
	case q.Convention != "":
		return q.Convention
	case strings.HasPrefix(q.InstrumentID, "IRS"):
		return instrument.QuoteRate
	}
	return instrument.QuoteDirtyPrice
}

func (q Quote) String() string {
	return fmt.Sprintf("%s on %d is %g %s", q.InstrumentID, q.QuoteDate, q.Value, q.QuoteType)
}

type quoteRow struct {
	QuoteDate     int     `db:"quote_date"`
	InstrumentID  string  `db:"instrument_id"`
	Value         float64 `db:"quote"`
	QuoteType     string  `db:"quote_type"`
	Convention    string  `db:"quote_convention"`
	Source        string  `db:"source"`
	EntitlementID int     `db:"entitlement_id"`
	AddedAt       int64   `db:"added_at"`
}

func (r quoteRow) quote() Quote {
	return Quote{
		QuoteDate:     r.QuoteDate,
		InstrumentID:  r.InstrumentID,
		Value:         r.Value,
		QuoteType:     r.QuoteType,
		Convention:    instrument.QuoteConvention(r.Convention),
		Source:        r.Source,
		EntitlementID: r.EntitlementID,
		AddedAt:       time.UnixMicro(r.AddedAt).UTC(),
	}
}

const selectColumns = `quote_date, instrument_id, quote, quote_type, quote_convention, source, entitlement_id, added_at`

// Store is a quote database.
type Store struct {
	db      *sqlx.DB
	timeout time.Duration
	log     *zap.Logger
	now     func() time.Time
}

// Open connects to the database the data config selects and creates the
// schema if needed.
func Open(ctx context.Context, cfg config.Data) (*Store, error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch cfg.DBType {
	case "", "sqlite":
		db, err = openSQLite(cfg.SQLiteDir)
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("quotestore.Open: data.postgres_dsn is required for postgres")
		}
		db, err = sqlx.Open("postgres", cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("quotestore.Open: unsupported db type %q", cfg.DBType)
	}
	if err != nil {
		return nil, fmt.Errorf("quotestore.Open: %w", err)
	}
	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	s.log.Debug("quote store opened", zap.String("db_type", cfg.DBType), zap.String("driver", db.DriverName()))
	return s, nil
}

func openSQLite(dir string) (*sqlx.DB, error) {
	if dir == "" || dir == MemoryDir {
		db, err := sqlx.Open("sqlite", MemoryDir)
		if err != nil {
			return nil, err
		}
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
		return db, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	dsn := "file:" + filepath.Join(dir, "quotes.db") + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	return sqlx.Open("sqlite", dsn)
}

// New wraps an open database. Call Migrate to create the schema.
func New(db *sqlx.DB) *Store {
	return &Store{db: db, timeout: defaultTimeout, log: zap.L().Named("quotestore"), now: time.Now}
}

// Migrate creates the quotes table and index.
func (s *Store) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("quotestore.Migrate: %w", err)
		}
	}
	return nil
}

// DB exposes the underlying connection pool.
func (s *Store) DB() *sqlx.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		return sqErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

// Save stores q. A quote with the same date, instrument and source is an
// ErrQuoteExists error unless ignoreIfExists is set.
func (s *Store) Save(ctx context.Context, q Quote, ignoreIfExists bool) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.insert(ctx, s.db, q, ignoreIfExists); err != nil {
		return fmt.Errorf("quotestore.Save: %w", err)
	}
	return nil
}

func (s *Store) insert(ctx context.Context, ex sqlx.ExecerContext, q Quote, ignoreIfExists bool) error {
	if q.InstrumentID == "" {
		return fmt.Errorf("instrument id is required")
	}
	if _, err := dates.FromISOInt(q.QuoteDate); err != nil {
		return err
	}
	added := q.AddedAt
	if added.IsZero() {
		added = s.now()
	}
	query := s.db.Rebind(`INSERT INTO quotes (` + selectColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := ex.ExecContext(ctx, query,
		q.QuoteDate, q.InstrumentID, q.Value, q.QuoteType, string(q.Convention),
		q.Source, q.EntitlementID, added.UnixMicro())
	if err != nil {
		if isUniqueViolation(err) {
			if ignoreIfExists {
				return nil
			}
			return fmt.Errorf("%w: %s on %d from %q", ErrQuoteExists, q.InstrumentID, q.QuoteDate, q.Source)
		}
		return err
	}
	return nil
}

// Pair is an instrument id and its quote.
type Pair struct {
	InstrumentID string
	Value        float64
}

// SaveQuotes stores quotes for one date in a single transaction, skipping
// those already stored.
func (s *Store) SaveQuotes(ctx context.Context, date time.Time, pairs []Pair, quoteType, source string) error {
	if len(pairs) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout*time.Duration(len(pairs)/100+1))
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("quotestore.SaveQuotes: %w", err)
	}
	defer tx.Rollback()

	d := dates.ISOInt(date)
	added := s.now()
	for _, p := range pairs {
		q := Quote{QuoteDate: d, InstrumentID: p.InstrumentID, Value: p.Value, QuoteType: quoteType, Source: source, AddedAt: added}
		if err := s.insertTx(ctx, tx, q); err != nil {
			return fmt.Errorf("quotestore.SaveQuotes: %s: %w", p.InstrumentID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("quotestore.SaveQuotes: %w", err)
	}
	s.log.Info("quotes saved", zap.Int("date", d), zap.Int("count", len(pairs)), zap.String("source", source))
	return nil
}

// insertTx skips duplicates without aborting the transaction, which a
// failed insert would do on postgres.
func (s *Store) insertTx(ctx context.Context, tx *sqlx.Tx, q Quote) error {
	var n int
	query := s.db.Rebind(`SELECT COUNT(*) FROM quotes WHERE quote_date = ? AND instrument_id = ? AND source = ?`)
	if err := tx.GetContext(ctx, &n, query, q.QuoteDate, q.InstrumentID, q.Source); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return s.insert(ctx, tx, q, false)
}

// Exists reports whether any quote of the instrument is stored for date.
func (s *Store) Exists(ctx context.Context, date time.Time, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	var n int
	query := s.db.Rebind(`SELECT COUNT(*) FROM quotes WHERE quote_date = ? AND instrument_id = ?`)
	if err := s.db.GetContext(ctx, &n, query, dates.ISOInt(date), id); err != nil {
		return false, fmt.Errorf("quotestore.Exists: %w", err)
	}
	return n > 0, nil
}

// Get returns the quote of an instrument on the latest date within window
// calendar days on or before date. Among that date's quotes the first
// source in sources wins; otherwise the most recently added one.
func (s *Store) Get(ctx context.Context, date time.Time, id string, sources []string, window int) (Quote, error) {
	if window < 0 {
		return Quote{}, fmt.Errorf("quotestore.Get: window cannot be negative, got %d", window)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	from := dates.ISOInt(date.AddDate(0, 0, -window))
	to := dates.ISOInt(date)
	query := s.db.Rebind(`SELECT ` + selectColumns + ` FROM quotes
		WHERE instrument_id = ? AND quote_date >= ? AND quote_date <= ?
		ORDER BY quote_date DESC, added_at DESC`)
	var rows []quoteRow
	if err := s.db.SelectContext(ctx, &rows, query, id, from, to); err != nil {
		return Quote{}, fmt.Errorf("quotestore.Get: %w", err)
	}
	if len(rows) == 0 {
		return Quote{}, fmt.Errorf("quotestore.Get: %w: %s on %d (window %d)", ErrQuoteNotFound, id, to, window)
	}
	latest := rows[0].QuoteDate
	for _, src := range sources {
		for _, r := range rows {
			if r.QuoteDate == latest && r.Source == src {
				return r.quote(), nil
			}
		}
	}
	return rows[0].quote(), nil
}

// QueryFilter narrows Query. Zero fields do not filter.
type QueryFilter struct {
	// InstrumentLike is a SQL LIKE pattern, e.g. IRS-SOFR-%.
	InstrumentLike string
	MinDate        time.Time
	MaxDate        time.Time
	Source         string
	Limit          int
}

// Query lists quotes ordered by date and instrument.
func (s *Store) Query(ctx context.Context, f QueryFilter) ([]Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		where []string
		args  []any
	)
	if f.InstrumentLike != "" {
		where = append(where, "instrument_id LIKE ?")
		args = append(args, f.InstrumentLike)
	}
	if !f.MinDate.IsZero() {
		where = append(where, "quote_date >= ?")
		args = append(args, dates.ISOInt(f.MinDate))
	}
	if !f.MaxDate.IsZero() {
		where = append(where, "quote_date <= ?")
		args = append(args, dates.ISOInt(f.MaxDate))
	}
	if f.Source != "" {
		where = append(where, "source = ?")
		args = append(args, f.Source)
	}
	query := `SELECT ` + selectColumns + ` FROM quotes`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY quote_date, instrument_id, source"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}
	var rows []quoteRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("quotestore.Query: %w", err)
	}
	out := make([]Quote, len(rows))
	for i, r := range rows {
		out[i] = r.quote()
	}
	return out, nil
}

// BindInstruments quotes each named instrument type from the store. Every
// missing quote is reported in a single error.
func (s *Store) BindInstruments(ctx context.Context, reg *instrument.Registry, date time.Time, names []string, window int) ([]instrument.Instrument, error) {
	if reg == nil {
		reg = instrument.Default()
	}
	out := make([]instrument.Instrument, 0, len(names))
	var missing []string
	for _, n := range names {
		q, err := s.Get(ctx, date, n, nil, window)
		if errors.Is(err, ErrQuoteNotFound) {
			missing = append(missing, n)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("quotestore.BindInstruments: %w", err)
		}
		inst, err := reg.Create(n, q.Value)
		if err != nil {
			return nil, fmt.Errorf("quotestore.BindInstruments: %w", err)
		}
		out = append(out, inst)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("quotestore.BindInstruments: %w on %s: %s", ErrQuoteNotFound, dates.Format(date), strings.Join(missing, ", "))
	}
	return out, nil
}
