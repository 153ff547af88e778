package recorder

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/rxtech-lab/argo-structure/internal/logger"
	"github.com/rxtech-lab/argo-structure/pkg/errors"
)

// SQLiteRecorder stores snapshots in a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	sq  squirrel.StatementBuilderType
	log *logger.Logger
}

// NewSQLiteRecorder opens (or creates) the database at dbPath and creates the schema.
func NewSQLiteRecorder(dbPath string, log *logger.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeRecorderOpenFailed, err, "open sqlite %s", dbPath)
	}

	// WAL lets the HTTP handlers read while a refresh writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeRecorderOpenFailed, "set WAL mode", err)
	}

	r := &SQLiteRecorder{
		db:  db,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		log: log.Named("recorder"),
	}

	if err := r.migrate(); err != nil {
		db.Close()

		return nil, err
	}

	r.log.Info("sqlite recorder opened", zap.String("path", dbPath))

	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS structure_snapshots (
			ticker      TEXT    NOT NULL,
			date        TEXT    NOT NULL,
			close       REAL    NOT NULL,
			oscillator  REAL,
			signal      REAL,
			histogram   REAL,
			cross_kind  TEXT    NOT NULL DEFAULT '',
			div_kind    TEXT    NOT NULL DEFAULT '',
			tg          INTEGER NOT NULL DEFAULT 0,
			bg          INTEGER NOT NULL DEFAULT 0,
			main_rise   INTEGER NOT NULL DEFAULT 0,
			recorded_at INTEGER NOT NULL,
			PRIMARY KEY (ticker, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_signal ON structure_snapshots(ticker, tg, bg)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return errors.Wrap(errors.ErrCodeRecorderOpenFailed, "migrate", err)
		}
	}

	return nil
}

func (r *SQLiteRecorder) Record(ctx context.Context, s Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO structure_snapshots
		(ticker, date, close, oscillator, signal, histogram, cross_kind, div_kind, tg, bg, main_rise, recorded_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(ticker, date) DO UPDATE SET
			close = excluded.close,
			oscillator = excluded.oscillator,
			signal = excluded.signal,
			histogram = excluded.histogram,
			cross_kind = excluded.cross_kind,
			div_kind = excluded.div_kind,
			tg = excluded.tg,
			bg = excluded.bg,
			main_rise = excluded.main_rise,
			recorded_at = excluded.recorded_at`,
		s.Ticker, s.Date.Format(time.DateOnly), s.Close,
		nullFloat(s.Oscillator), nullFloat(s.Signal), nullFloat(s.Histogram),
		s.Cross, s.Divergence, s.TG, s.BG, s.MainRise, s.RecordedAt.Unix(),
	)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeRecorderWriteFailed, err, "record %s %s", s.Ticker, s.Date.Format(time.DateOnly))
	}

	return nil
}

// History returns matching snapshots, newest first.
func (r *SQLiteRecorder) History(ctx context.Context, q HistoryQuery) ([]Snapshot, error) {
	builder := r.sq.
		Select("ticker", "date", "close", "oscillator", "signal", "histogram",
			"cross_kind", "div_kind", "tg", "bg", "main_rise", "recorded_at").
		From("structure_snapshots").
		OrderBy("date DESC", "ticker ASC")

	if q.Ticker != "" {
		builder = builder.Where(squirrel.Eq{"ticker": q.Ticker})
	}

	if q.SignalsOnly {
		builder = builder.Where(squirrel.Or{squirrel.Eq{"tg": 1}, squirrel.Eq{"bg": 1}})
	}

	if q.Limit > 0 {
		builder = builder.Limit(uint64(q.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "build history query", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "query history", err)
	}
	defer rows.Close()

	var out []Snapshot

	for rows.Next() {
		var (
			s              Snapshot
			date           string
			osc, sig, hist sql.NullFloat64
			recordedAt     int64
		)

		if err := rows.Scan(&s.Ticker, &date, &s.Close, &osc, &sig, &hist,
			&s.Cross, &s.Divergence, &s.TG, &s.BG, &s.MainRise, &recordedAt); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "scan history row", err)
		}

		s.Date, err = time.Parse(time.DateOnly, date)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "invalid stored date %q", date)
		}

		s.Oscillator = fromNull(osc)
		s.Signal = fromNull(sig)
		s.Histogram = fromNull(hist)
		s.RecordedAt = time.Unix(recordedAt, 0).UTC()

		out = append(out, s)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "iterate history", err)
	}

	return out, nil
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")

	return r.db.Close()
}

func nullFloat(v optional.Option[float64]) sql.NullFloat64 {
	if v.IsNone() {
		return sql.NullFloat64{}
	}

	return sql.NullFloat64{Float64: v.Unwrap(), Valid: true}
}

func fromNull(v sql.NullFloat64) optional.Option[float64] {
	if !v.Valid {
		return optional.None[float64]()
	}

	return optional.Some(v.Float64)
}
