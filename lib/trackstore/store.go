package trackstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"shiptrack/lib/scrapers/myshiptracking"
	"strings"
	"time"

	_ "embed"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

type Store struct {
	db *sql.DB
}

// Open connects to a local sqlite file (or ":memory:") or to a libsql server
// when dsn is a libsql:// or http(s):// url.
func Open(ctx context.Context, dsn string) (Store, error) {
	driver := "sqlite"
	for _, prefix := range []string{"libsql://", "http://", "https://", "ws://", "wss://"} {
		if strings.HasPrefix(dsn, prefix) {
			driver = "libsql"
			break
		}
	}

	if driver == "sqlite" && dsn != ":memory:" {
		err := os.MkdirAll(filepath.Dir(dsn), 0755)
		if err != nil {
			return Store{}, err
		}
	}

	database, err := sql.Open(driver, dsn)
	if err != nil {
		return Store{}, err
	}
	if driver == "sqlite" {
		// sqlite allows a single writer, and every connection to ":memory:"
		// is a database of its own
		database.SetMaxOpenConns(1)
		if dsn != ":memory:" {
			_, err = database.ExecContext(ctx, "PRAGMA journal_mode=WAL")
			if err != nil {
				database.Close()
				return Store{}, err
			}
		}
	}
	store, err := NewStore(ctx, database)
	if err != nil {
		database.Close()
		return Store{}, err
	}
	return store, nil
}

// NewStore creates the tables on database if they are missing.
func NewStore(ctx context.Context, database *sql.DB) (Store, error) {
	_, err := database.ExecContext(ctx, Schema)
	if err != nil {
		return Store{}, fmt.Errorf("create schema: %w", err)
	}
	return Store{db: database}, nil
}

func (s Store) Close() error {
	return s.db.Close()
}

type PushRequest struct {
	Kind myshiptracking.Kind
	// the port id, mmsi or search string the listing was fetched for
	Query   string
	Time    time.Time
	Records []myshiptracking.Record
}

func encodeRecord(r myshiptracking.Record) (string, error) {
	columns := r.Columns()
	values := r.Values()
	fields := make(map[string]*string, len(columns))
	for i, c := range columns {
		if i < len(values) {
			fields[c] = values[i]
		}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Push stores one fetched listing as a run and returns its id.
func (s Store) Push(ctx context.Context, req PushRequest) (int64, error) {
	if !req.Kind.Valid() {
		return 0, fmt.Errorf("%w: unknown record kind %s", myshiptracking.ErrInvalidArgument, req.Kind)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(
		ctx,
		"insert into runs(kind, query, fetched_at, count) values (?, ?, ?, ?)",
		req.Kind.String(), req.Query, req.Time.Unix(), len(req.Records),
	)
	if err != nil {
		return 0, err
	}
	runId, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for i, r := range req.Records {
		data, err := encodeRecord(r)
		if err != nil {
			return 0, err
		}
		_, err = tx.ExecContext(
			ctx,
			"insert into records(run_id, idx, data) values (?, ?, ?)",
			runId, i, data,
		)
		if err != nil {
			return 0, err
		}
	}

	err = tx.Commit()
	if err != nil {
		return 0, err
	}
	slog.DebugContext(ctx, "stored run", "id", runId, "kind", req.Kind, "query", req.Query, "records", len(req.Records))
	return runId, nil
}

type Run struct {
	Id        int64
	Kind      myshiptracking.Kind
	Query     string
	FetchedAt time.Time
	Count     int
}

// Runs lists the stored runs of kind, newest first. The zero kind lists
// every run.
func (s Store) Runs(ctx context.Context, kind myshiptracking.Kind) ([]Run, error) {
	query := "select id, kind, query, fetched_at, count from runs"
	var args []any
	if kind != 0 {
		query += " where kind = ?"
		args = append(args, kind.String())
	}
	query += " order by fetched_at desc, id desc"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var kindName string
		var fetchedAt int64
		err = rows.Scan(&run.Id, &kindName, &run.Query, &fetchedAt, &run.Count)
		if err != nil {
			return nil, err
		}
		run.Kind, err = myshiptracking.ParseKind(kindName)
		if err != nil {
			slog.WarnContext(ctx, "skipping run with unknown kind", "id", run.Id, "err", err)
			continue
		}
		run.FetchedAt = time.Unix(fetchedAt, 0)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Fields is a stored record keyed by column, absent fields are nil.
type Fields map[string]*string

// Records returns the records of a run in the order they were fetched.
func (s Store) Records(ctx context.Context, runId int64) ([]Fields, error) {
	rows, err := s.db.QueryContext(ctx, "select data from records where run_id = ? order by idx", runId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Fields
	for rows.Next() {
		var data string
		err = rows.Scan(&data)
		if err != nil {
			return nil, err
		}
		var fields Fields
		err = json.Unmarshal([]byte(data), &fields)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", runId, err)
		}
		records = append(records, fields)
	}
	return records, rows.Err()
}
