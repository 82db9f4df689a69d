// Package sqldriver implements storage.Driver over database/sql. It is
// database-agnostic and is embedded by the sqlite and postgres drivers,
// which only differ in how they open the connection and a few types.
package sqldriver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/papercomputeco/devassist/pkg/storage"
)

// Dialect holds the SQL differences between backends.
type Dialect struct {
	// Name is used in error messages.
	Name string

	// TimestampType is the column type for instants.
	TimestampType string

	// NumberedParams rewrites ? placeholders as $1, $2, ...
	NumberedParams bool
}

var (
	SQLite   = Dialect{Name: "sqlite", TimestampType: "TIMESTAMP"}
	Postgres = Dialect{Name: "postgres", TimestampType: "TIMESTAMPTZ", NumberedParams: true}
)

const columns = "id, session_id, module_id, question, answer, outcome, error, started_at, completed_at"

// Driver provides storage operations over a *sql.DB.
type Driver struct {
	DB      *sql.DB
	Dialect Dialect
}

// New wraps db and creates the schema if it does not exist.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Driver, error) {
	d := &Driver{DB: db, Dialect: dialect}
	if err := d.migrate(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Driver) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS turns (
			id           TEXT PRIMARY KEY,
			session_id   INTEGER NOT NULL,
			module_id    INTEGER,
			question     TEXT NOT NULL,
			answer       TEXT NOT NULL,
			outcome      TEXT NOT NULL,
			error        TEXT NOT NULL DEFAULT '',
			started_at   ` + d.Dialect.TimestampType + ` NOT NULL,
			completed_at ` + d.Dialect.TimestampType + ` NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS turns_session_started_idx ON turns (session_id, started_at)`,
	}
	for _, stmt := range stmts {
		if _, err := d.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create %s schema: %w", d.Dialect.Name, err)
		}
	}
	return nil
}

// bind rewrites placeholders for the dialect.
func (d *Driver) bind(query string) string {
	if !d.Dialect.NumberedParams {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Put stores a turn. Returns false if a turn with the same ID exists.
func (d *Driver) Put(ctx context.Context, turn *storage.Turn) (bool, error) {
	if turn == nil {
		return false, errors.New("cannot store nil turn")
	}
	if turn.ID == "" {
		return false, errors.New("cannot store turn without an ID")
	}

	var moduleID sql.NullInt64
	if turn.ModuleID != nil {
		moduleID = sql.NullInt64{Int64: int64(*turn.ModuleID), Valid: true}
	}

	res, err := d.DB.ExecContext(ctx, d.bind(
		`INSERT INTO turns (`+columns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`),
		turn.ID,
		turn.SessionID,
		moduleID,
		turn.Question,
		turn.Answer,
		string(turn.Outcome),
		turn.Error,
		turn.StartedAt.UTC(),
		turn.CompletedAt.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert turn: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// Get retrieves a turn by its ID.
func (d *Driver) Get(ctx context.Context, id string) (*storage.Turn, error) {
	row := d.DB.QueryRowContext(ctx, d.bind(`SELECT `+columns+` FROM turns WHERE id = ?`), id)

	turn, err := scanTurn(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get turn: %w", err)
	}
	return turn, nil
}

// List returns the turns of one session, oldest first.
func (d *Driver) List(ctx context.Context, sessionID int) ([]*storage.Turn, error) {
	rows, err := d.DB.QueryContext(ctx, d.bind(
		`SELECT `+columns+` FROM turns WHERE session_id = ? ORDER BY started_at ASC, id ASC`),
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list turns: %w", err)
	}
	defer rows.Close()

	var result []*storage.Turn
	for rows.Next() {
		turn, err := scanTurn(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		result = append(result, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate turns: %w", err)
	}

	return result, nil
}

// Close closes the database.
func (d *Driver) Close() error {
	return d.DB.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTurn(s scanner) (*storage.Turn, error) {
	var (
		turn      storage.Turn
		moduleID  sql.NullInt64
		outcome   string
		started   time.Time
		completed time.Time
	)
	err := s.Scan(
		&turn.ID,
		&turn.SessionID,
		&moduleID,
		&turn.Question,
		&turn.Answer,
		&outcome,
		&turn.Error,
		&started,
		&completed,
	)
	if err != nil {
		return nil, err
	}

	if moduleID.Valid {
		id := int(moduleID.Int64)
		turn.ModuleID = &id
	}
	turn.Outcome = storage.Outcome(outcome)
	turn.StartedAt = started.UTC()
	turn.CompletedAt = completed.UTC()

	return &turn, nil
}
