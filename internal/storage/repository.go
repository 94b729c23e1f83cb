// Package storage is the relational record and account store, backed by
// SQLite with embedded migrations. Dates are kept as RFC 3339 UTC text so
// range filters work as plain string comparisons; amounts are stored in the
// monto REAL column and converted through core.Money at the boundary.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"finanzia/internal/core"
	"finanzia/internal/store"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

// Ensure interface conformance
var (
	_ store.MovementAppender = (*Repository)(nil)
	_ store.MovementLister   = (*Repository)(nil)
	_ store.MovementDeleter  = (*Repository)(nil)
	_ store.AccountCreator   = (*Repository)(nil)
	_ store.AccountFinder    = (*Repository)(nil)
)

func NewRepository(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append implements store.MovementAppender.
func (r *Repository) Append(ctx context.Context, m core.Movement) (int64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO movimientos (fecha, tipo, categoria, monto, descripcion, usuario)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.Date.UTC().Format(time.RFC3339), string(m.Kind), string(m.Category),
		m.Amount.Float(), m.Note, m.Owner)
	if err != nil {
		return 0, fmt.Errorf("insert movement: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("movement id: %w", err)
	}

	slog.InfoContext(ctx, "Movement saved to SQLite",
		"id", id,
		"kind", m.Kind,
		"category", m.Category,
		"amount_cents", m.Amount.Cents,
		"owner", m.Owner)

	return id, nil
}

// List implements store.MovementLister.
func (r *Repository) List(ctx context.Context, owner string, f store.MonthFilter) ([]core.Movement, error) {
	query := `SELECT id, fecha, tipo, categoria, monto, descripcion, usuario
	          FROM movimientos WHERE usuario = ?`
	args := []any{owner}
	if !f.IsZero() {
		from := time.Date(f.Year, time.Month(f.Month), 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 1, 0)
		query += ` AND fecha >= ? AND fecha < ?`
		args = append(args, from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	query += ` ORDER BY fecha DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var out []core.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return out, nil
}

// GetMovement returns a single movement by id regardless of owner. It is
// used by the sync worker, which operates on store-assigned ids.
func (r *Repository) GetMovement(ctx context.Context, id int64) (core.Movement, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, fecha, tipo, categoria, monto, descripcion, usuario
		 FROM movimientos WHERE id = ?`, id)
	m, err := scanMovement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Movement{}, core.ErrNotFound
	}
	return m, err
}

// Delete implements store.MovementDeleter. Ownership is part of the match:
// a foreign id is indistinguishable from a missing one.
func (r *Repository) Delete(ctx context.Context, owner string, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM movimientos WHERE id = ? AND usuario = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// CreateAccount implements store.AccountCreator.
func (r *Repository) CreateAccount(ctx context.Context, a core.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	var exists int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM usuarios WHERE username = ?`, a.Username).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if exists > 0 {
		return core.ErrAlreadyExists
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO usuarios (username, password, created_at) VALUES (?, ?, ?)`,
		a.Username, a.Password, a.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}

	slog.InfoContext(ctx, "Account created", "username", a.Username)
	return nil
}

// FindAccount implements store.AccountFinder.
func (r *Repository) FindAccount(ctx context.Context, username string) (core.Account, error) {
	var a core.Account
	var createdAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT username, password, created_at FROM usuarios WHERE username = ?`,
		username).Scan(&a.Username, &a.Password, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, core.ErrNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("find account: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		a.CreatedAt = t
	}
	return a, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovement(row rowScanner) (core.Movement, error) {
	var (
		m     core.Movement
		fecha string
		monto float64
		nota  sql.NullString
	)
	var tipo, categoria string
	if err := row.Scan(&m.ID, &fecha, &tipo, &categoria, &monto, &nota, &m.Owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Movement{}, err
		}
		return core.Movement{}, fmt.Errorf("scan movement: %w", err)
	}
	t, err := time.Parse(time.RFC3339, fecha)
	if err != nil {
		return core.Movement{}, fmt.Errorf("parse movement date %q: %w", fecha, err)
	}
	m.Date = t
	m.Kind = core.Kind(tipo)
	m.Category = core.Category(categoria)
	m.Amount = core.MoneyFromFloat(monto)
	m.Note = nota.String
	return m, nil
}
