// Package postgres is the hosted data backend. Amounts are stored as
// numeric(12,2) and converted to integer cents at this boundary.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"casalgastos/internal/core"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, connStr string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) GetProfile(ctx context.Context, userID string) (core.Profile, error) {
	var p core.Profile
	err := s.pool.QueryRow(ctx,
		`SELECT id, family_id::text FROM profiles WHERE id = $1`, userID,
	).Scan(&p.ID, &p.FamilyID)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Profile{}, core.ErrNotFound
	}
	if err != nil {
		return core.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (s *Store) EnsureProfileAndFamily(ctx context.Context, userID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin provisioning: %w", err)
	}
	defer tx.Rollback(ctx)

	familyID := uuid.New()
	if _, err := tx.Exec(ctx, `INSERT INTO families (id) VALUES ($1)`, familyID); err != nil {
		return fmt.Errorf("create family: %w", err)
	}
	tag, err := tx.Exec(ctx,
		`INSERT INTO profiles (id, family_id) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		userID, familyID)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// already provisioned; drop the unused family
		return nil
	}

	batch := &pgx.Batch{}
	for _, c := range core.DefaultCategories() {
		batch.Queue(`INSERT INTO categories (id, family_id, name, icon) VALUES ($1, $2, $3, $4)`,
			uuid.New(), familyID, c.Name, c.Icon)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("create default categories: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit provisioning: %w", err)
	}

	slog.InfoContext(ctx, "Provisioned family", "user_id", userID, "family_id", familyID.String())
	return nil
}

func (s *Store) ListCategories(ctx context.Context, familyID string) ([]core.Category, error) {
	fid, err := uuid.Parse(familyID)
	if err != nil {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, family_id::text, name, icon
		FROM categories
		WHERE family_id = $1
		ORDER BY name ASC`, fid)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.FamilyID, &c.Name, &c.Icon); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

const transactionColumns = `id::text, family_id::text, created_by, amount, date, category_id::text, payment_method, description, created_at`

func (s *Store) ListTransactions(ctx context.Context, familyID string, w core.MonthWindow) ([]core.Transaction, error) {
	fid, err := uuid.Parse(familyID)
	if err != nil {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE family_id = $1 AND date >= $2 AND date < $3
		ORDER BY date DESC, created_at DESC`, fid, w.Start.Time, w.End.Time)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

// InsertTransaction only writes when the category belongs to the same family.
func (s *Store) InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	fid, err1 := uuid.Parse(t.FamilyID)
	cid, err2 := uuid.Parse(t.CategoryID)
	if err1 != nil || err2 != nil {
		return core.Transaction{}, core.ErrAccessDenied
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO transactions (id, family_id, created_by, amount, date, category_id, payment_method, description)
		SELECT $1::uuid, $2::uuid, $3::text, $4::numeric, $5::date, $6::uuid, $7::text, $8::text
		WHERE EXISTS (SELECT 1 FROM categories WHERE id = $6 AND family_id = $2)
		RETURNING `+transactionColumns,
		uuid.New(), fid, t.CreatedBy, CentsToNumeric(t.Amount.Cents), t.Date.Time, cid, string(t.PaymentMethod), t.Description)
	stored, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Transaction{}, core.ErrAccessDenied
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to Postgres",
		"id", stored.ID,
		"family_id", stored.FamilyID,
		"amount_cents", stored.Amount.Cents)
	return stored, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, familyID, id string) error {
	fid, err1 := uuid.Parse(familyID)
	tid, err2 := uuid.Parse(id)
	if err1 != nil || err2 != nil {
		return core.ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND family_id = $2`, tid, fid)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func scanTransaction(row pgx.Row) (core.Transaction, error) {
	var (
		t      core.Transaction
		amount pgtype.Numeric
		date   pgtype.Date
		method string
	)
	if err := row.Scan(&t.ID, &t.FamilyID, &t.CreatedBy, &amount, &date, &t.CategoryID, &method, &t.Description, &t.CreatedAt); err != nil {
		return core.Transaction{}, err
	}
	cents, err := NumericToCents(amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", t.ID, err)
	}
	t.Amount = core.Money{Cents: cents}
	t.Date = core.DateOf(date.Time)
	t.PaymentMethod = core.PaymentMethod(method)
	return t, nil
}

// NumericToCents converts a numeric(12,2) value to integer cents, rounding
// half away from zero past the second decimal.
func NumericToCents(n pgtype.Numeric) (int64, error) {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite || n.Int == nil {
		return 0, fmt.Errorf("amount is not a finite number")
	}
	return decimal.NewFromBigInt(n.Int, n.Exp).Shift(2).Round(0).IntPart(), nil
}

// CentsToNumeric is the inverse of NumericToCents.
func CentsToNumeric(cents int64) pgtype.Numeric {
	return pgtype.Numeric{Int: big.NewInt(cents), Exp: -2, Valid: true}
}
