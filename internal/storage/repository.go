package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"casalgastos/internal/core"

	_ "modernc.org/sqlite"
)

// Fixed-width so created_at sorts lexically.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

// dsn enables foreign keys and waits on locks instead of failing fast.
func dsn(dbPath string) string {
	return dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
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

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) GetProfile(ctx context.Context, userID string) (core.Profile, error) {
	p, err := r.queries.GetProfile(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Profile{}, core.ErrNotFound
	}
	if err != nil {
		return core.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return core.Profile{ID: p.ID, FamilyID: p.FamilyID}, nil
}

// EnsureProfileAndFamily creates a family with the default categories for an
// identity that has no profile yet. Existing profiles are left untouched.
func (r *SQLiteRepository) EnsureProfileAndFamily(ctx context.Context, userID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin provisioning: %w", err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)

	if _, err := q.GetProfile(ctx, userID); err == nil {
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("get profile: %w", err)
	}

	familyID := uuid.NewString()
	if err := q.CreateFamily(ctx, familyID); err != nil {
		return fmt.Errorf("create family: %w", err)
	}
	n, err := q.CreateProfile(ctx, CreateProfileParams{ID: userID, FamilyID: familyID})
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	if n == 0 {
		// another request provisioned this identity first
		return nil
	}
	for _, c := range core.DefaultCategories() {
		if err := q.CreateCategory(ctx, CreateCategoryParams{
			ID:       uuid.NewString(),
			FamilyID: familyID,
			Name:     c.Name,
			Icon:     c.Icon,
		}); err != nil {
			return fmt.Errorf("create category %s: %w", c.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit provisioning: %w", err)
	}

	slog.InfoContext(ctx, "Provisioned family", "user_id", userID, "family_id", familyID)
	return nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, familyID string) ([]core.Category, error) {
	rows, err := r.queries.ListCategories(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, len(rows))
	for i, c := range rows {
		out[i] = core.Category{ID: c.ID, FamilyID: c.FamilyID, Name: c.Name, Icon: c.Icon}
	}
	return out, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, familyID string, w core.MonthWindow) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx, ListTransactionsParams{
		FamilyID:  familyID,
		StartDate: w.Start.String(),
		EndDate:   w.End.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := toCore(row)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

func (r *SQLiteRepository) InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	row, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		ID:            uuid.NewString(),
		FamilyID:      t.FamilyID,
		CreatedBy:     t.CreatedBy,
		AmountCents:   t.Amount.Cents,
		Date:          t.Date.String(),
		CategoryID:    t.CategoryID,
		PaymentMethod: string(t.PaymentMethod),
		Description:   t.Description,
		CreatedAt:     r.now().UTC().Format(createdAtLayout),
	})
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrAccessDenied
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", row.ID,
		"family_id", row.FamilyID,
		"amount_cents", row.AmountCents,
		"date", row.Date)

	return toCore(row)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, familyID, id string) error {
	n, err := r.queries.DeleteTransaction(ctx, DeleteTransactionParams{ID: id, FamilyID: familyID})
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	slog.InfoContext(ctx, "Transaction deleted from SQLite", "id", id, "family_id", familyID)
	return nil
}

func toCore(row Transaction) (core.Transaction, error) {
	d, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s has bad date %q: %w", row.ID, row.Date, err)
	}
	createdAt, err := time.Parse(createdAtLayout, strings.TrimSpace(row.CreatedAt))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s has bad created_at %q: %w", row.ID, row.CreatedAt, err)
	}
	return core.Transaction{
		ID:            row.ID,
		FamilyID:      row.FamilyID,
		CreatedBy:     row.CreatedBy,
		Amount:        core.Money{Cents: row.AmountCents},
		Date:          d,
		CategoryID:    row.CategoryID,
		PaymentMethod: core.PaymentMethod(row.PaymentMethod),
		Description:   row.Description,
		CreatedAt:     createdAt,
	}, nil
}
