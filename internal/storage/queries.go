package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Profile struct {
	ID       string
	FamilyID string
}

type Category struct {
	ID       string
	FamilyID string
	Name     string
	Icon     string
}

type Transaction struct {
	ID            string
	FamilyID      string
	CreatedBy     string
	AmountCents   int64
	Date          string
	CategoryID    string
	PaymentMethod string
	Description   string
	CreatedAt     string
}

const getProfile = `-- name: GetProfile :one
SELECT id, family_id FROM profiles WHERE id = ?
`

func (q *Queries) GetProfile(ctx context.Context, id string) (Profile, error) {
	row := q.db.QueryRowContext(ctx, getProfile, id)
	var i Profile
	err := row.Scan(&i.ID, &i.FamilyID)
	return i, err
}

const createFamily = `-- name: CreateFamily :exec
INSERT INTO families (id) VALUES (?)
`

func (q *Queries) CreateFamily(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, createFamily, id)
	return err
}

const createProfile = `-- name: CreateProfile :execrows
INSERT INTO profiles (id, family_id) VALUES (?, ?)
ON CONFLICT (id) DO NOTHING
`

type CreateProfileParams struct {
	ID       string
	FamilyID string
}

func (q *Queries) CreateProfile(ctx context.Context, arg CreateProfileParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createProfile, arg.ID, arg.FamilyID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const createCategory = `-- name: CreateCategory :exec
INSERT INTO categories (id, family_id, name, icon) VALUES (?, ?, ?, ?)
`

type CreateCategoryParams struct {
	ID       string
	FamilyID string
	Name     string
	Icon     string
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) error {
	_, err := q.db.ExecContext(ctx, createCategory, arg.ID, arg.FamilyID, arg.Name, arg.Icon)
	return err
}

const listCategories = `-- name: ListCategories :many
SELECT id, family_id, name, icon FROM categories
WHERE family_id = ?
ORDER BY name ASC
`

func (q *Queries) ListCategories(ctx context.Context, familyID string) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories, familyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(&i.ID, &i.FamilyID, &i.Name, &i.Icon); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listTransactions = `-- name: ListTransactions :many
SELECT id, family_id, created_by, amount_cents, date, category_id, payment_method, description, created_at
FROM transactions
WHERE family_id = ? AND date >= ? AND date < ?
ORDER BY date DESC, created_at DESC, rowid DESC
`

type ListTransactionsParams struct {
	FamilyID  string
	StartDate string
	EndDate   string
}

func (q *Queries) ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions, arg.FamilyID, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.FamilyID,
			&i.CreatedBy,
			&i.AmountCents,
			&i.Date,
			&i.CategoryID,
			&i.PaymentMethod,
			&i.Description,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// The insert only happens when the category belongs to the same family;
// otherwise no row is returned.
const createTransaction = `-- name: CreateTransaction :one
INSERT INTO transactions (id, family_id, created_by, amount_cents, date, category_id, payment_method, description, created_at)
SELECT ?1, ?2, ?3, ?4, ?5, ?6, ?7, ?8, ?9
WHERE EXISTS (SELECT 1 FROM categories WHERE id = ?6 AND family_id = ?2)
RETURNING id, family_id, created_by, amount_cents, date, category_id, payment_method, description, created_at
`

type CreateTransactionParams struct {
	ID            string
	FamilyID      string
	CreatedBy     string
	AmountCents   int64
	Date          string
	CategoryID    string
	PaymentMethod string
	Description   string
	CreatedAt     string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.ID,
		arg.FamilyID,
		arg.CreatedBy,
		arg.AmountCents,
		arg.Date,
		arg.CategoryID,
		arg.PaymentMethod,
		arg.Description,
		arg.CreatedAt,
	)
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.FamilyID,
		&i.CreatedBy,
		&i.AmountCents,
		&i.Date,
		&i.CategoryID,
		&i.PaymentMethod,
		&i.Description,
		&i.CreatedAt,
	)
	return i, err
}

const deleteTransaction = `-- name: DeleteTransaction :execrows
DELETE FROM transactions WHERE id = ? AND family_id = ?
`

type DeleteTransactionParams struct {
	ID       string
	FamilyID string
}

func (q *Queries) DeleteTransaction(ctx context.Context, arg DeleteTransactionParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, arg.ID, arg.FamilyID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
