// Package sheets defines the spreadsheet mirror that receives a copy of every
// transaction. The mirror is write-only from the application's point of view.
package sheets

import (
	"context"

	"casalgastos/internal/core"
)

// Header is the first row of a mirror sheet; each later row is one transaction.
var Header = []string{"id", "date", "family_id", "category_id", "payment_method", "description", "amount"}

// Mirror keeps one row per transaction id.
type Mirror interface {
	// Upsert writes tx, replacing an existing row with the same id.
	Upsert(ctx context.Context, tx core.Transaction) error
	// Delete removes the row of id. A missing row is not an error.
	Delete(ctx context.Context, id string) error
}

// Row renders tx in Header order. The amount is a plain decimal string with a
// dot separator so spreadsheets in any locale read it the same way.
func Row(tx core.Transaction) []string {
	return []string{
		tx.ID,
		tx.Date.String(),
		tx.FamilyID,
		tx.CategoryID,
		string(tx.PaymentMethod),
		tx.Description,
		tx.Amount.Decimal().StringFixed(2),
	}
}
