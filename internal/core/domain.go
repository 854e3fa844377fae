package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the calendar representation used on the wire and in storage.
const DateLayout = "2006-01-02"

const (
	PaymentPix      PaymentMethod = "pix"
	PaymentCard     PaymentMethod = "cartao"
	PaymentCash     PaymentMethod = "dinheiro"
	PaymentBankSlip PaymentMethod = "boleto"
)

type (
	PaymentMethod string

	// Date is a calendar day. The time part is always midnight UTC.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Profile struct {
		ID       string // identity key
		FamilyID string
	}

	Category struct {
		ID       string
		FamilyID string
		Name     string
		Icon     string
	}

	Transaction struct {
		ID            string
		FamilyID      string
		CreatedBy     string
		Amount        Money
		Date          Date
		CategoryID    string
		PaymentMethod PaymentMethod
		Description   string
		CreatedAt     time.Time
	}
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidDate    = errors.New("invalid date")
	ErrEmptyFamily    = errors.New("empty family id")
	ErrEmptyAuthor    = errors.New("empty author")
	ErrEmptyCategory  = errors.New("empty category")
	ErrDescriptionLen = errors.New("description too long (max 200 characters)")

	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

// MaxDescriptionLen is the longest description accepted, in characters.
const MaxDescriptionLen = 200

// PaymentMethods lists the accepted payment methods in display order.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentPix, PaymentCard, PaymentCash, PaymentBankSlip}
}

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentPix, PaymentCard, PaymentCash, PaymentBankSlip:
		return true
	default:
		return false
	}
}

// Label returns the name shown in forms and tables.
func (p PaymentMethod) Label() string {
	switch p {
	case PaymentPix:
		return "Pix"
	case PaymentCard:
		return "Cartão"
	case PaymentCash:
		return "Dinheiro"
	case PaymentBankSlip:
		return "Boleto"
	default:
		return string(p)
	}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the clock and location of t, keeping its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Validate checks the fields a backend relies on. Category membership and payment
// method are left to the backend's access policy.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.FamilyID) == "" {
		return ErrEmptyFamily
	}
	if strings.TrimSpace(t.CreatedBy) == "" {
		return ErrEmptyAuthor
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLen {
		return ErrDescriptionLen
	}
	return nil
}

// DefaultCategories are seeded into every new family.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Casa", Icon: "🏠"},
		{Name: "Educação", Icon: "📚"},
		{Name: "Lazer", Icon: "🎉"},
		{Name: "Mercado", Icon: "🛒"},
		{Name: "Outros", Icon: "📦"},
		{Name: "Restaurantes", Icon: "🍽️"},
		{Name: "Saúde", Icon: "💊"},
		{Name: "Transporte", Icon: "🚗"},
	}
}
