package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Expense Kind = "Gasto"
	Income  Kind = "Ingreso"
)

const (
	Comida     Category = "Comida"
	Salud      Category = "Salud"
	Transporte Category = "Transporte"
	Hogar      Category = "Hogar"
	Otros      Category = "Otros"
)

type (
	// Kind discriminates a movement between expense and income.
	// Values match the stored wire labels.
	Kind string

	// Category is one of the fixed spending labels.
	Category string

	// Movement is a single income or expense entry. The ID is assigned by
	// the record store on creation; Date and Owner are assigned by the
	// ledger service. Movements are never updated, only deleted.
	Movement struct {
		ID       int64
		Date     time.Time
		Kind     Kind
		Category Category
		Amount   Money
		Note     string
		Owner    string
	}

	// Account is a registered user's credential record. The password is
	// stored and compared verbatim; see the auth package.
	Account struct {
		Username  string
		Password  string
		CreatedAt time.Time
	}

	// Session is the authenticated-username handle produced by a
	// successful login. Every ledger operation is scoped by one.
	Session struct {
		Username string
	}

	// CategoryAmount is an amount aggregated under a category label.
	CategoryAmount struct {
		Category Category
		Amount   Money
	}
)

var (
	ErrAlreadyExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")

	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidKind     = errors.New("invalid movement kind")
	ErrInvalidCategory = errors.New("invalid category")
	ErrEmptyUsername   = errors.New("empty username")
	ErrEmptyPassword   = errors.New("empty password")
	ErrEmptyOwner      = errors.New("empty owner")
)

// Categories lists the recognized spending labels in display order.
func Categories() []Category {
	return []Category{Comida, Salud, Transporte, Hogar, Otros}
}

func (k Kind) Validate() error {
	switch k {
	case Expense, Income:
		return nil
	default:
		return ErrInvalidKind
	}
}

func (c Category) Validate() error {
	for _, known := range Categories() {
		if c == known {
			return nil
		}
	}
	return ErrInvalidCategory
}

func (m Movement) Validate() error {
	if err := m.Kind.Validate(); err != nil {
		return err
	}
	if err := m.Category.Validate(); err != nil {
		return err
	}
	if m.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(m.Owner) == "" {
		return ErrEmptyOwner
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Username) == "" {
		return ErrEmptyUsername
	}
	if a.Password == "" {
		return ErrEmptyPassword
	}
	return nil
}
