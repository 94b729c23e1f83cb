package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validMovement() Movement {
	return Movement{
		Date:     time.Now().UTC(),
		Kind:     Expense,
		Category: Comida,
		Amount:   Money{Cents: 1250},
		Note:     "groceries",
		Owner:    "ana",
	}
}

func TestMovementValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Movement)
		wantErr error
	}{
		{name: "valid expense", mutate: func(m *Movement) {}},
		{name: "valid income", mutate: func(m *Movement) { m.Kind = Income }},
		{name: "zero amount", mutate: func(m *Movement) { m.Amount = Money{} }},
		{name: "empty note", mutate: func(m *Movement) { m.Note = "" }},
		{name: "unknown kind", mutate: func(m *Movement) { m.Kind = "Prestito" }, wantErr: ErrInvalidKind},
		{name: "empty kind", mutate: func(m *Movement) { m.Kind = "" }, wantErr: ErrInvalidKind},
		{name: "unknown category", mutate: func(m *Movement) { m.Category = "Viajes" }, wantErr: ErrInvalidCategory},
		{name: "negative amount", mutate: func(m *Movement) { m.Amount = Money{Cents: -1} }, wantErr: ErrInvalidAmount},
		{name: "missing owner", mutate: func(m *Movement) { m.Owner = "  " }, wantErr: ErrEmptyOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMovement()
			tt.mutate(&m)
			err := m.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMovementValidateNoteUnbounded(t *testing.T) {
	// The note is optional free text with no length cap.
	m := validMovement()
	for _, n := range []int{0, 200, 201, 5000} {
		m.Note = strings.Repeat("x", n)
		if err := m.Validate(); err != nil {
			t.Fatalf("%d-char note rejected: %v", n, err)
		}
	}
}

func TestAccountValidate(t *testing.T) {
	tests := []struct {
		name    string
		account Account
		wantErr error
	}{
		{name: "valid", account: Account{Username: "ana", Password: "secret"}},
		{name: "blank username", account: Account{Username: " ", Password: "secret"}, wantErr: ErrEmptyUsername},
		{name: "empty password", account: Account{Username: "ana"}, wantErr: ErrEmptyPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCategories(t *testing.T) {
	want := []Category{Comida, Salud, Transporte, Hogar, Otros}
	got := Categories()
	if len(got) != len(want) {
		t.Fatalf("Categories() returned %d labels, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Categories()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
