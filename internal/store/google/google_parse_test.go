package google

import (
	"testing"
	"time"

	"finanzia/internal/core"
)

func TestParseRowMovement(t *testing.T) {
	raw := []interface{}{"2025-03-10", "Gasto", "Comida", "12.34", "groceries", "ana", "", "7"}
	row, ok := parseRow(3, raw)
	if !ok {
		t.Fatal("movement row rejected")
	}
	if row.account {
		t.Fatal("movement row classified as account")
	}
	if row.rowIndex != 3 {
		t.Fatalf("rowIndex = %d, want 3", row.rowIndex)
	}

	m := row.movement
	if m.ID != 7 {
		t.Fatalf("id = %d, want 7", m.ID)
	}
	if m.Kind != core.Expense || m.Category != core.Comida {
		t.Fatalf("kind/category = %s/%s", m.Kind, m.Category)
	}
	if m.Amount.Cents != 1234 {
		t.Fatalf("amount = %d cents, want 1234", m.Amount.Cents)
	}
	if m.Note != "groceries" || m.Owner != "ana" {
		t.Fatalf("note/owner = %q/%q", m.Note, m.Owner)
	}
	want := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	if !m.Date.Equal(want) {
		t.Fatalf("date = %v, want %v", m.Date, want)
	}
}

func TestParseRowAccountSentinel(t *testing.T) {
	raw := []interface{}{"2025-01-05", "REGISTRO", "SISTEMA", "0", "Nuevo Usuario", "ana", "secret", ""}
	row, ok := parseRow(1, raw)
	if !ok {
		t.Fatal("sentinel row rejected")
	}
	if !row.account {
		t.Fatal("sentinel row not classified as account")
	}
	if row.movement.Owner != "ana" || row.password != "secret" {
		t.Fatalf("owner/password = %q/%q", row.movement.Owner, row.password)
	}
}

func TestParseRowRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  []interface{}
	}{
		{name: "header", raw: []interface{}{"Fecha", "Tipo", "Categoria", "Monto", "Descripcion", "Usuario"}},
		{name: "too short", raw: []interface{}{"2025-03-10", "Gasto", "Comida"}},
		{name: "bad amount", raw: []interface{}{"2025-03-10", "Gasto", "Comida", "abc", "", "ana"}},
		{name: "negative amount", raw: []interface{}{"2025-03-10", "Gasto", "Comida", "-5", "", "ana"}},
		{name: "missing owner", raw: []interface{}{"2025-03-10", "Gasto", "Comida", "5", "", ""}},
		{name: "empty", raw: []interface{}{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := parseRow(0, tt.raw); ok {
				t.Fatal("row accepted, want rejection")
			}
		})
	}
}

func TestParseRowWithoutIDColumn(t *testing.T) {
	// Rows written before the id column existed still list; they carry
	// id 0 and stay read-only until rewritten with an id.
	raw := []interface{}{"2025-03-10", "Gasto", "Comida", "12.34", "groceries", "ana"}
	row, ok := parseRow(2, raw)
	if !ok {
		t.Fatal("id-less row rejected")
	}
	if row.movement.ID != 0 {
		t.Fatalf("id = %d, want 0", row.movement.ID)
	}
	if row.movement.Owner != "ana" || row.movement.Amount.Cents != 1234 {
		t.Fatalf("row = %+v", row.movement)
	}
}

func TestParseRowCommaAmount(t *testing.T) {
	raw := []interface{}{"2025-03-10", "Ingreso", "Otros", "1500,50", "", "ana", "", "2"}
	row, ok := parseRow(0, raw)
	if !ok {
		t.Fatal("comma-amount row rejected")
	}
	if row.movement.Amount.Cents != 150050 {
		t.Fatalf("amount = %d cents, want 150050", row.movement.Amount.Cents)
	}
}

func TestParseRowRFC3339Date(t *testing.T) {
	raw := []interface{}{"2025-03-10T15:04:05Z", "Gasto", "Salud", "9.99", "", "ana", "", "4"}
	row, ok := parseRow(0, raw)
	if !ok {
		t.Fatal("RFC3339-dated row rejected")
	}
	if row.movement.Date.Year() != 2025 || row.movement.Date.Month() != time.March {
		t.Fatalf("date = %v", row.movement.Date)
	}
}

func TestMovementValuesRoundTrip(t *testing.T) {
	m := core.Movement{
		ID:       42,
		Date:     time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
		Kind:     core.Income,
		Category: core.Otros,
		Amount:   core.Money{Cents: 250075},
		Note:     "salary",
		Owner:    "ana",
	}

	row, ok := parseRow(0, movementValues(m))
	if !ok {
		t.Fatal("encoded movement row rejected")
	}
	got := row.movement
	if got.ID != m.ID || got.Kind != m.Kind || got.Category != m.Category {
		t.Fatalf("round trip changed identity: %+v", got)
	}
	if got.Amount.Cents != m.Amount.Cents {
		t.Fatalf("amount = %d cents, want %d", got.Amount.Cents, m.Amount.Cents)
	}
	// Only the calendar date survives the sheet format.
	if got.Date.Format("2006-01-02") != "2025-06-01" {
		t.Fatalf("date = %v", got.Date)
	}
}

func TestAccountValuesRoundTrip(t *testing.T) {
	a := core.Account{Username: "ana", Password: "secret", CreatedAt: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)}
	row, ok := parseRow(0, accountValues(a))
	if !ok {
		t.Fatal("encoded account row rejected")
	}
	if !row.account {
		t.Fatal("encoded account row not classified as account")
	}
	if row.movement.Owner != "ana" || row.password != "secret" {
		t.Fatalf("owner/password = %q/%q", row.movement.Owner, row.password)
	}
}
