package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"finanzia/internal/core"
)

// Wire values of the account sentinel rows. They exist only inside this
// package; listings never surface them.
const (
	sentinelKind     = "REGISTRO"
	sentinelCategory = "SISTEMA"
	sentinelNote     = "Nuevo Usuario"
)

const dateLayout = "2006-01-02"

// sheetRow is one decoded data row of the shared sheet. A row is either a
// movement (password blank) or an account sentinel (password set).
type sheetRow struct {
	// rowIndex is the 0-based index within the spreadsheet, used for
	// row deletion requests.
	rowIndex int
	movement core.Movement
	password string
	account  bool
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func cell(cols []string, idx int) string {
	if idx < 0 || idx >= len(cols) {
		return ""
	}
	return cols[idx]
}

// parseRow decodes one raw sheet row. ok is false for header rows and rows
// too malformed to carry data; listing is best-effort, like the stored
// sheets themselves.
func parseRow(rowIndex int, raw []interface{}) (sheetRow, bool) {
	cols := toStrings(raw)
	if len(cols) < 6 {
		return sheetRow{}, false
	}

	fecha := cell(cols, 0)
	date, err := parseDate(fecha)
	if err != nil {
		// Header or junk row
		return sheetRow{}, false
	}

	tipo := cell(cols, 1)
	row := sheetRow{
		rowIndex: rowIndex,
		password: cell(cols, 6),
	}

	if tipo == sentinelKind {
		row.account = true
		row.movement = core.Movement{
			Date:  date,
			Owner: cell(cols, 5),
		}
		return row, row.movement.Owner != ""
	}

	cents, ok := parseAmountToCents(cell(cols, 3))
	if !ok {
		return sheetRow{}, false
	}
	// Rows predating the id column decode with id 0. They still list;
	// deletion needs an assigned id.
	id, _ := strconv.ParseInt(cell(cols, 7), 10, 64)
	row.movement = core.Movement{
		ID:       id,
		Date:     date,
		Kind:     core.Kind(tipo),
		Category: core.Category(cell(cols, 2)),
		Amount:   core.Money{Cents: cents},
		Note:     cell(cols, 4),
		Owner:    cell(cols, 5),
	}
	return row, row.movement.Owner != ""
}

// movementValues encodes a movement as one sheet row, password column blank.
func movementValues(m core.Movement) []interface{} {
	return []interface{}{
		m.Date.UTC().Format(dateLayout),
		string(m.Kind),
		string(m.Category),
		m.Amount.Float(),
		m.Note,
		m.Owner,
		"", // password stays blank for movement rows
		strconv.FormatInt(m.ID, 10),
	}
}

// accountValues encodes an account as a sentinel row.
func accountValues(a core.Account) []interface{} {
	return []interface{}{
		a.CreatedAt.UTC().Format(dateLayout),
		sentinelKind,
		sentinelCategory,
		0,
		sentinelNote,
		a.Username,
		a.Password,
		"",
	}
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// parseAmountToCents accepts a decimal cell value with either dot or comma
// separator and rounds half up on the third decimal.
func parseAmountToCents(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return int64((f * 100.0) + 0.5), true
}
