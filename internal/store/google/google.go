// Package google is the tabular record and account store, backed by one
// Google Sheets worksheet with the columns fecha, tipo, categoria, monto,
// descripcion, usuario, password plus a store-maintained id column.
// Accounts live in the same sheet as REGISTRO sentinel rows; both
// namespaces are kept apart behind the store ports.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"finanzia/internal/core"
	"finanzia/internal/store"

	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string

	mu      sync.Mutex
	sheetID int64
	sheetOK bool
}

// Ensure interface conformance
var (
	_ store.MovementAppender = (*Client)(nil)
	_ store.MovementLister   = (*Client)(nil)
	_ store.MovementDeleter  = (*Client)(nil)
	_ store.AccountCreator   = (*Client)(nil)
	_ store.AccountFinder    = (*Client)(nil)
)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Optional: GOOGLE_SHEET_NAME (default "Hoja 1"),
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS for auth.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Hoja 1"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// readRows fetches and decodes all data rows. A sheet that does not exist
// yet, or exists without any data, degrades to an empty result set instead
// of an error: absence of backing data means "no data yet", which keeps
// first-time use working before anything was written.
func (c *Client) readRows(ctx context.Context) ([]sheetRow, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:H", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && (apiErr.Code == 400 || apiErr.Code == 404) {
			slog.WarnContext(ctx, "Sheet not readable, treating as empty",
				"sheet", c.sheetName, "code", apiErr.Code)
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	var rows []sheetRow
	for i, raw := range resp.Values {
		row, ok := parseRow(i, raw)
		if !ok {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *Client) appendRow(ctx context.Context, values []interface{}) error {
	rng := fmt.Sprintf("%s!A:H", c.sheetName)
	vr := &gsheet.ValueRange{Values: [][]interface{}{values}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append row to %s: %w", c.sheetName, err)
	}
	return nil
}

// Append implements store.MovementAppender. The id column is maintained by
// this store: the next id is one past the highest id present, so identity
// never depends on row positions or full-row matching.
func (c *Client) Append(ctx context.Context, m core.Movement) (int64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	rows, err := c.readRows(ctx)
	if err != nil {
		return 0, err
	}
	var maxID int64
	for _, r := range rows {
		if !r.account && r.movement.ID > maxID {
			maxID = r.movement.ID
		}
	}
	m.ID = maxID + 1
	if err := c.appendRow(ctx, movementValues(m)); err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Movement saved to sheet",
		"id", m.ID,
		"kind", m.Kind,
		"category", m.Category,
		"amount_cents", m.Amount.Cents,
		"owner", m.Owner)

	return m.ID, nil
}

// AppendWithID writes a movement keeping its already-assigned id. The sync
// worker uses it to mirror SQLite rows without renumbering them.
func (c *Client) AppendWithID(ctx context.Context, m core.Movement) error {
	if m.ID <= 0 {
		return fmt.Errorf("movement id must be assigned, got %d", m.ID)
	}
	if err := m.Validate(); err != nil {
		return err
	}
	rows, err := c.readRows(ctx)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if !r.account && r.movement.ID == m.ID {
			// Already mirrored; redelivered messages are a no-op.
			return nil
		}
	}
	return c.appendRow(ctx, movementValues(m))
}

// List implements store.MovementLister. Sentinel rows never surface.
func (c *Client) List(ctx context.Context, owner string, f store.MonthFilter) ([]core.Movement, error) {
	rows, err := c.readRows(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.Movement
	for _, r := range rows {
		if r.account || r.movement.Owner != owner || !f.Contains(r.movement.Date) {
			continue
		}
		out = append(out, r.movement)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Delete implements store.MovementDeleter by removing the matching row.
func (c *Client) Delete(ctx context.Context, owner string, id int64) error {
	rows, err := c.readRows(ctx)
	if err != nil {
		return err
	}
	rowIndex := -1
	for _, r := range rows {
		if !r.account && r.movement.ID == id && r.movement.Owner == owner {
			rowIndex = r.rowIndex
			break
		}
	}
	if rowIndex < 0 {
		return core.ErrNotFound
	}

	sheetID, err := c.resolveSheetID(ctx)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowIndex),
					EndIndex:   int64(rowIndex) + 1,
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d: %w", rowIndex+1, err)
	}

	slog.InfoContext(ctx, "Movement deleted from sheet", "id", id, "owner", owner)
	return nil
}

// CreateAccount implements store.AccountCreator via a sentinel row.
func (c *Client) CreateAccount(ctx context.Context, a core.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	rows, err := c.readRows(ctx)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if r.account && r.movement.Owner == a.Username {
			return core.ErrAlreadyExists
		}
	}
	if err := c.appendRow(ctx, accountValues(a)); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Account created in sheet", "username", a.Username)
	return nil
}

// FindAccount implements store.AccountFinder.
func (c *Client) FindAccount(ctx context.Context, username string) (core.Account, error) {
	rows, err := c.readRows(ctx)
	if err != nil {
		return core.Account{}, err
	}
	for _, r := range rows {
		if r.account && r.movement.Owner == username {
			return core.Account{
				Username:  username,
				Password:  r.password,
				CreatedAt: r.movement.Date,
			}, nil
		}
	}
	return core.Account{}, core.ErrNotFound
}

// resolveSheetID looks up the numeric sheet id for the configured worksheet
// title, caching it for later deletions.
func (c *Client) resolveSheetID(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sheetOK {
		return c.sheetID, nil
	}
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == c.sheetName {
			c.sheetID = sh.Properties.SheetId
			c.sheetOK = true
			return c.sheetID, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found in spreadsheet", c.sheetName)
}
