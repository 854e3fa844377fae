// Package google mirrors transactions into a Google Sheet using a service
// account.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"casalgastos/internal/core"
	applog "casalgastos/internal/log"
	ports "casalgastos/internal/sheets"
)

var _ ports.Mirror = (*Client)(nil)

// Config selects the spreadsheet and the credentials used to reach it.
type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	sheetID       *int64
	logger        *applog.Logger
}

// New creates a Sheets client and makes sure the sheet starts with the header row.
func New(ctx context.Context, cfg Config, logger *applog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if logger == nil {
		logger = applog.Discard()
	}
	creds, err := credentialsJSON(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	c := &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
		logger:        logger.WithComponent(applog.ComponentSheets),
	}
	if c.sheetName == "" {
		c.sheetName = "Transacoes"
	}
	if err := c.ensureHeader(ctx); err != nil {
		return nil, err
	}
	c.logger.InfoContext(ctx, "Google Sheets mirror ready", "sheet", c.sheetName)
	return c, nil
}

// credentialsJSON reads the service account key from inline JSON, a file, or
// GOOGLE_APPLICATION_CREDENTIALS, in that order.
func credentialsJSON(cfg Config) ([]byte, error) {
	inline := strings.TrimSpace(cfg.ServiceAccountJSON)
	file := strings.TrimSpace(cfg.ServiceAccountFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

func (c *Client) ensureHeader(ctx context.Context) error {
	rng := fmt.Sprintf("%s!A1:G1", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", c.sheetName, err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}
	vr := &gsheet.ValueRange{Values: [][]any{toAny(ports.Header)}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header of %s: %w", c.sheetName, err)
	}
	return nil
}

// ids returns column A, one entry per sheet row, header included.
func (c *Client) ids(ctx context.Context) ([]string, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read ids of %s: %w", c.sheetName, err)
	}
	out := make([]string, len(resp.Values))
	for i, row := range resp.Values {
		if len(row) > 0 {
			out[i] = strings.TrimSpace(fmt.Sprint(row[0]))
		}
	}
	return out, nil
}

func (c *Client) Upsert(ctx context.Context, tx core.Transaction) error {
	if tx.ID == "" {
		return errors.New("transaction id is required")
	}
	ids, err := c.ids(ctx)
	if err != nil {
		return err
	}
	vr := &gsheet.ValueRange{Values: [][]any{toAny(ports.Row(tx))}}

	if idx := rowIndex(ids, tx.ID); idx >= 0 {
		rng := fmt.Sprintf("%s!A%d:G%d", c.sheetName, idx+1, idx+1)
		_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("update row %d in %s: %w", idx+1, c.sheetName, err)
		}
		c.logger.DebugContext(ctx, "Mirror row updated", applog.FieldTransactionID, tx.ID, applog.FieldSheetsRow, idx+1)
		return nil
	}

	rng := fmt.Sprintf("%s!A:G", c.sheetName)
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", c.sheetName, err)
	}
	c.logger.DebugContext(ctx, "Mirror row appended", applog.FieldTransactionID, tx.ID)
	return nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	ids, err := c.ids(ctx)
	if err != nil {
		return err
	}
	idx := rowIndex(ids, id)
	if idx < 0 {
		c.logger.DebugContext(ctx, "Mirror row already absent", applog.FieldTransactionID, id)
		return nil
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
					StartIndex: int64(idx),
					EndIndex:   int64(idx + 1),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d in %s: %w", idx+1, c.sheetName, err)
	}
	c.logger.DebugContext(ctx, "Mirror row deleted", applog.FieldTransactionID, id, applog.FieldSheetsRow, idx+1)
	return nil
}

func (c *Client) resolveSheetID(ctx context.Context) (int64, error) {
	if c.sheetID != nil {
		return *c.sheetID, nil
	}
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet: %w", err)
	}
	id, ok := findSheetID(ss.Sheets, c.sheetName)
	if !ok {
		return 0, fmt.Errorf("sheet %q not found", c.sheetName)
	}
	c.sheetID = &id
	return id, nil
}

func findSheetID(sheets []*gsheet.Sheet, name string) (int64, bool) {
	for _, s := range sheets {
		if s.Properties != nil && strings.EqualFold(s.Properties.Title, name) {
			return s.Properties.SheetId, true
		}
	}
	return 0, false
}

// rowIndex returns the zero-based row of id, skipping the header, or -1.
func rowIndex(ids []string, id string) int {
	if id == "" {
		return -1
	}
	for i := 1; i < len(ids); i++ {
		if ids[i] == id {
			return i
		}
	}
	return -1
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
