// Package sheets reads and edits the worksheets of one Google spreadsheet.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/sheets/v4"

	"github.com/gurre/cloud-api-samples/apierr"
	"github.com/gurre/cloud-api-samples/gcp"
)

// Size of a newly added worksheet.
const (
	DefaultRows    = 100
	DefaultColumns = 20
)

// Info describes a spreadsheet.
type Info struct {
	Title  string  `json:"title"`
	Sheets []Sheet `json:"sheets"`
}

// Titles returns the worksheet titles in tab order.
func (i Info) Titles() []string {
	titles := make([]string, 0, len(i.Sheets))
	for _, s := range i.Sheets {
		titles = append(titles, s.Title)
	}
	return titles
}

// Find returns the worksheet with the given title.
func (i Info) Find(title string) (Sheet, bool) {
	for _, s := range i.Sheets {
		if s.Title == title {
			return s, true
		}
	}
	return Sheet{}, false
}

// Sheet is one worksheet.
type Sheet struct {
	ID    int64  `json:"sheetId"`
	Title string `json:"title"`
}

// Client works on one spreadsheet. Every mutation is a single call; there are no transactions
// across calls.
type Client struct {
	api           gcp.SheetsClient
	spreadsheetID string
}

// NewClient creates a Client. An empty spreadsheet id is a configuration error.
func NewClient(api gcp.SheetsClient, spreadsheetID string) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, apierr.Configf("sheets.NewClient", "a spreadsheet id is required")
	}
	return &Client{api: api, spreadsheetID: spreadsheetID}, nil
}

// Info returns the spreadsheet title and its worksheets.
func (c *Client) Info(ctx context.Context) (Info, error) {
	const op = "sheets.spreadsheets.get"
	ss, err := c.api.Get(ctx, c.spreadsheetID)
	if err != nil {
		return Info{}, apierr.Classify(op, err)
	}
	return NormalizeInfo(ss)
}

// NormalizeInfo extracts the title and worksheets of a spreadsheet.
func NormalizeInfo(ss *sheets.Spreadsheet) (Info, error) {
	if ss == nil || ss.Properties == nil {
		return Info{}, apierr.Shapef("sheets.NormalizeInfo", "response has no spreadsheet properties")
	}
	info := Info{Title: ss.Properties.Title, Sheets: make([]Sheet, 0, len(ss.Sheets))}
	for _, s := range ss.Sheets {
		if s == nil || s.Properties == nil {
			continue
		}
		info.Sheets = append(info.Sheets, Sheet{ID: s.Properties.SheetId, Title: s.Properties.Title})
	}
	return info, nil
}

// EnsureSheet returns the worksheet titled title, adding it with the default size when it does
// not exist yet. created reports whether a worksheet was added.
func (c *Client) EnsureSheet(ctx context.Context, title string) (Sheet, bool, error) {
	const op = "sheets.spreadsheets.batchUpdate"
	if strings.TrimSpace(title) == "" {
		return Sheet{}, false, apierr.Configf(op, "a sheet title is required")
	}
	info, err := c.Info(ctx)
	if err != nil {
		return Sheet{}, false, err
	}
	if s, ok := info.Find(title); ok {
		return s, false, nil
	}

	resp, err := c.api.BatchUpdate(ctx, c.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: title,
					GridProperties: &sheets.GridProperties{
						RowCount:    DefaultRows,
						ColumnCount: DefaultColumns,
					},
				},
			},
		}},
	})
	if err != nil {
		return Sheet{}, false, apierr.Classify(op, err)
	}
	if resp == nil || len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return Sheet{}, false, apierr.Shapef(op, "response has no added sheet")
	}
	p := resp.Replies[0].AddSheet.Properties
	return Sheet{ID: p.SheetId, Title: p.Title}, true, nil
}

// A1Range returns a range for a worksheet title, quoting the title.
func A1Range(title, cell string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(title, "'", "''"), cell)
}

// WriteValues writes rows starting at the anchor cell of the worksheet, as entered. It returns
// the number of updated cells.
func (c *Client) WriteValues(ctx context.Context, title, anchor string, rows [][]string) (int64, error) {
	const op = "sheets.spreadsheets.values.update"
	if len(rows) == 0 {
		return 0, apierr.Configf(op, "no rows to write")
	}
	if anchor == "" {
		anchor = "A1"
	}
	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		cells := make([]interface{}, len(row))
		for i, v := range row {
			cells[i] = v
		}
		values = append(values, cells)
	}

	rng := A1Range(title, anchor)
	resp, err := c.api.UpdateValues(ctx, c.spreadsheetID, rng, &sheets.ValueRange{
		Range:          rng,
		MajorDimension: "ROWS",
		Values:         values,
	})
	if err != nil {
		return 0, apierr.Classify(op, err)
	}
	if resp == nil {
		return 0, apierr.Shapef(op, "empty response")
	}
	return resp.UpdatedCells, nil
}

// DeleteSheet removes the worksheet titled title. A missing worksheet is reported with
// deleted=false and no error.
func (c *Client) DeleteSheet(ctx context.Context, title string) (bool, error) {
	const op = "sheets.spreadsheets.batchUpdate"
	info, err := c.Info(ctx)
	if err != nil {
		return false, err
	}
	s, ok := info.Find(title)
	if !ok {
		return false, nil
	}
	_, err = c.api.BatchUpdate(ctx, c.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteSheet: &sheets.DeleteSheetRequest{SheetId: s.ID, ForceSendFields: []string{"SheetId"}},
		}},
	})
	if err != nil {
		return false, apierr.Classify(op, err)
	}
	return true, nil
}
