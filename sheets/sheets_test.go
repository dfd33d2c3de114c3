package sheets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/sheets/v4"

	"github.com/gurre/cloud-api-samples/apierr"
)

// fakeSheetsClient keeps worksheets in memory and applies AddSheet and DeleteSheet requests.
type fakeSheetsClient struct {
	title   string
	sheets  []*sheets.SheetProperties
	nextID  int64
	batches []*sheets.BatchUpdateSpreadsheetRequest
	updates []*sheets.ValueRange
	ranges  []string
	getErr  error
}

func newFakeSheetsClient(titles ...string) *fakeSheetsClient {
	f := &fakeSheetsClient{title: "サンプル", nextID: 100}
	for i, t := range titles {
		f.sheets = append(f.sheets, &sheets.SheetProperties{SheetId: int64(i), Title: t})
	}
	return f
}

func (f *fakeSheetsClient) Get(ctx context.Context, spreadsheetID string) (*sheets.Spreadsheet, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	ss := &sheets.Spreadsheet{SpreadsheetId: spreadsheetID, Properties: &sheets.SpreadsheetProperties{Title: f.title}}
	for _, p := range f.sheets {
		ss.Sheets = append(ss.Sheets, &sheets.Sheet{Properties: p})
	}
	return ss, nil
}

func (f *fakeSheetsClient) BatchUpdate(ctx context.Context, spreadsheetID string, req *sheets.BatchUpdateSpreadsheetRequest) (*sheets.BatchUpdateSpreadsheetResponse, error) {
	f.batches = append(f.batches, req)
	resp := &sheets.BatchUpdateSpreadsheetResponse{}
	for _, r := range req.Requests {
		switch {
		case r.AddSheet != nil:
			p := *r.AddSheet.Properties
			p.SheetId = f.nextID
			f.nextID++
			f.sheets = append(f.sheets, &p)
			resp.Replies = append(resp.Replies, &sheets.Response{AddSheet: &sheets.AddSheetResponse{Properties: &p}})
		case r.DeleteSheet != nil:
			for i, p := range f.sheets {
				if p.SheetId == r.DeleteSheet.SheetId {
					f.sheets = append(f.sheets[:i], f.sheets[i+1:]...)
					break
				}
			}
			resp.Replies = append(resp.Replies, &sheets.Response{})
		}
	}
	return resp, nil
}

func (f *fakeSheetsClient) UpdateValues(ctx context.Context, spreadsheetID, rng string, values *sheets.ValueRange) (*sheets.UpdateValuesResponse, error) {
	f.ranges = append(f.ranges, rng)
	f.updates = append(f.updates, values)
	var cells int64
	for _, row := range values.Values {
		cells += int64(len(row))
	}
	return &sheets.UpdateValuesResponse{UpdatedCells: cells, UpdatedRange: rng}, nil
}

func TestNewClientRequiresID(t *testing.T) {
	_, err := NewClient(newFakeSheetsClient(), "")
	assert.Equal(t, apierr.KindConfiguration, apierr.KindOf(err))
}

func TestInfo(t *testing.T) {
	c, err := NewClient(newFakeSheetsClient("シート1", "集計"), "sheet-id")
	require.NoError(t, err)

	info, err := c.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "サンプル", info.Title)
	assert.Equal(t, []string{"シート1", "集計"}, info.Titles())

	f := newFakeSheetsClient()
	f.getErr = &googleapi.Error{Code: 404, Message: "Requested entity was not found."}
	c, _ = NewClient(f, "missing")
	_, err = c.Info(context.Background())
	assert.Equal(t, apierr.KindProvider, apierr.KindOf(err))
}

func TestEnsureSheetCreatesOnce(t *testing.T) {
	f := newFakeSheetsClient("シート1")
	c, _ := NewClient(f, "sheet-id")
	ctx := context.Background()

	s, created, err := c.EnsureSheet(ctx, "新しいシート")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "新しいシート", s.Title)
	require.Len(t, f.batches, 1)
	grid := f.batches[0].Requests[0].AddSheet.Properties.GridProperties
	assert.Equal(t, int64(100), grid.RowCount)
	assert.Equal(t, int64(20), grid.ColumnCount)

	again, created, err := c.EnsureSheet(ctx, "新しいシート")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, s.ID, again.ID)
	assert.Len(t, f.batches, 1)
}

func TestWriteValues(t *testing.T) {
	f := newFakeSheetsClient("新しいシート")
	c, _ := NewClient(f, "sheet-id")

	rows := [][]string{
		{"名前", "年齢", "都市"},
		{"山田太郎", "30", "東京"},
		{"佐藤花子", "25", "大阪"},
		{"鈴木一郎", "40", "名古屋"},
	}
	n, err := c.WriteValues(context.Background(), "新しいシート", "", rows)
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
	assert.Equal(t, []string{"'新しいシート'!A1"}, f.ranges)
	assert.Equal(t, "名前", f.updates[0].Values[0][0])

	_, err = c.WriteValues(context.Background(), "新しいシート", "A1", nil)
	assert.Equal(t, apierr.KindConfiguration, apierr.KindOf(err))
}

func TestA1RangeQuotes(t *testing.T) {
	assert.Equal(t, "'Bob''s sheet'!B2", A1Range("Bob's sheet", "B2"))
}

func TestDeleteSheet(t *testing.T) {
	f := newFakeSheetsClient("シート1", "新しいシート")
	c, _ := NewClient(f, "sheet-id")
	ctx := context.Background()

	deleted, err := c.DeleteSheet(ctx, "新しいシート")
	require.NoError(t, err)
	assert.True(t, deleted)
	info, _ := c.Info(ctx)
	assert.Equal(t, []string{"シート1"}, info.Titles())

	deleted, err = c.DeleteSheet(ctx, "新しいシート")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Len(t, f.batches, 1)
}

func TestNormalizeInfoShape(t *testing.T) {
	_, err := NormalizeInfo(&sheets.Spreadsheet{})
	assert.Equal(t, apierr.KindShape, apierr.KindOf(err))
}
