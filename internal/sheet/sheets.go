package sheet

import (
	"context"
	"fmt"
	"os"

	"github.com/dvloznov/finance-dashboard/internal/domain"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsClient reads ranges from Google Sheets with a service account.
type SheetsClient struct {
	srv *sheets.Service
}

// NewSheetsClient creates a client from a service account JSON key file.
func NewSheetsClient(ctx context.Context, credentialsFile string) (*SheetsClient, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(b, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials file: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets client: %w", err)
	}
	return &SheetsClient{srv: srv}, nil
}

// FetchSheet reads readRange, or the whole first worksheet when readRange is
// empty. Numbers come back unformatted and dates as formatted strings.
func (c *SheetsClient) FetchSheet(ctx context.Context, spreadsheetID, readRange string) (domain.Sheet, error) {
	if readRange == "" {
		title, err := c.firstSheetTitle(ctx, spreadsheetID)
		if err != nil {
			return nil, err
		}
		readRange = title
	}

	resp, err := c.srv.Spreadsheets.Values.Get(spreadsheetID, readRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve data from sheet: %w", err)
	}
	return valuesToSheet(resp.Values), nil
}

func (c *SheetsClient) firstSheetTitle(ctx context.Context, spreadsheetID string) (string, error) {
	sp, err := c.srv.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("unable to get spreadsheet: %w", err)
	}
	if len(sp.Sheets) == 0 || sp.Sheets[0].Properties == nil {
		return "", fmt.Errorf("%w: spreadsheet %s has no worksheets", ErrUnreadable, spreadsheetID)
	}
	return sp.Sheets[0].Properties.Title, nil
}

// valuesToSheet converts the JSON values of a ValueRange into cells.
func valuesToSheet(values [][]interface{}) domain.Sheet {
	out := make(domain.Sheet, len(values))
	for r, vals := range values {
		row := make(domain.Row, len(vals))
		for c, v := range vals {
			row[c] = valueToCell(v)
		}
		out[r] = row
	}
	return out
}

func valueToCell(v interface{}) domain.Cell {
	switch x := v.(type) {
	case nil:
		return domain.Cell{}
	case string:
		return domain.TextCell(x)
	case float64:
		return domain.FloatCell(x)
	case bool:
		if x {
			return domain.TextCell("TRUE")
		}
		return domain.TextCell("FALSE")
	default:
		return domain.TextCell(fmt.Sprint(x))
	}
}
