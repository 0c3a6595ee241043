package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/cashrecon/internal/config"
)

// Repository defines the persistence operations supported by the Google Sheets adapter.
type Repository interface {
	WriteRow(ctx context.Context, sheetRange string, values []interface{}) error
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
	ReplaceRange(ctx context.Context, sheetRange string, rows [][]interface{}) error
}

// GoogleSheetRepository implements the Repository interface using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// WriteRow appends the provided values to the supplied sheet range.
func (r *GoogleSheetRepository) WriteRow(ctx context.Context, sheetRange string, values []interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append row into range %s: %w", sheetRange, err)
	}

	r.logger.Debug("row appended to sheet", zap.String("range", sheetRange))
	return nil
}

// ReadRange fetches a rectangular data range from the spreadsheet.
func (r *GoogleSheetRepository) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	if sheetRange == "" {
		return nil, fmt.Errorf("sheetRange must not be empty")
	}

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, sheetRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}

	return resp.Values, nil
}

// ReplaceRange writes rows from the range's top-left cell and then clears the
// rows below them. Existing data is overwritten before anything is cleared, so
// a failed write leaves the previous contents in place.
func (r *GoogleSheetRepository) ReplaceRange(ctx context.Context, sheetRange string, rows [][]interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	tail, err := tailRange(sheetRange, len(rows))
	if err != nil {
		return err
	}

	if len(rows) > 0 {
		payload := &sheetsapi.ValueRange{Values: rows}
		call := r.service.Spreadsheets.Values.Update(r.spreadsheetID, sheetRange, payload).
			ValueInputOption("RAW").
			Context(ctx)

		if _, err := call.Do(); err != nil {
			return fmt.Errorf("rewrite range %s: %w", sheetRange, err)
		}
	}

	if _, err := r.service.Spreadsheets.Values.Clear(r.spreadsheetID, tail, &sheetsapi.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear range %s: %w", tail, err)
	}

	r.logger.Debug("sheet range rewritten", zap.String("range", sheetRange), zap.Int("rows", len(rows)), zap.String("cleared", tail))
	return nil
}

// tailRange returns the part of an A1 range starting written rows below its
// first row, e.g. ("Sales!A:O", 3) gives "Sales!A4:O".
func tailRange(sheetRange string, written int) (string, error) {
	prefix, cells := "", sheetRange
	if i := strings.LastIndex(sheetRange, "!"); i >= 0 {
		prefix, cells = sheetRange[:i+1], sheetRange[i+1:]
	}

	first, last, ok := strings.Cut(cells, ":")
	if !ok {
		return "", fmt.Errorf("range %s must span columns, e.g. Sales!A:O", sheetRange)
	}

	startCol, startRow := splitCell(first)
	endCol, _ := splitCell(last)
	if startCol == "" || endCol == "" {
		return "", fmt.Errorf("range %s must name its columns", sheetRange)
	}

	row := 1
	if startRow != "" {
		n, err := strconv.Atoi(startRow)
		if err != nil || n < 1 {
			return "", fmt.Errorf("range %s has an invalid start row", sheetRange)
		}
		row = n
	}

	return fmt.Sprintf("%s%s%d:%s", prefix, startCol, row+written, endCol), nil
}

// splitCell separates the column letters and row digits of an A1 cell.
func splitCell(cell string) (string, string) {
	i := strings.IndexFunc(cell, unicode.IsDigit)
	if i < 0 {
		return cell, ""
	}
	return cell[:i], cell[i:]
}
