package reporting

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/cashrecon/internal/domain/models"
)

const (
	summarySheet     = "Summary"
	discrepancySheet = "Discrepancies"
	validationSheet  = "Validation"
	entriesSheet     = "Entries"
)

// BuildWorkbook lays out the entries and the reconciliation result as an XLSX workbook.
func (s *Service) BuildWorkbook(entries []models.SalesEntry, result models.ReconciliationResult) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}
	for _, name := range []string{discrepancySheet, validationSheet, entriesSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	summaryRows := [][]interface{}{
		{"Generated", result.Timestamp.Format("2006-01-02 15:04:05")},
		{"Status", string(result.Overall.Status)},
		{"Confidence", result.Overall.Confidence},
		{"Total Entries", result.Summary.TotalEntries},
		{"Discrepancies", result.Summary.DiscrepancyCount},
		{"Validation Errors", result.Summary.ValidationErrorCount},
		{"Accuracy %", result.Summary.ReconciliationAccuracy},
		{"Total Sales", result.Totals.TotalSales.InexactFloat64()},
		{"Expected Cash", result.Totals.ExpectedCash.InexactFloat64()},
		{"Closing Cash", result.Totals.ClosingCash.InexactFloat64()},
		{"Overall Cash Difference", result.Totals.OverallCashDifference.InexactFloat64()},
		{"Average Discrepancy", result.Summary.AverageDiscrepancy.InexactFloat64()},
		{"Cash Recovery Needed", result.Summary.CashRecoveryNeeded.InexactFloat64()},
	}
	for _, rec := range result.Overall.Recommendations {
		summaryRows = append(summaryRows, []interface{}{"Recommendation", rec})
	}
	if err := writeRows(f, summarySheet, summaryRows); err != nil {
		return nil, err
	}

	discrepancyRows := [][]interface{}{{"Entry ID", "Date", "Register", "Cash Difference", "Severity", "Issues"}}
	for _, d := range result.Discrepancies {
		issues := ""
		for i, issue := range d.Issues {
			if i > 0 {
				issues += "; "
			}
			issues += issue.Description
		}
		discrepancyRows = append(discrepancyRows, []interface{}{
			d.EntryID, d.Date.Format(dateLayout), d.RegisterNumber, d.CashDifference.InexactFloat64(), d.OverallSeverity.String(), issues,
		})
	}
	if err := writeRows(f, discrepancySheet, discrepancyRows); err != nil {
		return nil, err
	}

	validationRows := [][]interface{}{{"Type", "Severity", "Description"}}
	for _, v := range result.ValidationErrors {
		validationRows = append(validationRows, []interface{}{string(v.Type), v.Severity.String(), v.Description})
	}
	if err := writeRows(f, validationSheet, validationRows); err != nil {
		return nil, err
	}

	entryRows := [][]interface{}{{"ID", "Date", "Register", "Opening Cash", "Cash Sales", "Card Sales", "Returns/Refunds", "Cash Drops", "Closing Cash", "Expected Cash", "Cash Difference", "Status"}}
	for _, e := range entries {
		entryRows = append(entryRows, []interface{}{
			e.ID, e.DateKey(), e.RegisterNumber,
			e.OpeningCash.InexactFloat64(), e.CashSales.InexactFloat64(), e.CardSales.InexactFloat64(),
			e.ReturnsRefunds.InexactFloat64(), e.CashDrops.InexactFloat64(), e.ClosingCash.InexactFloat64(),
			e.ExpectedCash.InexactFloat64(), e.CashDifference.InexactFloat64(), string(e.Status),
		})
	}
	if err := writeRows(f, entriesSheet, entryRows); err != nil {
		return nil, err
	}

	return f, nil
}

// WriteWorkbook streams the workbook for the result to w.
func (s *Service) WriteWorkbook(w io.Writer, entries []models.SalesEntry, result models.ReconciliationResult) error {
	f, err := s.BuildWorkbook(entries, result)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Debug("close workbook", zap.Error(err))
		}
	}()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
