package export

import (
	"io"

	"github.com/jrsteele09/hrdash/dashboard"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const (
	ReportsSheet = "Reports"
	DetailSheet  = "Report Detail"
)

var (
	reportsColWidths = []float64{10, 15, 10, 15, 15, 20, 10, 50}
	detailColWidths  = []float64{20, 80}
)

// ReportsXLSX writes the reports list as a single-sheet workbook
func ReportsXLSX(w io.Writer, reports []dashboard.ReportSummary) error {
	return writeXLSX(w, ReportsSheet, reportsRows(reports), reportsColWidths)
}

// ReportDetailXLSX writes one report as a two-column workbook
func ReportDetailXLSX(w io.Writer, report *dashboard.ReportDetail) error {
	if report == nil {
		return errors.New("[ReportDetailXLSX] report is nil")
	}
	return writeXLSX(w, DetailSheet, detailRows(report), detailColWidths)
}

func writeXLSX(w io.Writer, sheet string, rows [][]string, widths []float64) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return errors.Wrap(err, "[writeXLSX] rename sheet")
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.Wrap(err, "[writeXLSX] cell name")
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return errors.Wrapf(err, "[writeXLSX] row %d", i+1)
		}
	}

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return errors.Wrap(err, "[writeXLSX] column name")
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return errors.Wrapf(err, "[writeXLSX] width of %s", col)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "[writeXLSX] header style")
	}
	last, err := excelize.ColumnNumberToName(len(widths))
	if err != nil {
		return errors.Wrap(err, "[writeXLSX] column name")
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", bold); err != nil {
		return errors.Wrap(err, "[writeXLSX] apply header style")
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "[writeXLSX] write workbook")
	}
	return nil
}
