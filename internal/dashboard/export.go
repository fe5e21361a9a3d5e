package dashboard

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the exported workbook.
const (
	SheetSummary     = "Summary"
	SheetDepartments = "Departments"
	SheetCategories  = "Categories"
	SheetComments    = "Comments"
)

// Export writes r as an XLSX workbook.
func Export(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	// NewFile starts with "Sheet1".
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	s := r.Summary
	summary := [][]interface{}{
		{"Metric", "Value"},
		{"Total Tickets", s.TotalTickets},
		{"Open Tickets", s.Open},
		{"In Progress", s.InProgress},
		{"Resolved Tickets", s.Resolved},
		{"Closed Tickets", s.Closed},
		{"Total Users", s.TotalUsers},
		{"Total Admins", s.TotalAdmins},
		{"Total Super Admins", s.TotalSuperAdmins},
	}
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return err
	}

	if err := writeSeries(f, SheetDepartments, "Department", r.Departments, true); err != nil {
		return err
	}
	if err := writeSeries(f, SheetCategories, "Category", r.Categories, true); err != nil {
		return err
	}
	if err := writeSeries(f, SheetComments, "Ticket", r.MostComments, false); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSeries(f *excelize.File, sheet, label string, points []Point, share bool) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("new sheet %s: %w", sheet, err)
	}
	header := []interface{}{label, "Count"}
	if share {
		header = append(header, "Share %")
	}
	rows := [][]interface{}{header}
	for _, p := range points {
		row := []interface{}{p.Label, p.Count}
		if share {
			row = append(row, p.Share)
		}
		rows = append(rows, row)
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
