package tickets

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/goatkit/kamdesk/internal/models"
)

// ExportSheet is the sheet name of a ticket export.
const ExportSheet = "Tickets"

var exportHeader = []interface{}{
	"ID", "Title", "Department", "Category", "Sub-category", "Location",
	"Status", "Assigned To", "Requester", "Email", "Phone", "Created", "Comments",
}

// Export writes tickets as an XLSX workbook, one row per ticket in order.
func Export(w io.Writer, tickets []models.Ticket) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(ExportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, t := range tickets {
		assignee := ""
		if t.AssignedTo != nil {
			assignee = t.AssignedTo.Name
		}
		row := []interface{}{
			t.ID, t.Title, t.Department, t.Category, t.SubCategory, t.Location,
			string(t.Status), assignee, t.FullName, t.Email, t.Phone,
			DisplayDate(t.CreatedAt), len(t.Comments),
		}
		if err := f.SetSheetRow(ExportSheet, "A"+strconv.Itoa(i+2), &row); err != nil {
			return fmt.Errorf("write ticket %s: %w", t.ID, err)
		}
	}
	if err := f.AutoFilter(ExportSheet, "A1:M1", nil); err != nil {
		return fmt.Errorf("set filter: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
