// Package export renders materialized, already access-filtered lead lists.
// It never performs its own scoping; callers hand it only records the
// requesting staff member was allowed to see.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/lead-service/internal/domain"
)

const leadsSheet = "Leads"

var leadColumns = []string{
	"Name", "Email", "Phone", "Status", "Source", "Course", "Institution", "Assigned To", "Created At",
}

// WriteLeadsWorkbook streams an .xlsx workbook of the given leads to w.
// assigneeNames maps staff ids to display names; unknown or nil assignments
// render as "Unassigned".
func WriteLeadsWorkbook(w io.Writer, leads []domain.Lead, assigneeNames map[string]string) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(leadsSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, title := range leadColumns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(leadsSheet, cell, title); err != nil {
			return err
		}
	}

	for row, lead := range leads {
		values := []any{
			lead.Name,
			lead.Email,
			lead.Phone,
			string(lead.Status),
			lead.Source,
			lead.Course,
			lead.Institution,
			assigneeName(lead, assigneeNames),
			lead.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(leadsSheet, cell, value); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

func assigneeName(lead domain.Lead, names map[string]string) string {
	if lead.AssignedTo == nil {
		return "Unassigned"
	}
	if name, ok := names[*lead.AssignedTo]; ok && name != "" {
		return name
	}
	return "Unassigned"
}
