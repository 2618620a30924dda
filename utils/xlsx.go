package utils

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"sahayakseva/backend/eligibility"
	"sahayakseva/backend/models"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SchemesWorkbook writes the dashboard list to a "Schemes" sheet and the tab
// counts to a "Summary" sheet.
func SchemesWorkbook(schemes []models.Scheme, tabs []eligibility.Tab) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const list = "Schemes"
	if err := f.SetSheetName("Sheet1", list); err != nil {
		return nil, err
	}
	header := []any{"ID", "Name", "Category", "Description", "Why you're eligible"}
	if err := f.SetSheetRow(list, "A1", &header); err != nil {
		return nil, err
	}
	for i, s := range schemes {
		row := []any{s.ID, s.Name, string(s.Category), s.Description, s.EligibilityReason}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(list, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	const summary = "Summary"
	if _, err := f.NewSheet(summary); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(summary, "A1", &[]any{"Category", "Schemes"}); err != nil {
		return nil, err
	}
	for i, t := range tabs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(summary, cell, &[]any{t.Category, t.Count}); err != nil {
			return nil, err
		}
	}

	return f.WriteToBuffer()
}
