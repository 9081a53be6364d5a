// Package export dumps the user registry for diagnostics. Nothing here
// writes to the registry.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/mehmetcc/libdesk/internal/person"
	"github.com/xuri/excelize/v2"
)

const (
	UsersSheet       = "Users"
	XLSXContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	defaultSheetName = "Sheet1"
)

var UsersHeader = []string{
	"ID",
	"Citizen ID",
	"First Name",
	"Phone",
	"Role",
	"Username",
	"Created At",
}

// UsersJSON writes the registry as indented JSON. A nil slice is written as
// an empty array.
func UsersJSON(w io.Writer, users []person.Person) error {
	if users == nil {
		users = []person.Person{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(users)
}

// UsersXLSX renders the registry as a single-sheet workbook.
func UsersXLSX(users []person.Person) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheetName, UsersSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	header := make([]any, len(UsersHeader))
	for i, h := range UsersHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(UsersSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(UsersHeader))
	if err := f.SetCellStyle(UsersSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, u := range users {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			u.ID,
			u.CitizenID,
			u.FirstName,
			u.Phone,
			string(u.Role),
			u.Username,
			u.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(UsersSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(UsersSheet, "A", lastCol, 20); err != nil {
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func Filename(prefix, ext string, at time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, at.UTC().Format("20060102_150405"), ext)
}
