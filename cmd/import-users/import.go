package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/ikkim/accounts-backend/internal/app/service"
	apperrors "github.com/ikkim/accounts-backend/internal/errors"
	"github.com/xuri/excelize/v2"
)

// Column order of the import sheet. The first row is a header.
const (
	colUsername = iota
	colEmail
	colPassword
	columnCount
)

type userRow struct {
	Row   int // 1-based sheet row
	Input service.RegisterInput
}

type skippedRow struct {
	Row    int
	Email  string
	Reason string
}

type importSummary struct {
	Imported int
	Skipped  []skippedRow
}

func readUsersFromXLSX(filePath string) ([]userRow, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	return readUsers(f)
}

func readUsers(f *excelize.File) ([]userRow, error) {
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var users []userRow
	for i, row := range rows {
		if i == 0 {
			continue
		}

		// GetRows trims trailing empty cells
		cells := make([]string, columnCount)
		copy(cells, row)
		if strings.TrimSpace(strings.Join(cells, "")) == "" {
			continue
		}

		users = append(users, userRow{
			Row: i + 1,
			Input: service.RegisterInput{
				Username:        strings.TrimSpace(cells[colUsername]),
				Email:           strings.TrimSpace(cells[colEmail]),
				Password:        cells[colPassword],
				ConfirmPassword: cells[colPassword],
			},
		})
	}

	return users, nil
}

// importUsers registers each row, applying the same validation as the
// registration form. Failed rows are reported and do not stop the import.
func importUsers(ctx context.Context, authService service.AuthService, rows []userRow) importSummary {
	var summary importSummary

	for _, row := range rows {
		if _, err := authService.Register(ctx, row.Input); err != nil {
			summary.Skipped = append(summary.Skipped, skippedRow{
				Row:    row.Row,
				Email:  row.Input.Email,
				Reason: apperrors.MessageOf(err, err.Error()),
			})
			continue
		}
		summary.Imported++
	}

	return summary
}
