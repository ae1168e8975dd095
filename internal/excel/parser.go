package excel

import (
	"fmt"
	"strings"

	"github.com/guirluz/rental-backend/internal/app/models"
	"github.com/guirluz/rental-backend/internal/utils/errs"
	"github.com/guirluz/rental-backend/internal/utils/logger"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	// PreviewRecordCap bounds the records carried in a preview event.
	PreviewRecordCap = 100
	// PreviewDisplayRows is the short slice the UI renders immediately.
	PreviewDisplayRows = 10
)

var requiredColumns = []string{"username", "email", "password"}

// Row is one candidate user record. Number is the 1-based data row within
// the sheet, header excluded, matching what skip reports show.
type Row struct {
	Number   int
	Username string
	Email    string
	Password string
}

type Sheet struct {
	Name string
	Rows []Row
}

// columnIndexes maps the required column names to their positions in the
// header row, matching case-insensitively on trimmed names. Returns nil when
// the header does not cover the required set.
func columnIndexes(header []string) map[string]int {
	indexes := make(map[string]int, len(requiredColumns))
	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		if _, seen := indexes[name]; seen {
			continue
		}
		for _, required := range requiredColumns {
			if name == required {
				indexes[name] = i
			}
		}
	}

	if len(indexes) != len(requiredColumns) {
		return nil
	}

	return indexes
}

func cellAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ParseFile reads the selected sheets (all sheets when sheets is empty) and
// returns the ones whose header covers username/email/password. Sheets that
// do not match the schema are dropped; entirely empty rows are dropped before
// counting. A selected sheet that does not exist is an error.
func ParseFile(path string, sheets []string) ([]Sheet, error) {
	const funcName = "excel.ParseFile"

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	if len(sheets) == 0 {
		sheets = f.GetSheetList()
	}

	parsed := make([]Sheet, 0, len(sheets))
	for _, name := range sheets {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}

		if len(rows) == 0 {
			continue
		}

		indexes := columnIndexes(rows[0])
		if indexes == nil {
			logger.Warn("sheet ignored: required columns missing",
				zap.String("function", funcName),
				zap.String("sheet", name),
			)
			continue
		}

		sheet := Sheet{Name: name}
		number := 0
		for _, raw := range rows[1:] {
			if isEmptyRow(raw) {
				continue
			}
			number++
			sheet.Rows = append(sheet.Rows, Row{
				Number:   number,
				Username: cellAt(raw, indexes["username"]),
				Email:    cellAt(raw, indexes["email"]),
				Password: cellAt(raw, indexes["password"]),
			})
		}

		parsed = append(parsed, sheet)
	}

	return parsed, nil
}

// PreviewFile validates every sheet and builds capped previews for the ones
// matching the required schema. Returns errs.ErrNoValidSheets when nothing
// matches.
func PreviewFile(path string) ([]models.SheetPreview, int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheetNames := f.GetSheetList()
	previews := make([]models.SheetPreview, 0, len(sheetNames))

	for _, name := range sheetNames {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, 0, fmt.Errorf("read sheet %q: %w", name, err)
		}

		if len(rows) == 0 {
			continue
		}

		indexes := columnIndexes(rows[0])
		if indexes == nil {
			continue
		}

		records := make([]map[string]string, 0, PreviewRecordCap)
		totalRows := 0
		for _, raw := range rows[1:] {
			if isEmptyRow(raw) {
				continue
			}
			totalRows++
			if len(records) < PreviewRecordCap {
				records = append(records, map[string]string{
					"username": cellAt(raw, indexes["username"]),
					"email":    cellAt(raw, indexes["email"]),
					"password": cellAt(raw, indexes["password"]),
				})
			}
		}

		display := records
		if len(display) > PreviewDisplayRows {
			display = records[:PreviewDisplayRows]
		}

		previews = append(previews, models.SheetPreview{
			SheetName: name,
			TotalRows: totalRows,
			Columns:   append([]string(nil), requiredColumns...),
			Preview:   display,
			Data:      records,
		})
	}

	if len(previews) == 0 {
		return nil, len(sheetNames), errs.ErrNoValidSheets
	}

	return previews, len(sheetNames), nil
}
