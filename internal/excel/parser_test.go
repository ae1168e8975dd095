package excel

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/guirluz/rental-backend/internal/utils/errs"
	"github.com/guirluz/rental-backend/internal/utils/logger"
	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
)

func TestMain(m *testing.M) {
	logger.InitTestLogger()
	m.Run()
}

type testSheet struct {
	name string
	rows [][]string
}

func writeWorkbook(t *testing.T, sheets []testSheet) string {
	t.Helper()

	f := excelize.NewFile()
	for i, sheet := range sheets {
		if i == 0 {
			err := f.SetSheetName("Sheet1", sheet.name)
			assert.NoError(t, err)
		} else {
			_, err := f.NewSheet(sheet.name)
			assert.NoError(t, err)
		}

		for r, row := range sheet.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			assert.NoError(t, err)
			assert.NoError(t, f.SetSheetRow(sheet.name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "upload.xlsx")
	assert.NoError(t, f.SaveAs(path))
	assert.NoError(t, f.Close())

	return path
}

func TestParseFile(t *testing.T) {
	tests := []struct {
		name          string
		sheets        []testSheet
		selected      []string
		expectedError bool
		validate      func(t *testing.T, parsed []Sheet)
	}{
		{
			name: "SingleValidSheet",
			sheets: []testSheet{
				{
					name: "Users",
					rows: [][]string{
						{"username", "email", "password"},
						{"ana", "ana@x.com", "p1"},
						{"bob", "bob@x.com", "p2"},
					},
				},
			},
			validate: func(t *testing.T, parsed []Sheet) {
				assert.Len(t, parsed, 1)
				assert.Equal(t, "Users", parsed[0].Name)
				assert.Len(t, parsed[0].Rows, 2)
				assert.Equal(t, Row{Number: 1, Username: "ana", Email: "ana@x.com", Password: "p1"}, parsed[0].Rows[0])
				assert.Equal(t, Row{Number: 2, Username: "bob", Email: "bob@x.com", Password: "p2"}, parsed[0].Rows[1])
			},
		},
		{
			name: "HeaderMatchingIsCaseInsensitiveAndTrimmed",
			sheets: []testSheet{
				{
					name: "Users",
					rows: [][]string{
						{" Username ", "EMAIL", "Password", "extra"},
						{"ana", "ana@x.com", "p1", "ignored"},
					},
				},
			},
			validate: func(t *testing.T, parsed []Sheet) {
				assert.Len(t, parsed, 1)
				assert.Len(t, parsed[0].Rows, 1)
				assert.Equal(t, "ana@x.com", parsed[0].Rows[0].Email)
			},
		},
		{
			name: "SheetWithoutRequiredColumnsIsDropped",
			sheets: []testSheet{
				{
					name: "Valid",
					rows: [][]string{
						{"username", "email", "password"},
						{"ana", "ana@x.com", "p1"},
					},
				},
				{
					name: "Invalid",
					rows: [][]string{
						{"name", "mail"},
						{"bob", "bob@x.com"},
					},
				},
			},
			validate: func(t *testing.T, parsed []Sheet) {
				assert.Len(t, parsed, 1)
				assert.Equal(t, "Valid", parsed[0].Name)
			},
		},
		{
			name: "EmptyRowsAreDroppedBeforeCounting",
			sheets: []testSheet{
				{
					name: "Users",
					rows: [][]string{
						{"username", "email", "password"},
						{"ana", "ana@x.com", "p1"},
						{"", "", ""},
						{"bob", "bob@x.com", "p2"},
					},
				},
			},
			validate: func(t *testing.T, parsed []Sheet) {
				assert.Len(t, parsed[0].Rows, 2)
				assert.Equal(t, 1, parsed[0].Rows[0].Number)
				assert.Equal(t, 2, parsed[0].Rows[1].Number)
			},
		},
		{
			name: "RowWithMissingFieldStillCounts",
			sheets: []testSheet{
				{
					name: "Users",
					rows: [][]string{
						{"username", "email", "password"},
						{"", "b@x.com", "p2"},
					},
				},
			},
			validate: func(t *testing.T, parsed []Sheet) {
				assert.Len(t, parsed[0].Rows, 1)
				assert.Equal(t, "", parsed[0].Rows[0].Username)
				assert.Equal(t, "b@x.com", parsed[0].Rows[0].Email)
			},
		},
		{
			name: "SelectedSubsetOfSheets",
			sheets: []testSheet{
				{
					name: "First",
					rows: [][]string{
						{"username", "email", "password"},
						{"ana", "ana@x.com", "p1"},
					},
				},
				{
					name: "Second",
					rows: [][]string{
						{"username", "email", "password"},
						{"bob", "bob@x.com", "p2"},
					},
				},
			},
			selected: []string{"Second"},
			validate: func(t *testing.T, parsed []Sheet) {
				assert.Len(t, parsed, 1)
				assert.Equal(t, "Second", parsed[0].Name)
			},
		},
		{
			name: "SelectedSheetDoesNotExist",
			sheets: []testSheet{
				{
					name: "Users",
					rows: [][]string{
						{"username", "email", "password"},
						{"ana", "ana@x.com", "p1"},
					},
				},
			},
			selected:      []string{"Missing"},
			expectedError: true,
		},
		{
			name: "NoValidSheetsYieldsEmptyResult",
			sheets: []testSheet{
				{
					name: "Invalid",
					rows: [][]string{
						{"name", "mail"},
						{"bob", "bob@x.com"},
					},
				},
			},
			validate: func(t *testing.T, parsed []Sheet) {
				assert.Empty(t, parsed)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeWorkbook(t, tt.sheets)

			parsed, err := ParseFile(path, tt.selected)

			if tt.expectedError {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			tt.validate(t, parsed)
		})
	}
}

func TestParseFile_OpenError(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.xlsx"), nil)
	assert.Error(t, err)
}

func TestPreviewFile(t *testing.T) {
	t.Run("CapsRecordsAndDisplaySlice", func(t *testing.T) {
		rows := [][]string{{"username", "email", "password"}}
		for i := 0; i < 120; i++ {
			rows = append(rows, []string{
				fmt.Sprintf("user%d", i),
				fmt.Sprintf("user%d@x.com", i),
				"secret",
			})
		}
		path := writeWorkbook(t, []testSheet{{name: "Users", rows: rows}})

		previews, totalSheets, err := PreviewFile(path)

		assert.NoError(t, err)
		assert.Equal(t, 1, totalSheets)
		assert.Len(t, previews, 1)
		assert.Equal(t, "Users", previews[0].SheetName)
		assert.Equal(t, 120, previews[0].TotalRows)
		assert.Len(t, previews[0].Data, PreviewRecordCap)
		assert.Len(t, previews[0].Preview, PreviewDisplayRows)
		assert.Equal(t, []string{"username", "email", "password"}, previews[0].Columns)
		assert.Equal(t, "user0@x.com", previews[0].Preview[0]["email"])
	})

	t.Run("MixedValidAndInvalidSheets", func(t *testing.T) {
		path := writeWorkbook(t, []testSheet{
			{
				name: "Valid",
				rows: [][]string{
					{"username", "email", "password"},
					{"ana", "ana@x.com", "p1"},
				},
			},
			{
				name: "Invalid",
				rows: [][]string{
					{"name"},
					{"bob"},
				},
			},
		})

		previews, totalSheets, err := PreviewFile(path)

		assert.NoError(t, err)
		assert.Equal(t, 2, totalSheets)
		assert.Len(t, previews, 1)
		assert.Equal(t, "Valid", previews[0].SheetName)
	})

	t.Run("NoValidSheets", func(t *testing.T) {
		path := writeWorkbook(t, []testSheet{
			{
				name: "Invalid",
				rows: [][]string{
					{"name", "mail"},
					{"bob", "bob@x.com"},
				},
			},
		})

		previews, totalSheets, err := PreviewFile(path)

		assert.True(t, errors.Is(err, errs.ErrNoValidSheets))
		assert.Equal(t, 1, totalSheets)
		assert.Nil(t, previews)
	})
}
