// Package importer reads flower catalogs from spreadsheets.
package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"flowershop/internal/models"

	"github.com/xuri/excelize/v2"
)

// Row is one parsed spreadsheet row. Line is the 1-based sheet row number.
type Row struct {
	Line    int
	Product models.NewProduct
	Err     error
}

var headerAliases = map[string]string{
	"title":       "title",
	"name":        "title",
	"price":       "price",
	"description": "description",
	"cover":       "cover",
	"image":       "cover",
}

// ParseFile reads the first sheet of the workbook at path.
func ParseFile(path string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()
	return parse(f)
}

// Parse reads the first sheet of a workbook from r.
func Parse(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel data: %w", err)
	}
	defer f.Close()
	return parse(f)
}

// parse expects a header row naming the title, price, description and cover
// columns in any order. Rows that cannot be read carry an error instead of
// aborting the import.
func parse(f *excelize.File) ([]Row, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("excel file is empty")
	}

	columns := make(map[string]int)
	for i, cell := range rows[0] {
		if field, ok := headerAliases[strings.ToLower(strings.TrimSpace(cell))]; ok {
			columns[field] = i
		}
	}
	for _, field := range []string{"title", "price", "description", "cover"} {
		if _, ok := columns[field]; !ok {
			return nil, fmt.Errorf("header row is missing the %q column", field)
		}
	}

	cell := func(row []string, field string) string {
		if idx := columns[field]; idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	result := make([]Row, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		parsed := Row{Line: i + 2}
		parsed.Product.Title = cell(row, "title")
		parsed.Product.Description = cell(row, "description")
		parsed.Product.Cover = cell(row, "cover")

		rawPrice := strings.ReplaceAll(cell(row, "price"), ",", ".")
		price, err := strconv.ParseFloat(rawPrice, 64)
		if err != nil {
			parsed.Err = fmt.Errorf("row %d: invalid price %q", parsed.Line, cell(row, "price"))
		}
		parsed.Product.Price = price
		result = append(result, parsed)
	}
	return result, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
