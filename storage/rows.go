package storage

import (
	"strconv"

	"tradenet/models"
)

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// textRow renders a link as CSV cells in the table's column order.
func textRow(t *models.LinkTable, l models.Link) []string {
	row := []string{l.Source, l.Target, formatFloat(l.Value)}
	if t.HasProduct {
		row = append(row, l.Product, formatFloat(l.Quantity))
	}
	if t.HasYear {
		row = append(row, strconv.Itoa(l.Year))
	}
	return row
}

// cellRow is textRow with typed cells, for spreadsheets.
func cellRow(t *models.LinkTable, l models.Link) []any {
	row := []any{l.Source, l.Target, l.Value}
	if t.HasProduct {
		row = append(row, l.Product, l.Quantity)
	}
	if t.HasYear {
		row = append(row, l.Year)
	}
	return row
}
