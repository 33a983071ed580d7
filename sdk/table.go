package sdk

import (
	"fmt"
	"strconv"
	"strings"
)

// TwoDimTable is the server's generic table. Data is column-major: Data[c]
// holds the values of column c.
type TwoDimTable struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Columns     []TableColumn `json:"columns"`
	Data        [][]any       `json:"data"`
	RowCount    int           `json:"rowcount"`
}

// TableColumn describes one column of a TwoDimTable.
type TableColumn struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Format      string `json:"format"`
	Description string `json:"description"`
}

// Headers returns the column names.
func (t *TwoDimTable) Headers() []string {
	if t == nil {
		return nil
	}
	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = c.Name
	}
	return headers
}

// Rows returns the table row-major with every cell formatted.
func (t *TwoDimTable) Rows() [][]string {
	if t == nil {
		return nil
	}
	n := 0
	for _, col := range t.Data {
		n = max(n, len(col))
	}

	rows := make([][]string, n)
	for r := range rows {
		row := make([]string, len(t.Columns))
		for c := range t.Columns {
			if c < len(t.Data) && r < len(t.Data[c]) {
				row[c] = formatCell(t.Data[c][r], t.Columns[c].Format)
			}
		}
		rows[r] = row
	}
	return rows
}

func formatCell(v any, format string) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		if strings.HasPrefix(format, "%") {
			switch format[len(format)-1] {
			case 'd':
				return fmt.Sprintf(format, int64(v))
			case 'f', 'e', 'g':
				return fmt.Sprintf(format, v)
			}
		}
		return strconv.FormatFloat(v, 'g', 6, 64)
	default:
		return fmt.Sprint(v)
	}
}
