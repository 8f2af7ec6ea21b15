package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Table is tabular export content. Every row holds one cell per header.
type Table struct {
	Title   string
	Caption []string
	Headers []string
	Rows    [][]string
}

func (t Table) check(format string) error {
	if len(t.Headers) == 0 {
		return fmt.Errorf("%s requires at least one header", format)
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Headers) {
			return fmt.Errorf("%s row %d has %d cells, want %d", format, i, len(row), len(t.Headers))
		}
	}
	return nil
}

// CSVExporter renders tables as CSV. Title and caption are not part of the
// output.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the table.
func (e *CSVExporter) Render(table Table) ([]byte, error) {
	if err := table.check("csv"); err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(table.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	if err := writer.WriteAll(table.Rows); err != nil {
		return nil, fmt.Errorf("write csv rows: %w", err)
	}
	return buf.Bytes(), nil
}
