package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/exascience/strataboot"
)

// Header is the column header of the CSV encoding of a result table.
var Header = []string{"survey", "year", "est", "lwr", "upr", "cv"}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// WriteCSV writes table to w, preceded by Header. Floats are written with
// the shortest representation that reads back to the same value.
func WriteCSV(w io.Writer, table strataboot.ResultTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range table {
		record := []string{
			r.Survey,
			strconv.Itoa(r.Year),
			formatFloat(r.Est),
			formatFloat(r.Lwr),
			formatFloat(r.Upr),
			formatFloat(r.CV),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a table written by WriteCSV.
func ReadCSV(r io.Reader) (strataboot.ResultTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, name := range Header {
		if header[i] != name {
			return nil, fmt.Errorf("unexpected column %q at position %d, expected %q", header[i], i, name)
		}
	}
	var table strataboot.ResultTable
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			return table, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := strataboot.GroupResult{Survey: record[0]}
		if row.Year, err = strconv.Atoi(record[1]); err != nil {
			return nil, fmt.Errorf("line %d: year: %w", line, err)
		}
		for i, dst := range []*float64{&row.Est, &row.Lwr, &row.Upr, &row.CV} {
			if *dst, err = strconv.ParseFloat(record[i+2], 64); err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, Header[i+2], err)
			}
		}
		table = append(table, row)
	}
}
