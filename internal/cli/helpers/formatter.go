package helpers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// OutputFormat represents the desired output format.
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatJSONL OutputFormat = "jsonl"
	FormatCSV   OutputFormat = "csv"
)

// Row is one result line of a listing command. Header must not depend on
// the receiver's contents; it is also called on the zero value so an empty
// listing still prints its columns.
type Row interface {
	Header() []string
	Cells() []string
}

// WriteRows renders rows in the given format. Table and CSV output use
// Header and Cells; JSON and JSONL encode the rows themselves.
func WriteRows[R Row](out io.Writer, format OutputFormat, rows []R) error {
	switch format {
	case FormatTable:
		return writeTable(out, rows)
	case FormatCSV:
		return writeCSV(out, rows)
	case FormatJSON:
		if rows == nil {
			rows = []R{}
		}
		return WriteJSON(out, rows)
	case FormatJSONL:
		enc := json.NewEncoder(out)
		for _, row := range rows {
			if err := enc.Encode(row); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// WriteJSON writes v as an indented JSON document.
func WriteJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Tabs and newlines in payloads would break the column layout.
var cellEscaper = strings.NewReplacer("\t", " ", "\n", " ", "\r", "")

func writeTable[R Row](out io.Writer, rows []R) error {
	var zero R
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	if _, err := fmt.Fprintln(w, strings.Join(zero.Header(), "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		cells := row.Cells()
		for i, c := range cells {
			cells[i] = cellEscaper.Replace(c)
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	return w.Flush()
}

func writeCSV[R Row](out io.Writer, rows []R) error {
	var zero R
	w := csv.NewWriter(out)
	if err := w.Write(zero.Header()); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row.Cells()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
