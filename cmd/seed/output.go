package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/Annany2002/nebula-seeder/internal/domain"
)

// printRecords renders records as a table, one column per field seen in any record.
func printRecords(w io.Writer, records []domain.SyntheticRecord) error {
	columnSet := map[string]struct{}{}
	for _, record := range records {
		for k := range record {
			columnSet[k] = struct{}{}
		}
	}
	columns := make([]string, 0, len(columnSet))
	for k := range columnSet {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(append([]string{"#"}, columns...), "\t"))
	for i, record := range records {
		cells := make([]string, 0, len(columns)+1)
		cells = append(cells, fmt.Sprint(i+1))
		for _, col := range columns {
			cells = append(cells, formatCell(record[col]))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool, float64, int:
		return fmt.Sprint(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
