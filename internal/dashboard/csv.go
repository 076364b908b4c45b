package dashboard

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/evcraddock/field-visits/internal/visit"
)

// CSVFilename is the suggested download name for the CSV export.
const CSVFilename = "visits.csv"

// WriteCSV writes the visits as CSV. Every data value is double-quoted and
// rows are separated by a bare newline.
func WriteCSV(w io.Writer, visits []*visit.Visit) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(Columns, ",")); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, v := range visits {
		if v == nil {
			continue
		}
		bw.WriteByte('\n')
		for i, val := range row(v) {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteString(quote(val))
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
