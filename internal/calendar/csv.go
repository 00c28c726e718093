package calendar

import (
	"encoding/csv"
	"io"
)

func renderCSV(w io.Writer, s *Schedule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tableHeader); err != nil {
		return err
	}
	for _, o := range s.Occurrences() {
		if err := cw.Write(tableRow(o)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
