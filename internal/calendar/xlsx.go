package calendar

import (
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Schedule"

func renderXLSX(w io.Writer, s *Schedule) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	header := make([]interface{}, len(tableHeader))
	for i, h := range tableHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(tableHeader), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", last, bold); err != nil {
		return err
	}

	for i, o := range s.Occurrences() {
		cells := tableRow(o)
		row := make([]interface{}, len(cells))
		for j, c := range cells {
			row[j] = c
		}
		row[3] = o.End.Sub(o.Start).Hours()

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheetName, "E", "G", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "J", "K", 60); err != nil {
		return err
	}

	return f.Write(w)
}
