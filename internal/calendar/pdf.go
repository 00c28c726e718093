package calendar

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/Takenobou/class-calendar/internal/schedule"
)

const (
	pdfFont     = "Helvetica"
	pdfMargin   = 15.0
	briefLineH  = 5.0
	regularLine = 5.5
)

type pdfWriter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func renderPDF(w io.Writer, s *Schedule, opts Options) error {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetTitle(s.Title, true)
	pdf.SetCreator("class-calendar", true)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AliasNbPages("")

	pw := &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(pdfFont, "I", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pw.title(s)

	if s.Empty() {
		pdf.SetFont(pdfFont, "I", 11)
		pdf.CellFormat(0, 8, "No classes are scheduled.", "", 1, "L", false, 0, "")
		return pdf.Output(w)
	}

	for _, day := range s.Days {
		if len(day.Occurrences) == 0 {
			continue
		}
		pw.dayHeading(day)
		for _, o := range day.Occurrences {
			switch {
			case opts.Brief:
				pw.briefLine(o)
			case s.IsDay():
				pw.block(o, o.DescriptionBook)
			default:
				pw.block(o, o.DescriptionWeb)
			}
		}
		pdf.Ln(3)
	}

	return pdf.Output(w)
}

func (p *pdfWriter) title(s *Schedule) {
	p.pdf.SetFont(pdfFont, "B", 16)
	p.pdf.CellFormat(0, 10, p.tr(s.Title), "", 1, "L", false, 0, "")
	if s.Description != "" {
		p.pdf.SetFont(pdfFont, "", 10)
		p.pdf.MultiCell(0, regularLine, p.tr(s.Description), "", "L", false)
	}
	p.pdf.Ln(4)
}

func (p *pdfWriter) dayHeading(day Day) {
	p.pdf.SetFont(pdfFont, "B", 13)
	p.pdf.SetFillColor(230, 230, 230)
	p.pdf.CellFormat(0, 8, day.Date.Format(longLayout), "", 1, "L", true, 0, "")
	p.pdf.Ln(1)
}

func (p *pdfWriter) briefLine(o schedule.Occurrence) {
	p.pdf.SetFont(pdfFont, "", 9)
	p.pdf.CellFormat(22, briefLineH, o.Start.Format(clockLayout), "", 0, "L", false, 0, "")
	p.pdf.CellFormat(35, briefLineH, p.tr(truncate(o.Location, 20)), "", 0, "L", false, 0, "")
	p.pdf.CellFormat(0, briefLineH, p.tr(truncate(o.Name, 80)), "", 1, "L", false, 0, "")
}

func (p *pdfWriter) block(o schedule.Occurrence, description string) {
	p.pdf.SetFont(pdfFont, "B", 11)
	p.pdf.MultiCell(0, regularLine+0.5, p.tr(o.Name), "", "L", false)

	meta := []string{fmt.Sprintf("%s - %s", o.Start.Format(clockLayout), o.End.Format(clockLayout))}
	if o.Location != "" {
		meta = append(meta, o.Location)
	}
	if o.Instructor != "" {
		meta = append(meta, o.Instructor)
	}
	p.pdf.SetFont(pdfFont, "I", 9)
	p.pdf.MultiCell(0, regularLine, p.tr(strings.Join(meta, " | ")), "", "L", false)

	if text := strings.TrimSpace(description); text != "" {
		p.pdf.SetFont(pdfFont, "", 10)
		p.pdf.MultiCell(0, regularLine, p.tr(text), "", "L", false)
	}
	p.pdf.Ln(2)
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-3]) + "..."
}
