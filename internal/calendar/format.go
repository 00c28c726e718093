package calendar

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat is returned for output formats the calendar cannot render.
var ErrUnsupportedFormat = errors.New("unsupported calendar format")

// Format names a rendered representation of the schedule.
type Format string

const (
	FormatHTML Format = "html"
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatICS  Format = "ics"
	FormatPDF  Format = "pdf"
)

var contentTypes = map[Format]string{
	FormatHTML: "text/html; charset=utf-8",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatCSV:  "text/csv",
	FormatICS:  "text/calendar",
	FormatPDF:  "application/pdf",
}

// Formats lists every supported format, HTML first.
func Formats() []Format {
	return []Format{FormatHTML, FormatXLSX, FormatCSV, FormatICS, FormatPDF}
}

// ParseFormat resolves a format name; the empty string means HTML.
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return FormatHTML, nil
	}
	f := Format(name)
	if _, ok := contentTypes[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
	return f, nil
}

// SplitExtension splits "2025-07-28.pdf" into "2025-07-28" and "pdf".
// Names without a dot return an empty extension.
func SplitExtension(name string) (string, string) {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return name, ""
	}
	return name[:idx], name[idx+1:]
}

// ContentType is the exact Content-Type header for the format.
func (f Format) ContentType() string {
	return contentTypes[f]
}

// Download reports whether responses should be served as attachments.
func (f Format) Download() bool {
	return f != FormatHTML
}

func (f Format) String() string {
	return string(f)
}
