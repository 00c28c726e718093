package calendar

import (
	"embed"
	"html/template"
	"io"
	"time"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var pages = template.Must(template.New("calendar").Funcs(template.FuncMap{
	"isoDate":  func(t time.Time) string { return t.Format(dateLayout) },
	"longDate": func(t time.Time) string { return t.Format(longLayout) },
	"clock":    func(t time.Time) string { return t.Format(clockLayout) },
}).ParseFS(templateFS, "templates/*.html.tmpl"))

func renderHTML(w io.Writer, s *Schedule) error {
	name := "full"
	if s.IsDay() {
		name = "day"
	}
	return pages.ExecuteTemplate(w, name, s)
}
