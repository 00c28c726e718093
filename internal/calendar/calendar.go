package calendar

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/Takenobou/class-calendar/internal/schedule"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "3:04 PM"
	longLayout  = "Monday, January 2"
)

// Config defines calendar level metadata.
type Config struct {
	Name        string
	Description string
	Timezone    string
	ClassDates  []time.Time
	BaseURL     string
}

// Options tune a single render.
type Options struct {
	// Brief selects the condensed PDF layout.
	Brief bool
}

// Day groups the occurrences starting on one local date.
type Day struct {
	Date        time.Time
	Occurrences []schedule.Occurrence
}

// Schedule is the view model every renderer consumes.
type Schedule struct {
	Title       string
	Description string
	// Date is set for the single-day view and zero for the full calendar.
	Date       time.Time
	Days       []Day
	ClassDates []time.Time
	Generated  time.Time
	BaseURL    string
}

// IsDay reports whether the schedule is a single-day view.
func (s *Schedule) IsDay() bool {
	return !s.Date.IsZero()
}

// Empty reports whether no class is scheduled in the view.
func (s *Schedule) Empty() bool {
	for _, d := range s.Days {
		if len(d.Occurrences) > 0 {
			return false
		}
	}
	return true
}

// Occurrences flattens every day in order.
func (s *Schedule) Occurrences() []schedule.Occurrence {
	var out []schedule.Occurrence
	for _, d := range s.Days {
		out = append(out, d.Occurrences...)
	}
	return out
}

// Builder turns schedule occurrences into rendered calendar documents.
type Builder struct {
	cfg      Config
	location *time.Location
	now      func() time.Time
}

// NewBuilder initialises a calendar builder with timezone handling.
func NewBuilder(cfg Config) (*Builder, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("calendar name is required")
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	return &Builder{
		cfg:      cfg,
		location: loc,
		now:      time.Now,
	}, nil
}

// Location is the timezone occurrences are grouped and printed in.
func (b *Builder) Location() *time.Location {
	return b.location
}

// Schedule groups occurrences by local date. A non-zero day produces the
// single-day view, which always carries that day even when it is empty.
func (b *Builder) Schedule(items []schedule.Occurrence, day time.Time) *Schedule {
	s := &Schedule{
		Title:       b.cfg.Name,
		Description: b.cfg.Description,
		ClassDates:  b.cfg.ClassDates,
		Generated:   b.now(),
		BaseURL:     b.cfg.BaseURL,
	}
	if !day.IsZero() {
		s.Date = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, b.location)
		s.Title = fmt.Sprintf("%s: %s", b.cfg.Name, s.Date.Format(longLayout))
		s.Days = []Day{{Date: s.Date}}
	}

	index := map[string]int{}
	for i, d := range s.Days {
		index[d.Date.Format(dateLayout)] = i
	}

	for _, item := range items {
		item.Start = item.Start.In(b.location)
		item.End = item.End.In(b.location)
		key := item.Start.Format(dateLayout)
		pos, ok := index[key]
		if !ok {
			if s.IsDay() {
				continue
			}
			date := time.Date(item.Start.Year(), item.Start.Month(), item.Start.Day(), 0, 0, 0, 0, b.location)
			s.Days = append(s.Days, Day{Date: date})
			pos = len(s.Days) - 1
			index[key] = pos
		}
		s.Days[pos].Occurrences = append(s.Days[pos].Occurrences, item)
	}

	return s
}

// Build renders the schedule in the requested format.
func (b *Builder) Build(format Format, s *Schedule, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := b.Render(&buf, format, s, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Render streams the schedule in the requested format to w.
func (b *Builder) Render(w io.Writer, format Format, s *Schedule, opts Options) error {
	var err error
	switch format {
	case FormatHTML:
		err = renderHTML(w, s)
	case FormatXLSX:
		err = renderXLSX(w, s)
	case FormatCSV:
		err = renderCSV(w, s)
	case FormatICS:
		err = b.renderICS(w, s)
	case FormatPDF:
		err = renderPDF(w, s, opts)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}
	return nil
}
