package calendar

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	ics "github.com/arran4/golang-ical"

	"github.com/Takenobou/class-calendar/internal/schedule"
)

const productID = "-//class-calendar//EN"

var slugRegex = regexp.MustCompile(`[^a-z0-9]+`)

func (b *Builder) renderICS(w io.Writer, s *Schedule) error {
	cal := ics.NewCalendar()
	cal.SetProductId(productID)
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)
	cal.SetName(s.Title)
	cal.SetXWRTimezone(b.location.String())
	if s.Description != "" {
		cal.SetDescription(s.Description)
		cal.SetXWRCalDesc(s.Description)
	}

	for _, occurrence := range s.Occurrences() {
		event := cal.AddEvent(eventID(occurrence))
		event.SetSummary(occurrence.Name)
		event.SetDescription(eventDescription(occurrence))
		if occurrence.Location != "" {
			event.SetLocation(occurrence.Location)
		}
		if occurrence.Topic != "" {
			event.SetProperty(ics.ComponentPropertyCategories, occurrence.Topic)
		}
		if s.BaseURL != "" {
			event.SetURL(fmt.Sprintf("%s/instructables/%d", s.BaseURL, occurrence.InstructableID))
		}
		event.SetStartAt(occurrence.Start)
		event.SetEndAt(occurrence.End)
		event.SetDtStampTime(s.Generated)
	}

	_, err := io.WriteString(w, cal.Serialize())
	return err
}

func eventDescription(o schedule.Occurrence) string {
	var sections []string
	if o.Instructor != "" {
		sections = append(sections, "Instructor: "+o.Instructor)
	}
	if text := strings.TrimSpace(o.DescriptionWeb); text != "" {
		sections = append(sections, text)
	}
	if o.RepeatCount > 1 {
		sections = append(sections, fmt.Sprintf("Offered %d times.", o.RepeatCount))
	}
	return strings.Join(sections, "\n\n")
}

func eventID(o schedule.Occurrence) string {
	name := slug(o.Name)
	if name == "" {
		name = "class"
	}
	return fmt.Sprintf("%s-%d@class-calendar", name, o.InstanceID)
}

func slug(value string) string {
	lower := strings.ToLower(value)
	lower = slugRegex.ReplaceAllString(lower, "-")
	return strings.Trim(lower, "-")
}
