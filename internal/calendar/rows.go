package calendar

import (
	"strconv"

	"github.com/Takenobou/class-calendar/internal/schedule"
)

// tableHeader is shared by the spreadsheet style exports.
var tableHeader = []string{
	"Date", "Start", "End", "Duration (hours)", "Location", "Name",
	"Instructor", "Topic", "Culture", "Description", "Book Description",
}

func tableRow(o schedule.Occurrence) []string {
	hours := o.End.Sub(o.Start).Hours()
	return []string{
		o.Start.Format(dateLayout),
		o.Start.Format("15:04"),
		o.End.Format("15:04"),
		strconv.FormatFloat(hours, 'f', -1, 64),
		o.Location,
		o.Name,
		o.Instructor,
		o.Topic,
		o.Culture,
		o.DescriptionWeb,
		o.DescriptionBook,
	}
}
