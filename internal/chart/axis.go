package chart

import "time"

// Placeholder is the axis label shown before any sample exists.
const Placeholder = "---"

// DateFormatter renders sample timestamps as calendar dates.
type DateFormatter interface {
	Date(stamp int64) string
	SameDate(a, b int64) bool
}

// Dates formats millisecond stamps with a time layout in a fixed location.
type Dates struct {
	Layout   string
	Location *time.Location
}

// NewDates returns a Dates formatter. A nil location means time.Local.
func NewDates(layout string, loc *time.Location) Dates {
	if loc == nil {
		loc = time.Local
	}
	return Dates{Layout: layout, Location: loc}
}

func (d Dates) at(stamp int64) time.Time {
	return time.UnixMilli(stamp).In(d.Location)
}

// Date formats stamp as a calendar date.
func (d Dates) Date(stamp int64) string {
	return d.at(stamp).Format(d.Layout)
}

// SameDate reports whether a and b fall on the same calendar day.
func (d Dates) SameDate(a, b int64) bool {
	ta, tb := d.at(a), d.at(b)
	ya, ma, da := ta.Date()
	yb, mb, db := tb.Date()
	return ya == yb && ma == mb && da == db
}

// AxisLabel computes the time-axis label for data: the single date when the
// oldest and newest retained samples share a day, "start - end" otherwise,
// Placeholder when there are no samples.
func AxisLabel(data []Series, f DateFormatter) string {
	start, end, ok := span(data)
	if !ok {
		return Placeholder
	}

	label := f.Date(start)
	if label == "" {
		return Placeholder
	}
	if !f.SameDate(start, end) {
		if tail := f.Date(end); tail != "" {
			label += " - " + tail
		}
	}
	return label
}

// span returns the oldest first sample and newest last sample across series.
func span(data []Series) (start, end int64, ok bool) {
	for _, s := range data {
		if len(s.Data) == 0 {
			continue
		}
		first, last := s.Data[0].Stamp, s.Data[len(s.Data)-1].Stamp
		if !ok || first < start {
			start = first
		}
		if !ok || last > end {
			end = last
		}
		ok = true
	}
	return start, end, ok
}
