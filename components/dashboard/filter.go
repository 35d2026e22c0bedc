package dashboard

import (
	"fmt"
	"strings"
	"time"
)

// DefaultSearchFields are matched by free-text search when a table does not override them.
var DefaultSearchFields = []string{"name", "email"}

// DefaultDateField is the record field consulted by date-range filters.
const DefaultDateField = "date"

// DateRange bounds a calendar-date filter. A zero From or To imposes no constraint.
type DateRange struct {
	From time.Time `json:"from,omitempty"`
	To   time.Time `json:"to,omitempty"`
}

// IsZero reports whether the range has no bounds at all.
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Inverted reports whether both bounds are set and From falls after To.
func (r DateRange) Inverted() bool {
	if r.From.IsZero() || r.To.IsZero() {
		return false
	}
	return calendarDate(r.From).After(calendarDate(r.To))
}

// Equal compares two ranges at calendar-date precision.
func (r DateRange) Equal(other DateRange) bool {
	return sameDay(r.From, other.From) && sameDay(r.To, other.To)
}

// Contains reports whether t falls inside the range, bounds inclusive.
func (r DateRange) Contains(t time.Time) bool {
	day := calendarDate(t)
	if !r.From.IsZero() && day.Before(calendarDate(r.From)) {
		return false
	}
	if !r.To.IsZero() && day.After(calendarDate(r.To)) {
		return false
	}
	return true
}

// ParseDateRange reads date-picker style bounds (YYYY-MM-DD); empty strings are absent bounds.
func ParseDateRange(from, to string) (DateRange, error) {
	var r DateRange
	if from = strings.TrimSpace(from); from != "" {
		parsed, err := time.Parse(time.DateOnly, from)
		if err != nil {
			return DateRange{}, fmt.Errorf("dashboard: parse from date %q: %w", from, err)
		}
		r.From = parsed
	}
	if to = strings.TrimSpace(to); to != "" {
		parsed, err := time.Parse(time.DateOnly, to)
		if err != nil {
			return DateRange{}, fmt.Errorf("dashboard: parse to date %q: %w", to, err)
		}
		r.To = parsed
	}
	return r, nil
}

// FilterQuery bundles the text and date constraints applied by FilterRecords.
type FilterQuery struct {
	Search    string
	Fields    []string
	DateField string
	Range     DateRange
}

// FilterRecords applies the text filter and then the date filter. The input is never
// modified and surviving records keep their relative order.
func FilterRecords[T Record](records []T, q FilterQuery) []T {
	fields := q.Fields
	if len(fields) == 0 {
		fields = DefaultSearchFields
	}
	dateField := q.DateField
	if dateField == "" {
		dateField = DefaultDateField
	}
	out := FilterByText(records, q.Search, fields)
	return FilterByDate(out, dateField, q.Range)
}

// FilterByText keeps records where any of fields contains query, case-insensitively.
// A query made only of whitespace returns a copy of records unchanged; any other query
// is matched as given, surrounding spaces included.
func FilterByText[T Record](records []T, query string, fields []string) []T {
	if strings.TrimSpace(query) == "" {
		return cloneRecords(records)
	}
	needle := strings.ToLower(query)
	out := make([]T, 0, len(records))
	for _, record := range records {
		if matchesText(record, needle, fields) {
			out = append(out, record)
		}
	}
	return out
}

func matchesText(record Record, needle string, fields []string) bool {
	for _, field := range fields {
		value, ok := record.Field(field)
		if !ok {
			continue
		}
		s, ok := value.(string)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

// FilterByDate keeps records whose field falls within r. Records lacking a parseable
// date fail as soon as any bound is set; an inverted range yields no records.
func FilterByDate[T Record](records []T, field string, r DateRange) []T {
	if r.IsZero() {
		return cloneRecords(records)
	}
	out := make([]T, 0, len(records))
	if r.Inverted() {
		return out
	}
	for _, record := range records {
		value, ok := record.Field(field)
		if !ok {
			continue
		}
		day, ok := asDate(value)
		if !ok {
			continue
		}
		if r.Contains(day) {
			out = append(out, record)
		}
	}
	return out
}

func asDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return time.Time{}, false
		}
		if parsed, err := time.Parse(time.DateOnly, v); err == nil {
			return parsed, true
		}
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return a.IsZero() == b.IsZero()
	}
	return calendarDate(a).Equal(calendarDate(b))
}

func cloneRecords[T any](records []T) []T {
	out := make([]T, len(records))
	copy(out, records)
	return out
}
