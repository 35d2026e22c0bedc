package dashboard

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortDirection orders a sorted view.
type SortDirection string

const (
	SortAscending  SortDirection = "ascending"
	SortDescending SortDirection = "descending"
)

// ErrInvalidDirection is returned when a direction string is neither ascending nor descending.
var ErrInvalidDirection = errors.New("dashboard: sort direction must be ascending or descending")

// ParseSortDirection accepts "ascending"/"descending" (and the asc/desc shorthands).
// An empty string defaults to ascending.
func ParseSortDirection(value string) (SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "asc", "ascending":
		return SortAscending, nil
	case "desc", "descending":
		return SortDescending, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, value)
}

// SortConfig selects a sort key and direction. A zero value means "unsorted".
type SortConfig struct {
	Key       string        `json:"key,omitempty"`
	Direction SortDirection `json:"direction,omitempty"`
}

// Active reports whether a key has been selected.
func (c SortConfig) Active() bool {
	return c.Key != ""
}

// Indicator returns the header marker for column key under this config.
func (c SortConfig) Indicator(key string) string {
	if !c.Active() || c.Key != key {
		return ""
	}
	if c.Direction == SortDescending {
		return "▼"
	}
	return "▲"
}

// ToggleSort flips an ascending sort on the same key to descending; any other request
// (a different key, or the same key already descending) resets to ascending.
func ToggleSort(current SortConfig, key string) SortConfig {
	if current.Key == key && current.Direction != SortDescending {
		return SortConfig{Key: key, Direction: SortDescending}
	}
	return SortConfig{Key: key, Direction: SortAscending}
}

// SortRecords returns a new slice ordered by cfg. Numeric fields compare numerically,
// everything else compares as locale-collated strings. The sort is stable, so ties keep
// their original relative order in either direction.
func SortRecords[T Record](records []T, cfg SortConfig) []T {
	out := cloneRecords(records)
	if !cfg.Active() || len(out) < 2 {
		return out
	}
	collator := newCollator()
	sign := 1
	if cfg.Direction == SortDescending {
		sign = -1
	}
	slices.SortStableFunc(out, func(a, b T) int {
		av, _ := a.Field(cfg.Key)
		bv, _ := b.Field(cfg.Key)
		return sign * compareValues(collator, av, bv)
	})
	return out
}

// CompareValues compares two field values with the same rules SortRecords uses.
func CompareValues(a, b any) int {
	return compareValues(newCollator(), a, b)
}

func newCollator() *collate.Collator {
	return collate.New(language.English)
}

func compareValues(collator *collate.Collator, a, b any) int {
	an, aNumeric := numericValue(a)
	bn, bNumeric := numericValue(b)
	if aNumeric && bNumeric {
		return cmp.Compare(an, bn)
	}
	return collator.CompareString(stringValueOf(a), stringValueOf(b))
}

func numericValue(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case time.Time:
		return float64(val.UnixNano()), true
	}
	return 0, false
}

func stringValueOf(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return val.Format(time.DateOnly)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	}
	return fmt.Sprint(v)
}
