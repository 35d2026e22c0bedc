package dashboard

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MetricKind tags how a metric magnitude is interpreted and displayed.
type MetricKind int

const (
	// MetricCount is a plain integer count.
	MetricCount MetricKind = iota
	// MetricCurrency is a monetary amount.
	MetricCurrency
	// MetricPercentage is a percentage with one decimal place.
	MetricPercentage
)

var metricKindNames = map[MetricKind]string{
	MetricCount:      "count",
	MetricCurrency:   "currency",
	MetricPercentage: "percentage",
}

func (k MetricKind) String() string {
	if name, ok := metricKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("MetricKind(%d)", int(k))
}

// ParseMetricKind resolves a kind from its name.
func ParseMetricKind(value string) (MetricKind, error) {
	for kind, name := range metricKindNames {
		if strings.EqualFold(strings.TrimSpace(value), name) {
			return kind, nil
		}
	}
	return MetricCount, fmt.Errorf("dashboard: unknown metric kind %q", value)
}

// MarshalText implements encoding.TextMarshaler.
func (k MetricKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *MetricKind) UnmarshalText(text []byte) error {
	kind, err := ParseMetricKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// MetricValue is the numeric magnitude of a metric plus the kind that decides its format.
// Arithmetic always happens on Magnitude.
type MetricValue struct {
	Kind      MetricKind
	Magnitude float64
}

// Count builds a count metric value.
func Count(n float64) MetricValue { return MetricValue{Kind: MetricCount, Magnitude: n} }

// Currency builds a currency metric value.
func Currency(amount float64) MetricValue { return MetricValue{Kind: MetricCurrency, Magnitude: amount} }

// Percentage builds a percentage metric value.
func Percentage(pct float64) MetricValue { return MetricValue{Kind: MetricPercentage, Magnitude: pct} }

// Apply adds delta to the magnitude, clamps at zero, and normalizes precision for the kind.
func (v MetricValue) Apply(delta float64) MetricValue {
	next := math.Max(0, v.Magnitude+delta)
	switch v.Kind {
	case MetricCount:
		next = math.Round(next)
	case MetricPercentage:
		next = roundTo(next, 1)
	}
	v.Magnitude = next
	return v
}

func (v MetricValue) String() string {
	return FormatMetricValue(v)
}

// MarshalJSON emits the kind, raw magnitude, and display text.
func (v MetricValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind      MetricKind `json:"kind"`
		Magnitude float64    `json:"magnitude"`
		Display   string     `json:"display"`
	}{v.Kind, v.Magnitude, FormatMetricValue(v)})
}

// UnmarshalJSON accepts either the object form or a display string such as "12.5%".
func (v *MetricValue) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		parsed, err := ParseMetricValue(text)
		if err != nil {
			return err
		}
		*v = parsed
		return nil
	}
	var raw struct {
		Kind      MetricKind `json:"kind"`
		Magnitude float64    `json:"magnitude"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("dashboard: decode metric value: %w", err)
	}
	v.Kind = raw.Kind
	v.Magnitude = raw.Magnitude
	return nil
}

var displayPrinter = message.NewPrinter(language.English)

// FormatMetricValue renders the display string for a metric value.
func FormatMetricValue(v MetricValue) string {
	switch v.Kind {
	case MetricCurrency:
		return displayPrinter.Sprintf("$%.2f", v.Magnitude)
	case MetricPercentage:
		return strconv.FormatFloat(roundTo(v.Magnitude, 1), 'f', 1, 64) + "%"
	default:
		return displayPrinter.Sprintf("%d", int64(math.Round(v.Magnitude)))
	}
}

// ParseMetricValue reads display text back into a tagged value. A "%" marks a percentage,
// a "$" a currency; everything that is not a digit, dot, or minus sign is stripped.
func ParseMetricValue(text string) (MetricValue, error) {
	kind := MetricCount
	switch {
	case strings.Contains(text, "%"):
		kind = MetricPercentage
	case strings.Contains(text, "$"):
		kind = MetricCurrency
	}
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, text)
	if cleaned == "" {
		return MetricValue{}, fmt.Errorf("dashboard: metric value %q has no digits", text)
	}
	magnitude, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return MetricValue{}, fmt.Errorf("dashboard: parse metric value %q: %w", text, err)
	}
	return MetricValue{Kind: kind, Magnitude: magnitude}, nil
}

func roundTo(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}
