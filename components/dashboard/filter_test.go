package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleSales() []SalesRecord {
	return []SalesRecord{
		{Name: "Ann Lee", Email: "ann@x.com", Sales: 12000, Date: day("2024-01-10")},
		{Name: "Bob Ray", Email: "bob@y.com", Sales: 15000, Date: day("2024-01-09")},
		{Name: "Joanna Ng", Email: "jo@z.com", Sales: 11000, Date: day("2024-01-08")},
		{Name: "Cy Twombly", Email: "cy@annex.io", Sales: 19000, Date: day("2024-01-07")},
	}
}

func names(rows []SalesRecord) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func TestFilterRecordsIdentity(t *testing.T) {
	rows := sampleSales()
	out := FilterRecords(rows, FilterQuery{})
	assert.Equal(t, rows, out)

	out[0].Name = "mutated"
	assert.Equal(t, "Ann Lee", rows[0].Name, "filter must return a copy")
}

func TestFilterByTextMatchesAnyFieldCaseInsensitive(t *testing.T) {
	out := FilterRecords(sampleSales(), FilterQuery{Search: "ANN"})
	assert.Equal(t, []string{"Ann Lee", "Joanna Ng", "Cy Twombly"}, names(out))
}

func TestFilterByTextNoMatch(t *testing.T) {
	out := FilterRecords(sampleSales(), FilterQuery{Search: "zzz"})
	assert.Empty(t, out)
	assert.NotNil(t, out)
}

func TestFilterByTextKeepsSurroundingSpaces(t *testing.T) {
	out := FilterByText(sampleSales(), "ann ", []string{"name", "email"})
	assert.Equal(t, []string{"Ann Lee"}, names(out))

	out = FilterByText(sampleSales(), " ann", []string{"name", "email"})
	assert.Empty(t, out)

	out = FilterByText(sampleSales(), "   ", []string{"name", "email"})
	assert.Equal(t, names(sampleSales()), names(out))
}

func TestFilterByTextRespectsFields(t *testing.T) {
	out := FilterByText(sampleSales(), "annex", []string{"name"})
	assert.Empty(t, out)
	out = FilterByText(sampleSales(), "annex", []string{"email"})
	require.Len(t, out, 1)
	assert.Equal(t, "Cy Twombly", out[0].Name)
}

func TestFilterByDateInclusiveBounds(t *testing.T) {
	rng := DateRange{From: day("2024-01-08"), To: day("2024-01-09")}
	out := FilterRecords(sampleSales(), FilterQuery{Range: rng})
	assert.Equal(t, []string{"Bob Ray", "Joanna Ng"}, names(out))
}

func TestFilterByDateOpenBounds(t *testing.T) {
	out := FilterRecords(sampleSales(), FilterQuery{Range: DateRange{From: day("2024-01-09")}})
	assert.Equal(t, []string{"Ann Lee", "Bob Ray"}, names(out))

	out = FilterRecords(sampleSales(), FilterQuery{Range: DateRange{To: day("2024-01-07")}})
	assert.Equal(t, []string{"Cy Twombly"}, names(out))
}

func TestFilterByDateIgnoresTimeOfDay(t *testing.T) {
	rows := []SalesRecord{{Name: "late", Date: time.Date(2024, 1, 9, 23, 59, 0, 0, time.UTC)}}
	rng := DateRange{From: time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC), To: day("2024-01-09")}
	assert.Len(t, FilterByDate(rows, "date", rng), 1)
}

func TestFilterByDateInvertedRangeIsEmpty(t *testing.T) {
	rng := DateRange{From: day("2024-01-10"), To: day("2024-01-01")}
	assert.True(t, rng.Inverted())
	assert.Empty(t, FilterRecords(sampleSales(), FilterQuery{Range: rng}))
}

func TestFilterByDateDropsUndatedRecords(t *testing.T) {
	rows := append(sampleSales(), SalesRecord{Name: "No Date"})
	out := FilterRecords(rows, FilterQuery{Range: DateRange{From: day("2024-01-01")}})
	assert.NotContains(t, names(out), "No Date")

	all := FilterRecords(rows, FilterQuery{})
	assert.Contains(t, names(all), "No Date")
}

func TestFilterTextThenDate(t *testing.T) {
	out := FilterRecords(sampleSales(), FilterQuery{
		Search: "ann",
		Range:  DateRange{From: day("2024-01-08")},
	})
	assert.Equal(t, []string{"Ann Lee", "Joanna Ng"}, names(out))
}

func TestParseDateRange(t *testing.T) {
	rng, err := ParseDateRange("2024-01-01", "")
	require.NoError(t, err)
	assert.Equal(t, day("2024-01-01"), rng.From)
	assert.True(t, rng.To.IsZero())

	_, err = ParseDateRange("01/01/2024", "")
	assert.Error(t, err)

	rng, err = ParseDateRange(" ", "")
	require.NoError(t, err)
	assert.True(t, rng.IsZero())
}

func TestAsDateAcceptsStrings(t *testing.T) {
	got, ok := asDate("2024-02-03")
	require.True(t, ok)
	assert.Equal(t, day("2024-02-03"), got)

	_, ok = asDate("not a date")
	assert.False(t, ok)
	_, ok = asDate(42)
	assert.False(t, ok)
}
