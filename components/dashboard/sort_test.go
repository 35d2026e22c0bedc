package dashboard

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortRecordsNumeric(t *testing.T) {
	out := SortRecords(sampleSales(), SortConfig{Key: "sales", Direction: SortAscending})
	assert.Equal(t, []string{"Joanna Ng", "Ann Lee", "Bob Ray", "Cy Twombly"}, names(out))
}

func TestSortRecordsNumericNotLexicographic(t *testing.T) {
	users := []UserRecord{{ID: 10}, {ID: 9}, {ID: 100}, {ID: 1}}
	out := SortRecords(users, SortConfig{Key: "id", Direction: SortAscending})
	ids := make([]int, len(out))
	for i, u := range out {
		ids[i] = u.ID
	}
	assert.Equal(t, []int{1, 9, 10, 100}, ids)
}

func TestSortRecordsStringsCollated(t *testing.T) {
	users := []UserRecord{{Name: "bob"}, {Name: "Émile"}, {Name: "alice"}, {Name: "Zed"}}
	out := SortRecords(users, SortConfig{Key: "name", Direction: SortAscending})
	got := make([]string, len(out))
	for i, u := range out {
		got[i] = u.Name
	}
	assert.Equal(t, []string{"alice", "bob", "Émile", "Zed"}, got)
}

func TestSortRecordsDates(t *testing.T) {
	out := SortRecords(sampleSales(), SortConfig{Key: "date", Direction: SortAscending})
	assert.Equal(t, []string{"Cy Twombly", "Joanna Ng", "Bob Ray", "Ann Lee"}, names(out))
}

func TestSortRecordsIdempotent(t *testing.T) {
	cfg := SortConfig{Key: "name", Direction: SortDescending}
	once := SortRecords(sampleSales(), cfg)
	twice := SortRecords(once, cfg)
	assert.Equal(t, once, twice)
}

func TestSortDescendingReversesAscendingWithoutTies(t *testing.T) {
	asc := SortRecords(sampleSales(), SortConfig{Key: "sales", Direction: SortAscending})
	desc := SortRecords(sampleSales(), SortConfig{Key: "sales", Direction: SortDescending})
	reversed := slices.Clone(asc)
	slices.Reverse(reversed)
	assert.Equal(t, reversed, desc)
}

func TestSortRecordsStableOnTies(t *testing.T) {
	rows := []SalesRecord{
		{Name: "first", Sales: 5},
		{Name: "second", Sales: 5},
		{Name: "third", Sales: 1},
	}
	asc := SortRecords(rows, SortConfig{Key: "sales", Direction: SortAscending})
	assert.Equal(t, []string{"third", "first", "second"}, names(asc))
	desc := SortRecords(rows, SortConfig{Key: "sales", Direction: SortDescending})
	assert.Equal(t, []string{"first", "second", "third"}, names(desc))
}

func TestSortRecordsInactiveKeepsOrder(t *testing.T) {
	rows := sampleSales()
	out := SortRecords(rows, SortConfig{})
	assert.Equal(t, rows, out)
}

func TestSortRecordsDoesNotMutateInput(t *testing.T) {
	rows := sampleSales()
	before := slices.Clone(rows)
	_ = SortRecords(rows, SortConfig{Key: "sales", Direction: SortDescending})
	assert.Equal(t, before, rows)
}

func TestToggleSort(t *testing.T) {
	cfg := ToggleSort(SortConfig{}, "name")
	assert.Equal(t, SortConfig{Key: "name", Direction: SortAscending}, cfg)
	cfg = ToggleSort(cfg, "name")
	assert.Equal(t, SortConfig{Key: "name", Direction: SortDescending}, cfg)
	cfg = ToggleSort(cfg, "name")
	assert.Equal(t, SortConfig{Key: "name", Direction: SortAscending}, cfg)
	cfg = ToggleSort(SortConfig{Key: "name", Direction: SortDescending}, "email")
	assert.Equal(t, SortConfig{Key: "email", Direction: SortAscending}, cfg)
}

func TestSortIndicator(t *testing.T) {
	cfg := SortConfig{Key: "id", Direction: SortDescending}
	assert.Equal(t, "▼", cfg.Indicator("id"))
	assert.Equal(t, "", cfg.Indicator("name"))
	assert.Equal(t, "▲", SortConfig{Key: "id", Direction: SortAscending}.Indicator("id"))
}

func TestParseSortDirection(t *testing.T) {
	for input, want := range map[string]SortDirection{
		"":           SortAscending,
		"asc":        SortAscending,
		"Ascending":  SortAscending,
		"desc":       SortDescending,
		"DESCENDING": SortDescending,
	} {
		got, err := ParseSortDirection(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
	_, err := ParseSortDirection("sideways")
	assert.ErrorIs(t, err, ErrInvalidDirection)
}

func TestCompareValuesMixedTypesFallBackToStrings(t *testing.T) {
	assert.Less(t, CompareValues(2, 10), 0)
	assert.Less(t, CompareValues("10", "9"), 0)
	assert.Equal(t, 0, CompareValues(time.Time{}, time.Time{}))
}
