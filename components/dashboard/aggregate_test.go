package dashboard

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sourceUsers() []SourceUser {
	return []SourceUser{
		{ID: 1, FirstName: "ann", LastName: "lee", Email: "ann@x.com", Phone: "1-555"},
		{ID: 2, FirstName: "bob", LastName: "ray", Email: "bob@y.com"},
		{ID: 1, FirstName: "ann", LastName: "again", Email: "dup@x.com"},
		{ID: 3, LastName: "solo", Email: "solo@z.com"},
	}
}

func TestUsersFromSourceDropsDuplicates(t *testing.T) {
	rows, dups := UsersFromSource(sourceUsers())
	assert.Equal(t, []int{1}, dups)
	require.Len(t, rows, 3)
	assert.Equal(t, UserRecord{ID: 1, Name: "ann lee", Email: "ann@x.com", Phone: "1-555"}, rows[0])
	assert.Equal(t, "solo", rows[2].Name)
}

func TestDedupeUsersKeepsFirstOccurrence(t *testing.T) {
	unique, dups := DedupeUsers(sourceUsers())
	require.Len(t, unique, 3)
	assert.Equal(t, []int{1}, dups)
	assert.Equal(t, "ann@x.com", unique[0].Email)

	rng := rand.New(rand.NewPCG(1, 1))
	rows := SalesRowsFromUsers(unique, time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC), rng)
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.NotEqual(t, "dup@x.com", row.Email)
	}
}

func TestSalesRowsFromUsers(t *testing.T) {
	now := time.Date(2024, 1, 10, 18, 30, 0, 0, time.UTC)
	rows := SalesRowsFromUsers(sourceUsers(), now, rand.New(rand.NewPCG(1, 2)))
	require.Len(t, rows, 4)
	for i, row := range rows {
		assert.GreaterOrEqual(t, row.Sales, 10000)
		assert.Less(t, row.Sales, 20000)
		assert.Equal(t, day("2024-01-10").AddDate(0, 0, -i), row.Date)
	}
	assert.Equal(t, "bob ray", rows[1].Name)
}

func TestBuildMetrics(t *testing.T) {
	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	metrics := BuildMetrics(sampleSales(), now, rand.New(rand.NewPCG(3, 4)))
	require.Len(t, metrics, 3)

	assert.Equal(t, MetricRevenue, metrics[0].Title)
	assert.Equal(t, Currency(57000), metrics[0].Value)
	assert.Equal(t, MetricUsers, metrics[1].Title)
	assert.Equal(t, Count(4), metrics[1].Value)
	assert.Equal(t, MetricGrowth, metrics[2].Title)
	assert.Equal(t, MetricPercentage, metrics[2].Value.Kind)
	assert.LessOrEqual(t, metrics[2].Value.Magnitude, 20.0)

	for _, m := range metrics {
		assert.Equal(t, day("2024-01-10"), m.Date)
	}
	assert.GreaterOrEqual(t, metrics[0].Change, 0.0)
	assert.Less(t, metrics[0].Change, 10.0)
	assert.GreaterOrEqual(t, metrics[2].Change, -5.0)
	assert.Less(t, metrics[2].Change, 5.0)
}

func TestSummarizeSales(t *testing.T) {
	summary, err := SummarizeSales(sampleSales())
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Count)
	assert.Equal(t, 57000.0, summary.Total)
	assert.Equal(t, 14250.0, summary.Mean)
	assert.Equal(t, 13500.0, summary.Median)

	empty, err := SummarizeSales(nil)
	require.NoError(t, err)
	assert.Equal(t, SalesSummary{}, empty)
}
