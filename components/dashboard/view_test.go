package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveViewFiltersThenSorts(t *testing.T) {
	snap := Snapshot[SalesRecord]{Version: 3, Records: sampleSales()}
	view := DeriveView(snap, ViewQuery{
		Search: "ann",
		Sort:   SortConfig{Key: "sales", Direction: SortDescending},
	})
	assert.Equal(t, ViewReady, view.Status)
	assert.Equal(t, []string{"Cy Twombly", "Ann Lee", "Joanna Ng"}, names(view.Rows))
	assert.Equal(t, 4, view.Total)
	assert.Equal(t, uint64(3), view.Version)
}

func TestDeriveViewDistinguishesLoadingFromEmpty(t *testing.T) {
	loading := DeriveView(Snapshot[SalesRecord]{Loading: true, Records: sampleSales()}, ViewQuery{})
	assert.Equal(t, ViewLoading, loading.Status)
	assert.Empty(t, loading.Rows)

	empty := DeriveView(Snapshot[SalesRecord]{Records: sampleSales()}, ViewQuery{Search: "nobody"})
	assert.Equal(t, ViewEmpty, empty.Status)
	assert.NotNil(t, empty.Rows)
}

func TestViewPipelineMemoizesOnInputs(t *testing.T) {
	collection := NewCollection(sampleSales())
	pipeline := NewViewPipeline[SalesRecord]()
	q := ViewQuery{Search: "ann", Sort: SortConfig{Key: "name", Direction: SortAscending}}

	first := pipeline.Derive(collection.Snapshot(), q)
	second := pipeline.Derive(collection.Snapshot(), q)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, pipeline.Computations())

	pipeline.Derive(collection.Snapshot(), ViewQuery{Search: "bob"})
	assert.Equal(t, 2, pipeline.Computations())

	collection.Replace(sampleSales()[:1])
	view := pipeline.Derive(collection.Snapshot(), ViewQuery{Search: "bob"})
	assert.Equal(t, 3, pipeline.Computations())
	assert.Empty(t, view.Rows)
}

func TestViewPipelineReturnsIndependentCopies(t *testing.T) {
	pipeline := NewViewPipeline[SalesRecord]()
	snap := Snapshot[SalesRecord]{Records: sampleSales()}
	view := pipeline.Derive(snap, ViewQuery{})
	require.NotEmpty(t, view.Rows)
	view.Rows[0].Name = "mutated"

	again := pipeline.Derive(snap, ViewQuery{})
	assert.Equal(t, "Ann Lee", again.Rows[0].Name)
}

func TestViewQueryEqual(t *testing.T) {
	a := ViewQuery{Search: "x", Range: DateRange{From: day("2024-01-01")}}
	b := ViewQuery{Search: "x", Range: DateRange{From: day("2024-01-01")}}
	assert.True(t, a.Equal(b))
	b.Sort = SortConfig{Key: "name"}
	assert.False(t, a.Equal(b))
}
