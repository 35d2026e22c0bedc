package dashboard

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingRender(calls *int, html string) func() (string, error) {
	return func() (string, error) {
		*calls++
		return html, nil
	}
}

func TestChartCacheRendersOncePerKey(t *testing.T) {
	clock := NewManualScheduler(epoch)
	cache := NewChartCache(time.Minute, WithCacheClock(clock.Now))
	calls := 0

	first, err := cache.GetOrRender("monthly_revenue:line", countingRender(&calls, "html"))
	require.NoError(t, err)
	second, err := cache.GetOrRender("monthly_revenue:line", countingRender(&calls, "other"))
	require.NoError(t, err)

	assert.Equal(t, "html", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestChartCacheExpires(t *testing.T) {
	clock := NewManualScheduler(epoch)
	cache := NewChartCache(time.Minute, WithCacheClock(clock.Now))
	calls := 0

	_, err := cache.GetOrRender("monthly_revenue:line", countingRender(&calls, "stale"))
	require.NoError(t, err)
	clock.Advance(time.Minute)
	html, err := cache.GetOrRender("monthly_revenue:line", countingRender(&calls, "fresh"))
	require.NoError(t, err)

	assert.Equal(t, "fresh", html)
	assert.Equal(t, 2, calls)
}

func TestChartCacheDoesNotKeepErrors(t *testing.T) {
	cache := NewChartCache(time.Minute)
	_, err := cache.GetOrRender("broken", func() (string, error) { return "", errors.New("boom") })
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 0, cache.Len())
}

func TestChartCachePrune(t *testing.T) {
	clock := NewManualScheduler(epoch)
	cache := NewChartCache(time.Minute, WithCacheClock(clock.Now))
	calls := 0
	_, _ = cache.GetOrRender("a", countingRender(&calls, "a"))
	clock.Advance(30 * time.Second)
	_, _ = cache.GetOrRender("b", countingRender(&calls, "b"))
	clock.Advance(45 * time.Second)

	assert.Equal(t, 1, cache.Prune())
	assert.Equal(t, 1, cache.Len())
}

func TestChartCacheDisabledByZeroTTL(t *testing.T) {
	cache := NewChartCache(0)
	calls := 0
	for i := 0; i < 3; i++ {
		_, err := cache.GetOrRender("sales_trend:line", countingRender(&calls, "<div></div>"))
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)
	assert.Equal(t, 0, cache.Len())
}

func TestChartHashTracksSeries(t *testing.T) {
	spec := SalesTrendChart(sampleSales())
	same := SalesTrendChart(sampleSales())
	assert.Equal(t, chartHash(spec), chartHash(same))

	spec.Series[0].Points[0].Value = 1
	assert.NotEqual(t, chartHash(spec), chartHash(same))
}
