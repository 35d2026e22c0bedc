package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalesTrendChartOrdersByDate(t *testing.T) {
	spec := SalesTrendChart(sampleSales())
	require.Len(t, spec.Series, 1)
	points := spec.Series[0].Points
	require.Len(t, points, 4)
	assert.Equal(t, ChartPoint{Label: "2024-01-07", Value: 19000}, points[0])
	assert.Equal(t, ChartPoint{Label: "2024-01-10", Value: 12000}, points[3])
}

func TestServiceChartsStatic(t *testing.T) {
	f := newServiceFixture(t, &stubSource{users: testUsers()})
	rendered, err := f.service.Charts(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, rendered, len(DefaultCharts()))
	assert.Contains(t, f.telemetry.events, "dashboard.charts.render")
}

func TestServiceChartsIncludeSessionTrend(t *testing.T) {
	f := newServiceFixture(t, &stubSource{users: testUsers()})
	session := f.mount(t)

	rendered, err := f.service.Charts(context.Background(), session.ID())
	require.NoError(t, err)
	require.Len(t, rendered, len(DefaultCharts())+1)
	assert.Equal(t, "sales_trend", rendered[len(rendered)-1].ID)

	_, err = f.service.Charts(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
