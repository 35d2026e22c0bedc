package dashboard

import (
	"context"
	"time"
)

// DefaultCharts returns the static analytics page charts.
func DefaultCharts() []ChartSpec {
	return []ChartSpec{
		{
			ID:    "monthly_revenue",
			Kind:  ChartLine,
			Title: "Monthly Revenue",
			Series: []ChartSeries{{Name: "Revenue", Points: []ChartPoint{
				{Label: "Jan", Value: 4000},
				{Label: "Feb", Value: 3000},
				{Label: "Mar", Value: 5000},
				{Label: "Apr", Value: 4000},
				{Label: "May", Value: 6000},
				{Label: "Jun", Value: 7000},
			}}},
		},
		{
			ID:    "product_sales",
			Kind:  ChartBar,
			Title: "Product Sales",
			Series: []ChartSeries{{Name: "Sales", Points: []ChartPoint{
				{Label: "Product A", Value: 2400},
				{Label: "Product B", Value: 1398},
				{Label: "Product C", Value: 9800},
				{Label: "Product D", Value: 3908},
				{Label: "Product E", Value: 4800},
			}}},
		},
		{
			ID:    "browser_usage",
			Kind:  ChartPie,
			Title: "Browser Usage",
			Series: []ChartSeries{{Name: "Browsers", Points: []ChartPoint{
				{Label: "Chrome", Value: 400},
				{Label: "Firefox", Value: 300},
				{Label: "Safari", Value: 300},
				{Label: "Edge", Value: 200},
			}}},
		},
		{
			ID:    "site_visits",
			Kind:  ChartArea,
			Title: "Site Visits",
			Series: []ChartSeries{{Name: "Visits", Points: []ChartPoint{
				{Label: "Jan", Value: 400},
				{Label: "Feb", Value: 300},
				{Label: "Mar", Value: 500},
				{Label: "Apr", Value: 200},
				{Label: "May", Value: 278},
				{Label: "Jun", Value: 189},
			}}},
		},
		{
			ID:    "department_scores",
			Kind:  ChartRadar,
			Title: "Department Scores",
			Series: []ChartSeries{{Name: "Score", Points: []ChartPoint{
				{Label: "Sales", Value: 120},
				{Label: "Marketing", Value: 98},
				{Label: "Development", Value: 86},
				{Label: "Customer Support", Value: 99},
				{Label: "Information Technology", Value: 85},
				{Label: "Administration", Value: 65},
			}}},
		},
		{
			ID:    "task_progress",
			Kind:  ChartRadial,
			Title: "Task Progress",
			Series: []ChartSeries{{Name: "Tasks", Points: []ChartPoint{
				{Label: "Completed", Value: 70},
				{Label: "In Progress", Value: 20},
				{Label: "Pending", Value: 10},
			}}},
		},
	}
}

// SalesTrendChart plots overview sales by day, oldest first.
func SalesTrendChart(rows []SalesRecord) ChartSpec {
	sorted := SortRecords(rows, SortConfig{Key: "date", Direction: SortAscending})
	points := make([]ChartPoint, 0, len(sorted))
	for _, row := range sorted {
		points = append(points, ChartPoint{
			Label: row.Date.Format(time.DateOnly),
			Value: float64(row.Sales),
		})
	}
	return ChartSpec{
		ID:     "sales_trend",
		Kind:   ChartLine,
		Title:  "Sales Trend",
		Series: []ChartSeries{{Name: "Sales", Points: points}},
	}
}

// Charts renders the analytics page. With a session id, the session's sales trend is
// appended to the static charts unless the sales table is mid-update.
func (s *Service) Charts(ctx context.Context, sessionID string) ([]RenderedChart, error) {
	specs := DefaultCharts()
	if sessionID != "" {
		session, err := s.Session(sessionID)
		if err != nil {
			return nil, err
		}
		if snap := session.Store().Sales.Snapshot(); !snap.Loading && len(snap.Records) > 0 {
			specs = append(specs, SalesTrendChart(snap.Records))
		}
	}
	rendered, err := s.opts.Charts.RenderAll(specs)
	if err != nil {
		return nil, err
	}
	s.recordTelemetry(ctx, "dashboard.charts.render", map[string]any{
		"session_id": sessionID,
		"charts":     len(rendered),
	})
	return rendered, nil
}
