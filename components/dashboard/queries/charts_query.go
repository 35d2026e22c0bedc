package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-insights/components/dashboard"
)

// ChartsInput optionally scopes the charts page to a session.
type ChartsInput struct {
	SessionID string
}

type chartsService interface {
	Charts(ctx context.Context, sessionID string) ([]dashboard.RenderedChart, error)
}

// ChartsQuery renders the analytics charts.
type ChartsQuery struct {
	service chartsService
}

// NewChartsQuery builds the query.
func NewChartsQuery(service chartsService) *ChartsQuery {
	return &ChartsQuery{service: service}
}

var _ gocommand.Querier[ChartsInput, []dashboard.RenderedChart] = (*ChartsQuery)(nil)

// Query renders every chart.
func (q *ChartsQuery) Query(ctx context.Context, input ChartsInput) ([]dashboard.RenderedChart, error) {
	return q.service.Charts(ctx, input.SessionID)
}
