package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-insights/components/dashboard"
)

// OverviewInput identifies the session and filters for the overview page.
type OverviewInput struct {
	SessionID string
	Request   dashboard.TableRequest
}

type overviewService interface {
	Overview(ctx context.Context, sessionID string, req dashboard.TableRequest) (dashboard.Overview, error)
}

// OverviewQuery executes read-only overview resolution.
type OverviewQuery struct {
	service overviewService
}

// NewOverviewQuery builds the query.
func NewOverviewQuery(service overviewService) *OverviewQuery {
	return &OverviewQuery{service: service}
}

var _ gocommand.Querier[OverviewInput, dashboard.Overview] = (*OverviewQuery)(nil)

// Query resolves the overview page for the session.
func (q *OverviewQuery) Query(ctx context.Context, input OverviewInput) (dashboard.Overview, error) {
	return q.service.Overview(ctx, input.SessionID, input.Request)
}
