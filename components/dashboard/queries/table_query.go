package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-insights/components/dashboard"
)

// TableInput identifies a table view request.
type TableInput struct {
	SessionID string
	Table     string
	Request   dashboard.TableRequest
}

type tableService interface {
	TableView(ctx context.Context, sessionID, table string, req dashboard.TableRequest) (dashboard.TablePayload, error)
}

// TableQuery derives a filtered and sorted table view.
type TableQuery struct {
	service tableService
}

// NewTableQuery builds the query.
func NewTableQuery(service tableService) *TableQuery {
	return &TableQuery{service: service}
}

var _ gocommand.Querier[TableInput, dashboard.TablePayload] = (*TableQuery)(nil)

// Query resolves the table view.
func (q *TableQuery) Query(ctx context.Context, input TableInput) (dashboard.TablePayload, error) {
	return q.service.TableView(ctx, input.SessionID, input.Table, input.Request)
}

// ExportInput identifies a table download.
type ExportInput struct {
	SessionID string
	Table     string
	Format    dashboard.ExportFormat
	Request   dashboard.TableRequest
}

type exportService interface {
	Export(ctx context.Context, sessionID, table string, format dashboard.ExportFormat, req dashboard.TableRequest) (dashboard.Export, error)
}

// ExportQuery renders what a table currently shows as CSV or PDF.
type ExportQuery struct {
	service exportService
}

// NewExportQuery builds the query.
func NewExportQuery(service exportService) *ExportQuery {
	return &ExportQuery{service: service}
}

var _ gocommand.Querier[ExportInput, dashboard.Export] = (*ExportQuery)(nil)

// Query renders the export.
func (q *ExportQuery) Query(ctx context.Context, input ExportInput) (dashboard.Export, error) {
	return q.service.Export(ctx, input.SessionID, input.Table, input.Format, input.Request)
}
