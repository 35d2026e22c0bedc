package dashboard

import "context"

// Overview is everything the overview page shows for one request.
type Overview struct {
	SessionID  string          `json:"session_id"`
	Metrics    TablePayload    `json:"metrics"`
	Table      TablePayload    `json:"table"`
	Summary    SalesSummary    `json:"summary"`
	Loading    bool            `json:"loading"`
	Simulation SimulationState `json:"simulation"`
}

// Controller orchestrates page-level reads for the dashboard.
type Controller struct {
	service *Service
}

// NewController wires the service into a controller.
func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

// Overview resolves the metrics cards, the sales table, and the sales summary. The date
// range applies to both the cards and the table, matching the page's single date picker.
func (c *Controller) Overview(ctx context.Context, sessionID string, req TableRequest) (Overview, error) {
	session, err := c.service.Session(sessionID)
	if err != nil {
		return Overview{}, err
	}
	metrics, err := session.TableView(TableMetrics, TableRequest{Range: req.Range})
	if err != nil {
		return Overview{}, err
	}
	table, err := session.TableView(TableSales, req)
	if err != nil {
		return Overview{}, err
	}
	summary, err := session.Summary()
	if err != nil {
		return Overview{}, err
	}
	c.service.recordTelemetry(ctx, "dashboard.overview.resolve", map[string]any{
		"session_id": sessionID,
	})
	return Overview{
		SessionID:  sessionID,
		Metrics:    metrics,
		Table:      table,
		Summary:    summary,
		Loading:    metrics.Status == ViewLoading || table.Status == ViewLoading,
		Simulation: session.Simulation().State(),
	}, nil
}

// Users resolves the users listing page.
func (c *Controller) Users(ctx context.Context, sessionID string, req TableRequest) (TablePayload, error) {
	session, err := c.service.Session(sessionID)
	if err != nil {
		return TablePayload{}, err
	}
	c.service.recordTelemetry(ctx, "dashboard.users.resolve", map[string]any{
		"session_id": sessionID,
	})
	return session.TableView(TableUsers, req)
}
