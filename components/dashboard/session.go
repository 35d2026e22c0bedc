package dashboard

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// ErrSessionNotFound is returned for unknown or disposed session ids.
	ErrSessionNotFound = errors.New("dashboard: session not found")
	// ErrUnknownTable is returned when a table name is not served by sessions.
	ErrUnknownTable = errors.New("dashboard: unknown table")
	// ErrUnknownFormat is returned for export formats other than csv and pdf.
	ErrUnknownFormat = errors.New("dashboard: unknown export format")
)

const defaultHookTimeout = 5 * time.Second

// ExportFormat selects the export encoding.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// Export is a rendered download.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

// TableRequest narrows a table view. A zero Sort falls back to the session's toggled sort.
type TableRequest struct {
	Search string     `json:"search,omitempty"`
	Range  DateRange  `json:"range"`
	Sort   SortConfig `json:"sort"`
}

// ColumnHeader is a column plus its current sort marker.
type ColumnHeader struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	Indicator string `json:"indicator,omitempty"`
}

// TablePayload is the transport-friendly form of a derived view.
type TablePayload struct {
	Table   string         `json:"table"`
	Status  ViewStatus     `json:"status"`
	Columns []ColumnHeader `json:"columns"`
	Rows    any            `json:"rows"`
	Count   int            `json:"count"`
	Total   int            `json:"total"`
	Sort    SortConfig     `json:"sort"`
	Version uint64         `json:"version"`
}

// Session is one mounted dashboard page. It owns its record store and simulation; both
// go away when the session is disposed.
type Session struct {
	id        string
	cfg       *Config
	store     *RecordStore
	sim       *Simulation
	logger    logrus.FieldLogger
	hook      RefreshHook
	telemetry Telemetry
	now       func() time.Time
	rng       *rand.Rand
	timeout   time.Duration

	sales   *ViewPipeline[SalesRecord]
	users   *ViewPipeline[UserRecord]
	metrics *ViewPipeline[MetricRecord]

	mu       sync.Mutex
	sorts    map[string]SortConfig
	fetchErr error
	disposed bool
}

type sessionDeps struct {
	id        string
	cfg       *Config
	logger    logrus.FieldLogger
	hook      RefreshHook
	telemetry Telemetry
	scheduler Scheduler
	now       func() time.Time
	rng       *rand.Rand
	timeout   time.Duration
}

func newSession(deps sessionDeps) *Session {
	s := &Session{
		id:        deps.id,
		cfg:       deps.cfg,
		store:     NewRecordStore(),
		logger:    deps.logger.WithField("session_id", deps.id),
		hook:      deps.hook,
		telemetry: deps.telemetry,
		now:       deps.now,
		rng:       deps.rng,
		timeout:   deps.timeout,
		sales:     NewViewPipeline[SalesRecord](),
		users:     NewViewPipeline[UserRecord](),
		metrics:   NewViewPipeline[MetricRecord](),
		sorts:     make(map[string]SortConfig),
	}
	s.sim = NewSimulation(s.store, SimulationOptions{
		Config:        deps.cfg.Simulation,
		Scheduler:     deps.scheduler,
		Rand:          rand.New(rand.NewPCG(deps.rng.Uint64(), deps.rng.Uint64())),
		OnStateChange: s.onSimulationState,
		OnTick:        s.onSimulationTick,
	})
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Store exposes the session's record store.
func (s *Session) Store() *RecordStore { return s.store }

// Simulation exposes the metric simulation handle.
func (s *Session) Simulation() *Simulation { return s.sim }

// FetchError returns the error from the initial load, if any.
func (s *Session) FetchError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchErr
}

// load runs the initial fetch. A failed fetch leaves the store empty and is only logged.
func (s *Session) load(ctx context.Context, source UserSource) {
	s.store.SetLoading(true)
	defer s.store.SetLoading(false)

	started := s.now()
	users, err := source.FetchUsers(ctx)
	if err != nil {
		s.mu.Lock()
		s.fetchErr = err
		s.mu.Unlock()
		s.logger.WithError(err).Error("dashboard: user fetch failed")
		s.telemetry.Record(ctx, "dashboard.fetch.failed", map[string]any{
			"session_id": s.id,
			"error":      err.Error(),
		})
		s.emit(ctx, DashboardEvent{Kind: EventFetchFailed, Message: err.Error()})
		return
	}

	unique, duplicates := DedupeUsers(users)
	if len(duplicates) > 0 {
		s.logger.WithField("ids", duplicates).Warn("dashboard: dropped users with duplicate ids")
	}
	rows, _ := UsersFromSource(unique)
	now := s.now()
	sales := SalesRowsFromUsers(unique, now, s.rng)
	s.store.Users.Replace(rows)
	s.store.Sales.Replace(sales)
	s.store.Metrics.Replace(BuildMetrics(sales, now, s.rng))

	s.logger.WithFields(logrus.Fields{
		"users":    len(rows),
		"duration": s.now().Sub(started).String(),
	}).Info("dashboard: session loaded")
	s.telemetry.Record(ctx, "dashboard.fetch.succeeded", map[string]any{
		"session_id": s.id,
		"users":      len(rows),
	})
}

// Table returns the preset for a served table.
func (s *Session) Table(name string) (TableConfig, error) {
	table, ok := s.cfg.Table(name)
	if !ok {
		return TableConfig{}, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	return table, nil
}

// SortConfig returns the toggled sort for a table.
func (s *Session) SortConfig(table string) SortConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorts[table]
}

// ToggleSort applies a header click on key for table and returns the new sort.
func (s *Session) ToggleSort(table, key string) (SortConfig, error) {
	if _, err := s.Table(table); err != nil {
		return SortConfig{}, err
	}
	if key == "" {
		return SortConfig{}, errors.New("dashboard: sort key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := ToggleSort(s.sorts[table], key)
	s.sorts[table] = next
	return next, nil
}

func (s *Session) viewQuery(table TableConfig, req TableRequest) ViewQuery {
	q := ViewQuery{
		Search:    req.Search,
		Fields:    table.SearchFields,
		DateField: table.DateField,
		Sort:      req.Sort,
	}
	if table.DateField != "" {
		q.Range = req.Range
	}
	if !q.Sort.Active() {
		q.Sort = s.SortConfig(table.Name)
	}
	return q
}

// SalesView derives the overview table.
func (s *Session) SalesView(req TableRequest) View[SalesRecord] {
	table, _ := s.cfg.Table(TableSales)
	return s.sales.Derive(s.store.Sales.Snapshot(), s.viewQuery(table, req))
}

// UsersView derives the users listing.
func (s *Session) UsersView(req TableRequest) View[UserRecord] {
	table, _ := s.cfg.Table(TableUsers)
	return s.users.Derive(s.store.Users.Snapshot(), s.viewQuery(table, req))
}

// MetricsView derives the summary cards.
func (s *Session) MetricsView(req TableRequest) View[MetricRecord] {
	table, _ := s.cfg.Table(TableMetrics)
	return s.metrics.Derive(s.store.Metrics.Snapshot(), s.viewQuery(table, req))
}

// TableView derives any served table into a transport payload.
func (s *Session) TableView(name string, req TableRequest) (TablePayload, error) {
	table, err := s.Table(name)
	if err != nil {
		return TablePayload{}, err
	}
	switch name {
	case TableSales:
		return newTablePayload(table, s.SalesView(req)), nil
	case TableUsers:
		return newTablePayload(table, s.UsersView(req)), nil
	case TableMetrics:
		return newTablePayload(table, s.MetricsView(req)), nil
	}
	return TablePayload{}, fmt.Errorf("%w: %s", ErrUnknownTable, name)
}

func newTablePayload[T Record](table TableConfig, view View[T]) TablePayload {
	headers := make([]ColumnHeader, 0, len(table.Columns))
	for _, col := range table.Columns {
		headers = append(headers, ColumnHeader{
			Key:       col.Key,
			Label:     col.Header(),
			Indicator: view.Query.Sort.Indicator(col.Key),
		})
	}
	return TablePayload{
		Table:   table.Name,
		Status:  view.Status,
		Columns: headers,
		Rows:    view.Rows,
		Count:   len(view.Rows),
		Total:   view.Total,
		Sort:    view.Query.Sort,
		Version: view.Version,
	}
}

// Export renders what the table currently shows for req.
func (s *Session) Export(ctx context.Context, name string, format ExportFormat, req TableRequest) (Export, error) {
	out, err := s.export(name, format, req)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"table":  name,
			"format": string(format),
		}).WithError(err).Error("dashboard: export failed")
		s.telemetry.Record(ctx, "dashboard.export.failed", map[string]any{
			"session_id": s.id,
			"table":      name,
			"format":     string(format),
			"error":      err.Error(),
		})
		s.emit(ctx, DashboardEvent{Kind: EventExportFailed, Table: name, Message: err.Error()})
		return Export{}, err
	}
	s.telemetry.Record(ctx, "dashboard.export", map[string]any{
		"session_id": s.id,
		"table":      name,
		"format":     string(format),
		"bytes":      len(out.Body),
	})
	return out, nil
}

func (s *Session) export(name string, format ExportFormat, req TableRequest) (Export, error) {
	table, err := s.Table(name)
	if err != nil {
		return Export{}, err
	}
	switch name {
	case TableSales:
		return renderExport(s.SalesView(req).Rows, table, format)
	case TableUsers:
		return renderExport(s.UsersView(req).Rows, table, format)
	case TableMetrics:
		return renderExport(s.MetricsView(req).Rows, table, format)
	}
	return Export{}, fmt.Errorf("%w: %s", ErrUnknownTable, name)
}

// Grid returns the header labels and formatted cells of a table view, in export
// column order.
func (s *Session) Grid(name string, req TableRequest) ([]string, [][]string, error) {
	table, err := s.Table(name)
	if err != nil {
		return nil, nil, err
	}
	switch name {
	case TableSales:
		return headerCells(table.Columns), gridOf(s.SalesView(req).Rows, table.Columns), nil
	case TableUsers:
		return headerCells(table.Columns), gridOf(s.UsersView(req).Rows, table.Columns), nil
	case TableMetrics:
		return headerCells(table.Columns), gridOf(s.MetricsView(req).Rows, table.Columns), nil
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
}

func gridOf[T Record](rows []T, columns []Column) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = rowCells(row, columns)
	}
	return out
}

func renderExport[T Record](rows []T, table TableConfig, format ExportFormat) (Export, error) {
	switch format {
	case FormatCSV:
		text, err := ToDelimitedText(rows, table.Columns)
		if err != nil {
			return Export{}, err
		}
		return Export{
			Filename:    table.Export.CSVFilename,
			ContentType: "text/csv; charset=utf-8",
			Body:        []byte(text),
		}, nil
	case FormatPDF:
		body, err := ToDocument(rows, table.Columns, DocumentOptions{
			Title:       table.Export.Title,
			HeaderColor: table.Export.HeaderColor,
			FontSize:    table.Export.FontSize,
		})
		if err != nil {
			return Export{}, err
		}
		return Export{
			Filename:    table.Export.PDFFilename,
			ContentType: "application/pdf",
			Body:        body,
		}, nil
	}
	return Export{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Summary aggregates the overview sales column.
func (s *Session) Summary() (SalesSummary, error) {
	return SummarizeSales(s.store.Sales.Snapshot().Records)
}

// Refresh forces one update burst.
func (s *Session) Refresh(ctx context.Context) error {
	if err := s.sim.TriggerUpdate(); err != nil {
		return err
	}
	s.telemetry.Record(ctx, "dashboard.refresh", map[string]any{"session_id": s.id})
	return nil
}

// Dispose stops the simulation and every timer it owns. It is idempotent; the returned
// error comes from notifying the refresh hook.
func (s *Session) Dispose(ctx context.Context) error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return nil
	}
	s.disposed = true
	s.mu.Unlock()

	s.sim.Stop()
	s.logger.Debug("dashboard: session disposed")
	return s.emit(ctx, DashboardEvent{Kind: EventSessionDisposed})
}

// onSimulationState marks the overview sales table as loading for the length of a burst.
// Metric cards stay visible so ticks show up as they land.
func (s *Session) onSimulationState(state SimulationState) {
	ctx, cancel := s.hookContext()
	defer cancel()
	switch state {
	case SimulationUpdating:
		s.store.Sales.SetLoading(true)
		s.emit(ctx, DashboardEvent{Kind: EventUpdateStarted, Table: TableSales})
	case SimulationArmed, SimulationIdle:
		if s.store.Sales.Snapshot().Loading {
			s.store.Sales.SetLoading(false)
			s.emit(ctx, DashboardEvent{Kind: EventUpdateFinished, Table: TableSales})
		}
	}
}

func (s *Session) onSimulationTick(snapshot Snapshot[MetricRecord]) {
	ctx, cancel := s.hookContext()
	defer cancel()
	s.emit(ctx, DashboardEvent{
		Kind:    EventMetricsUpdated,
		Table:   TableMetrics,
		Metrics: snapshot.Records,
	})
}

func (s *Session) hookContext() (context.Context, context.CancelFunc) {
	timeout := s.timeout
	if timeout <= 0 {
		timeout = defaultHookTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}

func (s *Session) emit(ctx context.Context, event DashboardEvent) error {
	event.SessionID = s.id
	if event.At.IsZero() {
		event.At = s.now()
	}
	if err := s.hook.DashboardUpdated(ctx, event); err != nil {
		s.logger.WithError(err).WithField("kind", event.Kind).Warn("dashboard: refresh hook failed")
		return err
	}
	return nil
}
