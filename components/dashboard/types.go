package dashboard

import (
	"context"
	"time"
)

// Record is a single row of tabular dashboard data. Field returns the value stored
// under name (int, int64, float64, string, or time.Time) and whether it is present.
type Record interface {
	Field(name string) (any, bool)
}

// UserSource fetches the raw user listing that seeds a dashboard session.
type UserSource interface {
	FetchUsers(ctx context.Context) ([]SourceUser, error)
}

// RefreshHook notifies transports (REST/WebSocket/MQTT) about dashboard changes.
type RefreshHook interface {
	DashboardUpdated(ctx context.Context, event DashboardEvent) error
}

// SourceUser is the upstream user shape before it is mapped into table rows.
type SourceUser struct {
	ID        int
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// FullName joins first and last name with a single space.
func (u SourceUser) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// UserRecord is a row of the users listing page.
type UserRecord struct {
	ID    int    `json:"id" csv:"id"`
	Name  string `json:"name" csv:"name"`
	Email string `json:"email" csv:"email"`
	Phone string `json:"phone" csv:"phone"`
}

// Field implements Record.
func (u UserRecord) Field(name string) (any, bool) {
	switch name {
	case "id":
		return u.ID, true
	case "name":
		return u.Name, true
	case "email":
		return u.Email, true
	case "phone":
		return u.Phone, u.Phone != ""
	}
	return nil, false
}

// SalesRecord is a row of the overview page table.
type SalesRecord struct {
	Name  string    `json:"name" csv:"name"`
	Email string    `json:"email" csv:"email"`
	Sales int       `json:"sales" csv:"sales"`
	Date  time.Time `json:"date" csv:"date"`
}

// Field implements Record.
func (s SalesRecord) Field(name string) (any, bool) {
	switch name {
	case "name":
		return s.Name, true
	case "email":
		return s.Email, true
	case "sales":
		return s.Sales, true
	case "date":
		return s.Date, !s.Date.IsZero()
	}
	return nil, false
}

// MetricRecord is a summary card on the overview page.
type MetricRecord struct {
	Title  string      `json:"title"`
	Value  MetricValue `json:"value"`
	Change float64     `json:"change"`
	Date   time.Time   `json:"date"`
}

// Field implements Record. "value" resolves to the numeric magnitude so metrics sort
// numerically regardless of their display format.
func (m MetricRecord) Field(name string) (any, bool) {
	switch name {
	case "title":
		return m.Title, true
	case "value":
		return m.Value.Magnitude, true
	case "change":
		return m.Change, true
	case "date":
		return m.Date, !m.Date.IsZero()
	case "display":
		return m.Value.String(), true
	}
	return nil, false
}

// PositiveTrend reports whether the last change moved the metric up (or left it flat).
func (m MetricRecord) PositiveTrend() bool {
	return m.Change >= 0
}

// DashboardEvent describes changes that transports might care about.
type DashboardEvent struct {
	SessionID string         `json:"session_id"`
	Kind      string         `json:"kind"`
	Table     string         `json:"table,omitempty"`
	Metrics   []MetricRecord `json:"metrics,omitempty"`
	Message   string         `json:"message,omitempty"`
	At        time.Time      `json:"at"`
}

// Event kinds emitted by sessions.
const (
	EventSessionMounted  = "session_mounted"
	EventSessionDisposed = "session_disposed"
	EventFetchFailed     = "fetch_failed"
	EventMetricsUpdated  = "metrics_updated"
	EventUpdateStarted   = "update_started"
	EventUpdateFinished  = "update_finished"
	EventExportFailed    = "export_failed"
)
