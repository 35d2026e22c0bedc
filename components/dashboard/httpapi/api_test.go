package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dashboard "github.com/goliatone/go-insights/components/dashboard"
	"github.com/goliatone/go-insights/components/dashboard/commands"
	"github.com/goliatone/go-insights/components/dashboard/queries"
)

type stubCommander[T any] struct {
	last  T
	calls int
	err   error
}

func (s *stubCommander[T]) Execute(ctx context.Context, msg T) error {
	s.last = msg
	s.calls++
	return s.err
}

type stubQuerier[T any, R any] struct {
	last   T
	calls  int
	result R
	err    error
}

func (s *stubQuerier[T, R]) Query(ctx context.Context, msg T) (R, error) {
	s.last = msg
	s.calls++
	return s.result, s.err
}

type mountCommander struct {
	id string
}

func (m mountCommander) Execute(ctx context.Context, msg commands.MountSessionInput) error {
	msg.Result.SessionID = m.id
	return nil
}

func TestHandleMountSession(t *testing.T) {
	api := &Handlers{API: &CommandExecutor{MountCommander: mountCommander{id: "s1"}}}
	req := httptest.NewRequest(http.MethodPost, "/insights/sessions", nil)
	rec := httptest.NewRecorder()
	api.HandleMountSession(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var body commands.MountSessionResult
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.SessionID != "s1" {
		t.Fatalf("expected session id s1, got %q", body.SessionID)
	}
}

func TestHandleDisposeSession(t *testing.T) {
	dispose := &stubCommander[commands.DisposeSessionInput]{}
	api := &Handlers{API: &CommandExecutor{DisposeCommander: dispose}}
	req := httptest.NewRequest(http.MethodDelete, "/insights/sessions/s1", nil)
	rec := httptest.NewRecorder()
	api.HandleDisposeSession(rec, req, "s1")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if dispose.last.SessionID != "s1" {
		t.Fatalf("expected session id propagation")
	}
}

func TestHandleDisposeUnknownSession(t *testing.T) {
	dispose := &stubCommander[commands.DisposeSessionInput]{err: dashboard.ErrSessionNotFound}
	api := &Handlers{API: &CommandExecutor{DisposeCommander: dispose}}
	req := httptest.NewRequest(http.MethodDelete, "/insights/sessions/nope", nil)
	rec := httptest.NewRecorder()
	api.HandleDisposeSession(rec, req, "nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandleTableParsesQuery(t *testing.T) {
	table := &stubQuerier[queries.TableInput, dashboard.TablePayload]{
		result: dashboard.TablePayload{Table: dashboard.TableSales, Count: 1},
	}
	api := &Handlers{API: &CommandExecutor{
		TableQuerier: table,
		Validator:    dashboard.NewJSONSchemaValidator(),
	}}
	req := httptest.NewRequest(http.MethodGet, "/insights/sessions/s1/tables/sales?q=ann&from=2024-01-01&to=2024-01-31&sort=sales&direction=desc", nil)
	rec := httptest.NewRecorder()
	api.HandleTable(rec, req, "s1", dashboard.TableSales)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	got := table.last
	if got.SessionID != "s1" || got.Table != dashboard.TableSales {
		t.Fatalf("unexpected input %+v", got)
	}
	if got.Request.Search != "ann" {
		t.Fatalf("expected search ann, got %q", got.Request.Search)
	}
	if got.Request.Range.From.IsZero() || got.Request.Range.To.IsZero() {
		t.Fatalf("expected both date bounds, got %+v", got.Request.Range)
	}
	if got.Request.Sort != (dashboard.SortConfig{Key: "sales", Direction: dashboard.SortDescending}) {
		t.Fatalf("unexpected sort %+v", got.Request.Sort)
	}
}

func TestHandleTableRejectsBadDate(t *testing.T) {
	table := &stubQuerier[queries.TableInput, dashboard.TablePayload]{}
	api := &Handlers{API: &CommandExecutor{
		TableQuerier: table,
		Validator:    dashboard.NewJSONSchemaValidator(),
	}}
	req := httptest.NewRequest(http.MethodGet, "/insights/sessions/s1/tables/sales?from=yesterday", nil)
	rec := httptest.NewRecorder()
	api.HandleTable(rec, req, "s1", dashboard.TableSales)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if table.calls != 0 {
		t.Fatalf("query should not run for invalid input")
	}
}

func TestHandleTableUnknownTable(t *testing.T) {
	table := &stubQuerier[queries.TableInput, dashboard.TablePayload]{err: dashboard.ErrUnknownTable}
	api := &Handlers{API: &CommandExecutor{TableQuerier: table}}
	req := httptest.NewRequest(http.MethodGet, "/insights/sessions/s1/tables/orders", nil)
	rec := httptest.NewRecorder()
	api.HandleTable(rec, req, "s1", "orders")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandleToggleSort(t *testing.T) {
	sort := &stubCommander[commands.ToggleSortInput]{}
	api := &Handlers{API: &CommandExecutor{
		SortCommander: sort,
		Validator:     dashboard.NewJSONSchemaValidator(),
	}}
	buf, _ := json.Marshal(map[string]string{"key": "id"})
	req := httptest.NewRequest(http.MethodPost, "/insights/sessions/s1/tables/users/sort", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleToggleSort(rec, req, "s1", dashboard.TableUsers)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if sort.calls != 1 || sort.last.Key != "id" || sort.last.Table != dashboard.TableUsers {
		t.Fatalf("unexpected sort input %+v", sort.last)
	}
}

func TestHandleToggleSortRequiresKey(t *testing.T) {
	sort := &stubCommander[commands.ToggleSortInput]{}
	api := &Handlers{API: &CommandExecutor{
		SortCommander: sort,
		Validator:     dashboard.NewJSONSchemaValidator(),
	}}
	req := httptest.NewRequest(http.MethodPost, "/insights/sessions/s1/tables/users/sort", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	api.HandleToggleSort(rec, req, "s1", dashboard.TableUsers)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if sort.calls != 0 {
		t.Fatalf("sort should not execute without a key")
	}
}

func TestHandleExport(t *testing.T) {
	export := &stubQuerier[queries.ExportInput, dashboard.Export]{
		result: dashboard.Export{
			Filename:    "users_export.csv",
			ContentType: "text/csv; charset=utf-8",
			Body:        []byte("ID,Name\n1,Ann Lee\n"),
		},
	}
	api := &Handlers{API: &CommandExecutor{ExportQuerier: export}}
	req := httptest.NewRequest(http.MethodGet, "/insights/sessions/s1/tables/users/export/csv", nil)
	rec := httptest.NewRecorder()
	api.HandleExport(rec, req, "s1", dashboard.TableUsers, "CSV")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if export.last.Format != dashboard.FormatCSV {
		t.Fatalf("expected csv format, got %q", export.last.Format)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="users_export.csv"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if rec.Body.String() != "ID,Name\n1,Ann Lee\n" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestHandleExportRejectsUnknownFormat(t *testing.T) {
	export := &stubQuerier[queries.ExportInput, dashboard.Export]{}
	api := &Handlers{API: &CommandExecutor{ExportQuerier: export}}
	req := httptest.NewRequest(http.MethodGet, "/insights/sessions/s1/tables/users/export/xlsx", nil)
	rec := httptest.NewRecorder()
	api.HandleExport(rec, req, "s1", dashboard.TableUsers, "xlsx")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if export.calls != 0 {
		t.Fatalf("export should not run for unknown format")
	}
}

func TestHandleRefresh(t *testing.T) {
	refresh := &stubCommander[commands.RefreshSessionInput]{}
	api := &Handlers{API: &CommandExecutor{RefreshCommander: refresh}}
	req := httptest.NewRequest(http.MethodPost, "/insights/sessions/s1/refresh", nil)
	rec := httptest.NewRecorder()
	api.HandleRefresh(rec, req, "s1")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if refresh.last.SessionID != "s1" {
		t.Fatalf("expected session id propagation")
	}
}

func TestHandleRefreshStoppedSimulation(t *testing.T) {
	refresh := &stubCommander[commands.RefreshSessionInput]{err: dashboard.ErrSimulationStopped}
	api := &Handlers{API: &CommandExecutor{RefreshCommander: refresh}}
	req := httptest.NewRequest(http.MethodPost, "/insights/sessions/s1/refresh", nil)
	rec := httptest.NewRecorder()
	api.HandleRefresh(rec, req, "s1")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestHandleCharts(t *testing.T) {
	charts := &stubQuerier[queries.ChartsInput, []dashboard.RenderedChart]{
		result: []dashboard.RenderedChart{{ID: "monthly_revenue"}},
	}
	api := &Handlers{API: &CommandExecutor{ChartsQuerier: charts}}
	req := httptest.NewRequest(http.MethodGet, "/insights/charts?session_id=s1", nil)
	rec := httptest.NewRecorder()
	api.HandleCharts(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if charts.last.SessionID != "s1" {
		t.Fatalf("expected session scoping, got %q", charts.last.SessionID)
	}
}

func TestRoutesOnServeMux(t *testing.T) {
	refresh := &stubCommander[commands.RefreshSessionInput]{}
	api := &Handlers{API: &CommandExecutor{RefreshCommander: refresh}}
	mux := http.NewServeMux()
	api.Routes(mux, "/insights")

	req := httptest.NewRequest(http.MethodPost, "/insights/sessions/abc/refresh", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if refresh.last.SessionID != "abc" {
		t.Fatalf("expected path value propagation, got %q", refresh.last.SessionID)
	}
}

func TestUnconfiguredOperationFails(t *testing.T) {
	api := &Handlers{API: &CommandExecutor{}}
	req := httptest.NewRequest(http.MethodPost, "/insights/sessions/s1/refresh", nil)
	rec := httptest.NewRecorder()
	api.HandleRefresh(rec, req, "s1")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestParseTableRequestKeepsSearchSpacing(t *testing.T) {
	validator := dashboard.NewJSONSchemaValidator()
	params := map[string]string{ParamSearch: "ann "}
	lookup := func(key string) string { return params[key] }

	req, err := ParseTableRequest(lookup, validator)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if req.Search != "ann " {
		t.Fatalf("expected search %q, got %q", "ann ", req.Search)
	}

	params[ParamSearch] = "   "
	req, err = ParseTableRequest(lookup, validator)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if req.Search != "" {
		t.Fatalf("expected blank search to be dropped, got %q", req.Search)
	}
}
