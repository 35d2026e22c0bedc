package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/goliatone/go-insights/components/dashboard"
	"github.com/goliatone/go-insights/components/dashboard/commands"
	"github.com/goliatone/go-insights/components/dashboard/queries"
)

// Executor is the transport-neutral surface shared by the net/http handlers and the
// go-router adapter.
type Executor interface {
	Mount(ctx context.Context) (string, error)
	Dispose(ctx context.Context, sessionID string) error
	ToggleSort(ctx context.Context, input commands.ToggleSortInput) (dashboard.SortConfig, error)
	Refresh(ctx context.Context, sessionID string) error
	Overview(ctx context.Context, input queries.OverviewInput) (dashboard.Overview, error)
	Table(ctx context.Context, input queries.TableInput) (dashboard.TablePayload, error)
	Export(ctx context.Context, input queries.ExportInput) (dashboard.Export, error)
	Charts(ctx context.Context, input queries.ChartsInput) ([]dashboard.RenderedChart, error)
	Validate(name string, payload map[string]any) error
}

var errNotConfigured = errors.New("httpapi: operation not configured")

// CommandExecutor adapts go-command commanders and queriers to Executor.
type CommandExecutor struct {
	MountCommander   gocommand.Commander[commands.MountSessionInput]
	DisposeCommander gocommand.Commander[commands.DisposeSessionInput]
	SortCommander    gocommand.Commander[commands.ToggleSortInput]
	RefreshCommander gocommand.Commander[commands.RefreshSessionInput]

	OverviewQuerier gocommand.Querier[queries.OverviewInput, dashboard.Overview]
	TableQuerier    gocommand.Querier[queries.TableInput, dashboard.TablePayload]
	ExportQuerier   gocommand.Querier[queries.ExportInput, dashboard.Export]
	ChartsQuerier   gocommand.Querier[queries.ChartsInput, []dashboard.RenderedChart]

	Validator dashboard.RequestValidator
}

var _ Executor = (*CommandExecutor)(nil)

// NewCommandExecutor wires every command and query against a dashboard service.
func NewCommandExecutor(service *dashboard.Service, telemetry commands.Telemetry) *CommandExecutor {
	controller := dashboard.NewController(service)
	return &CommandExecutor{
		MountCommander:   commands.NewMountSessionCommand(service, telemetry),
		DisposeCommander: commands.NewDisposeSessionCommand(service, telemetry),
		SortCommander:    commands.NewToggleSortCommand(service, telemetry),
		RefreshCommander: commands.NewRefreshSessionCommand(service, telemetry),
		OverviewQuerier:  queries.NewOverviewQuery(controller),
		TableQuerier:     queries.NewTableQuery(service),
		ExportQuerier:    queries.NewExportQuery(service),
		ChartsQuerier:    queries.NewChartsQuery(service),
		Validator:        serviceValidator{service},
	}
}

type serviceValidator struct {
	service *dashboard.Service
}

func (v serviceValidator) Validate(name string, payload map[string]any) error {
	return v.service.ValidateRequest(name, payload)
}

func (e *CommandExecutor) Mount(ctx context.Context) (string, error) {
	if e.MountCommander == nil {
		return "", errNotConfigured
	}
	var result commands.MountSessionResult
	if err := e.MountCommander.Execute(ctx, commands.MountSessionInput{Result: &result}); err != nil {
		return "", err
	}
	return result.SessionID, nil
}

func (e *CommandExecutor) Dispose(ctx context.Context, sessionID string) error {
	if e.DisposeCommander == nil {
		return errNotConfigured
	}
	return e.DisposeCommander.Execute(ctx, commands.DisposeSessionInput{SessionID: sessionID})
}

func (e *CommandExecutor) ToggleSort(ctx context.Context, input commands.ToggleSortInput) (dashboard.SortConfig, error) {
	if e.SortCommander == nil {
		return dashboard.SortConfig{}, errNotConfigured
	}
	var cfg dashboard.SortConfig
	input.Result = &cfg
	if err := e.SortCommander.Execute(ctx, input); err != nil {
		return dashboard.SortConfig{}, err
	}
	return cfg, nil
}

func (e *CommandExecutor) Refresh(ctx context.Context, sessionID string) error {
	if e.RefreshCommander == nil {
		return errNotConfigured
	}
	return e.RefreshCommander.Execute(ctx, commands.RefreshSessionInput{SessionID: sessionID})
}

func (e *CommandExecutor) Overview(ctx context.Context, input queries.OverviewInput) (dashboard.Overview, error) {
	if e.OverviewQuerier == nil {
		return dashboard.Overview{}, errNotConfigured
	}
	return e.OverviewQuerier.Query(ctx, input)
}

func (e *CommandExecutor) Table(ctx context.Context, input queries.TableInput) (dashboard.TablePayload, error) {
	if e.TableQuerier == nil {
		return dashboard.TablePayload{}, errNotConfigured
	}
	return e.TableQuerier.Query(ctx, input)
}

func (e *CommandExecutor) Export(ctx context.Context, input queries.ExportInput) (dashboard.Export, error) {
	if e.ExportQuerier == nil {
		return dashboard.Export{}, errNotConfigured
	}
	return e.ExportQuerier.Query(ctx, input)
}

func (e *CommandExecutor) Charts(ctx context.Context, input queries.ChartsInput) ([]dashboard.RenderedChart, error) {
	if e.ChartsQuerier == nil {
		return nil, errNotConfigured
	}
	return e.ChartsQuerier.Query(ctx, input)
}

// Validate runs the configured validator; without one every payload passes.
func (e *CommandExecutor) Validate(name string, payload map[string]any) error {
	if e.Validator == nil {
		return nil
	}
	return e.Validator.Validate(name, payload)
}
