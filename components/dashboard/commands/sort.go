package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-insights/components/dashboard"
)

// ToggleSortInput is a header click on a table column.
type ToggleSortInput struct {
	SessionID string                `json:"session_id"`
	Table     string                `json:"table"`
	Key       string                `json:"key"`
	Result    *dashboard.SortConfig `json:"-"`
}

type sortService interface {
	ToggleSort(ctx context.Context, sessionID, table, key string) (dashboard.SortConfig, error)
}

// ToggleSortCommand flips the sort state of a session table.
type ToggleSortCommand struct {
	service   sortService
	telemetry Telemetry
}

// NewToggleSortCommand builds the command.
func NewToggleSortCommand(service sortService, telemetry Telemetry) *ToggleSortCommand {
	return &ToggleSortCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ToggleSortInput] = (*ToggleSortCommand)(nil)

// Execute toggles the sort and stores the new config in msg.Result when provided.
func (c *ToggleSortCommand) Execute(ctx context.Context, msg ToggleSortInput) error {
	if c.service == nil {
		return errors.New("sort command requires service")
	}
	if msg.SessionID == "" || msg.Table == "" {
		return errors.New("sort command requires session id and table")
	}
	cfg, err := c.service.ToggleSort(ctx, msg.SessionID, msg.Table, msg.Key)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = cfg
	}
	c.telemetry.Record(ctx, "dashboard.command.sort", map[string]any{
		"session_id": msg.SessionID,
		"table":      msg.Table,
		"key":        cfg.Key,
		"direction":  string(cfg.Direction),
	})
	return nil
}
