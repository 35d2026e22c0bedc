package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-insights/components/dashboard"
)

// RefreshSessionInput forces a metric update burst for a session.
type RefreshSessionInput struct {
	SessionID string `json:"session_id"`
}

type refreshService interface {
	Refresh(ctx context.Context, sessionID string) error
}

// RefreshSessionCommand runs one simulation burst right away.
type RefreshSessionCommand struct {
	service   refreshService
	telemetry Telemetry
}

// NewRefreshSessionCommand creates the command.
func NewRefreshSessionCommand(service refreshService, telemetry Telemetry) *RefreshSessionCommand {
	return &RefreshSessionCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshSessionInput] = (*RefreshSessionCommand)(nil)

// Execute triggers the burst.
func (c *RefreshSessionCommand) Execute(ctx context.Context, msg RefreshSessionInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	if err := c.service.Refresh(ctx, msg.SessionID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.refresh", map[string]any{"session_id": msg.SessionID})
	return nil
}

// PublishEventInput pushes an arbitrary dashboard event to the refresh hooks.
type PublishEventInput struct {
	Event dashboard.DashboardEvent
}

type eventNotifier interface {
	NotifyDashboardUpdated(ctx context.Context, event dashboard.DashboardEvent) error
}

// PublishEventCommand triggers refresh hooks without touching any session.
type PublishEventCommand struct {
	service   eventNotifier
	telemetry Telemetry
}

// NewPublishEventCommand creates the command.
func NewPublishEventCommand(service eventNotifier, telemetry Telemetry) *PublishEventCommand {
	return &PublishEventCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[PublishEventInput] = (*PublishEventCommand)(nil)

// Execute notifies the dashboard service's refresh hooks.
func (c *PublishEventCommand) Execute(ctx context.Context, msg PublishEventInput) error {
	if c.service == nil {
		return errors.New("publish command requires service")
	}
	if msg.Event.Kind == "" {
		return errors.New("publish command requires event kind")
	}
	if err := c.service.NotifyDashboardUpdated(ctx, msg.Event); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.publish", map[string]any{
		"session_id": msg.Event.SessionID,
		"kind":       msg.Event.Kind,
	})
	return nil
}
