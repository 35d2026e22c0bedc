package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-insights/components/dashboard"
)

// MountSessionInput mounts a new dashboard session. When Result is set it receives the
// new session id.
type MountSessionInput struct {
	Result *MountSessionResult `json:"-"`
}

// MountSessionResult carries the id of a freshly mounted session.
type MountSessionResult struct {
	SessionID string `json:"session_id"`
}

type mountService interface {
	Mount(ctx context.Context) (*dashboard.Session, error)
}

// MountSessionCommand wraps Service.Mount so transports can open sessions without
// linking directly against the service.
type MountSessionCommand struct {
	service   mountService
	telemetry Telemetry
}

// NewMountSessionCommand creates a command instance.
func NewMountSessionCommand(service mountService, telemetry Telemetry) *MountSessionCommand {
	return &MountSessionCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[MountSessionInput] = (*MountSessionCommand)(nil)

// Execute mounts the session.
func (c *MountSessionCommand) Execute(ctx context.Context, msg MountSessionInput) error {
	if c.service == nil {
		return errors.New("mount command requires service")
	}
	session, err := c.service.Mount(ctx)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		msg.Result.SessionID = session.ID()
	}
	c.telemetry.Record(ctx, "dashboard.command.mount", map[string]any{
		"session_id": session.ID(),
	})
	return nil
}

// DisposeSessionInput identifies the session to tear down.
type DisposeSessionInput struct {
	SessionID string `json:"session_id"`
}

type disposeService interface {
	Dispose(ctx context.Context, sessionID string) error
}

// DisposeSessionCommand wraps Service.Dispose.
type DisposeSessionCommand struct {
	service   disposeService
	telemetry Telemetry
}

// NewDisposeSessionCommand builds a command instance.
func NewDisposeSessionCommand(service disposeService, telemetry Telemetry) *DisposeSessionCommand {
	return &DisposeSessionCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DisposeSessionInput] = (*DisposeSessionCommand)(nil)

// Execute disposes the session.
func (c *DisposeSessionCommand) Execute(ctx context.Context, msg DisposeSessionInput) error {
	if c.service == nil {
		return errors.New("dispose command requires service")
	}
	if msg.SessionID == "" {
		return errors.New("dispose command requires session id")
	}
	if err := c.service.Dispose(ctx, msg.SessionID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.dispose", map[string]any{"session_id": msg.SessionID})
	return nil
}
