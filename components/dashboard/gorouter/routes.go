package gorouter

import (
	"encoding/json"
	"errors"
	"net/http"

	router "github.com/goliatone/go-router"

	dashboard "github.com/goliatone/go-insights/components/dashboard"
	"github.com/goliatone/go-insights/components/dashboard/commands"
	"github.com/goliatone/go-insights/components/dashboard/httpapi"
	"github.com/goliatone/go-insights/components/dashboard/queries"
)

// Config wires go-router with the insights executor and broadcast hook.
type Config[T any] struct {
	Router    router.Router[T]
	API       httpapi.Executor
	Broadcast *dashboard.BroadcastHook
	BasePath  string
	Routes    RouteConfig
}

// RouteConfig customizes the relative paths used for insights endpoints.
type RouteConfig struct {
	Sessions  string
	Session   string
	Overview  string
	Table     string
	Sort      string
	Export    string
	Refresh   string
	Charts    string
	WebSocket string
}

// Register mounts the JSON, export and WebSocket routes on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.API == nil {
		return errors.New("gorouter: api executor is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/insights"
	}

	group := cfg.Router.Group(base)
	registerSessions(group, cfg.API, routes)
	registerTables(group, cfg.API, routes)

	group.Get(routes.Charts, router.WrapHandler(func(ctx router.Context) error {
		charts, err := cfg.API.Charts(ctx.Context(), queries.ChartsInput{
			SessionID: ctx.Query(dashboard.SessionQueryParam),
		})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, charts)
	}))

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}
	return nil
}

func registerSessions[T any](r router.Router[T], api httpapi.Executor, routes RouteConfig) {
	r.Post(routes.Sessions, router.WrapHandler(func(ctx router.Context) error {
		id, err := api.Mount(ctx.Context())
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusCreated, commands.MountSessionResult{SessionID: id})
	}))

	r.Delete(routes.Session, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("id")
		if id == "" {
			return respondStatus(ctx, http.StatusBadRequest, errors.New("session id is required"))
		}
		if err := api.Dispose(ctx.Context(), id); err != nil {
			return respondError(ctx, err)
		}
		return ctx.NoContent(http.StatusNoContent)
	}))

	r.Get(routes.Overview, router.WrapHandler(func(ctx router.Context) error {
		req, err := parseTableRequest(ctx, api)
		if err != nil {
			return respondError(ctx, err)
		}
		overview, err := api.Overview(ctx.Context(), queries.OverviewInput{
			SessionID: ctx.Param("id"),
			Request:   req,
		})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, overview)
	}))

	r.Post(routes.Refresh, router.WrapHandler(func(ctx router.Context) error {
		if err := api.Refresh(ctx.Context(), ctx.Param("id")); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
	}))
}

func registerTables[T any](r router.Router[T], api httpapi.Executor, routes RouteConfig) {
	r.Get(routes.Table, router.WrapHandler(func(ctx router.Context) error {
		req, err := parseTableRequest(ctx, api)
		if err != nil {
			return respondError(ctx, err)
		}
		payload, err := api.Table(ctx.Context(), queries.TableInput{
			SessionID: ctx.Param("id"),
			Table:     ctx.Param("table"),
			Request:   req,
		})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, payload)
	}))

	r.Post(routes.Sort, router.WrapHandler(func(ctx router.Context) error {
		var raw map[string]any
		if err := json.Unmarshal(ctx.Body(), &raw); err != nil {
			return respondStatus(ctx, http.StatusBadRequest, err)
		}
		if err := api.Validate(dashboard.SchemaSortRequest, raw); err != nil {
			return respondError(ctx, err)
		}
		key, _ := raw["key"].(string)
		cfg, err := api.ToggleSort(ctx.Context(), commands.ToggleSortInput{
			SessionID: ctx.Param("id"),
			Table:     ctx.Param("table"),
			Key:       key,
		})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, cfg)
	}))

	r.Get(routes.Export, router.WrapHandler(func(ctx router.Context) error {
		format, err := httpapi.ParseExportFormat(ctx.Param("format"))
		if err != nil {
			return respondError(ctx, err)
		}
		req, err := parseTableRequest(ctx, api)
		if err != nil {
			return respondError(ctx, err)
		}
		out, err := api.Export(ctx.Context(), queries.ExportInput{
			SessionID: ctx.Param("id"),
			Table:     ctx.Param("table"),
			Format:    format,
			Request:   req,
		})
		if err != nil {
			return respondError(ctx, err)
		}
		ctx.SetHeader("Content-Type", out.ContentType)
		ctx.SetHeader("Content-Disposition", httpapi.ContentDisposition(out.Filename))
		return ctx.Send(out.Body)
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.SubscribeSession(ws.Query(dashboard.SessionQueryParam))
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func parseTableRequest(ctx router.Context, validator dashboard.RequestValidator) (dashboard.TableRequest, error) {
	return httpapi.ParseTableRequest(func(key string) string {
		return ctx.Query(key)
	}, validator)
}

func respondError(ctx router.Context, err error) error {
	return respondStatus(ctx, httpapi.StatusFor(err), err)
}

func respondStatus(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.Sessions == "" {
		routes.Sessions = "/sessions"
	}
	if routes.Session == "" {
		routes.Session = "/sessions/:id"
	}
	if routes.Overview == "" {
		routes.Overview = "/sessions/:id/overview"
	}
	if routes.Table == "" {
		routes.Table = "/sessions/:id/tables/:table"
	}
	if routes.Sort == "" {
		routes.Sort = "/sessions/:id/tables/:table/sort"
	}
	if routes.Export == "" {
		routes.Export = "/sessions/:id/tables/:table/export/:format"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/sessions/:id/refresh"
	}
	if routes.Charts == "" {
		routes.Charts = "/charts"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	return routes
}
