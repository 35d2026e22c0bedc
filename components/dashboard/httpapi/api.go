package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	dashboard "github.com/goliatone/go-insights/components/dashboard"
	"github.com/goliatone/go-insights/components/dashboard/commands"
	"github.com/goliatone/go-insights/components/dashboard/queries"
)

// Handlers exposes net/http endpoints backed by the shared executor. Path parameters
// are resolved by the caller's mux and passed in explicitly.
type Handlers struct {
	API       Executor
	Broadcast *dashboard.BroadcastHook
}

type sortPayload struct {
	Key string `json:"key"`
}

func (h *Handlers) HandleMountSession(w http.ResponseWriter, r *http.Request) {
	id, err := h.API.Mount(r.Context())
	if err != nil {
		respondError(w, StatusFor(err), err)
		return
	}
	respondJSON(w, http.StatusCreated, commands.MountSessionResult{SessionID: id})
}

func (h *Handlers) HandleDisposeSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := h.API.Dispose(r.Context(), sessionID); err != nil {
		respondError(w, StatusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleOverview(w http.ResponseWriter, r *http.Request, sessionID string) {
	req, err := ParseTableRequest(r.URL.Query().Get, h.API)
	if err != nil {
		respondError(w, StatusFor(err), err)
		return
	}
	overview, err := h.API.Overview(r.Context(), queries.OverviewInput{SessionID: sessionID, Request: req})
	if err != nil {
		respondError(w, StatusFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, overview)
}

func (h *Handlers) HandleTable(w http.ResponseWriter, r *http.Request, sessionID, table string) {
	req, err := ParseTableRequest(r.URL.Query().Get, h.API)
	if err != nil {
		respondError(w, StatusFor(err), err)
		return
	}
	payload, err := h.API.Table(r.Context(), queries.TableInput{SessionID: sessionID, Table: table, Request: req})
	if err != nil {
		respondError(w, StatusFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, payload)
}

func (h *Handlers) HandleToggleSort(w http.ResponseWriter, r *http.Request, sessionID, table string) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.API.Validate(dashboard.SchemaSortRequest, raw); err != nil {
		respondError(w, StatusFor(err), err)
		return
	}
	key, _ := raw["key"].(string)
	cfg, err := h.API.ToggleSort(r.Context(), commands.ToggleSortInput{SessionID: sessionID, Table: table, Key: key})
	if err != nil {
		respondError(w, StatusFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request, sessionID, table, format string) {
	exportFormat, err := ParseExportFormat(format)
	if err != nil {
		respondError(w, StatusFor(err), err)
		return
	}
	req, err := ParseTableRequest(r.URL.Query().Get, h.API)
	if err != nil {
		respondError(w, StatusFor(err), err)
		return
	}
	out, err := h.API.Export(r.Context(), queries.ExportInput{
		SessionID: sessionID,
		Table:     table,
		Format:    exportFormat,
		Request:   req,
	})
	if err != nil {
		respondError(w, StatusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", ContentDisposition(out.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(out.Body)
}

func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := h.API.Refresh(r.Context(), sessionID); err != nil {
		respondError(w, StatusFor(err), err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (h *Handlers) HandleCharts(w http.ResponseWriter, r *http.Request) {
	charts, err := h.API.Charts(r.Context(), queries.ChartsInput{
		SessionID: r.URL.Query().Get(dashboard.SessionQueryParam),
	})
	if err != nil {
		respondError(w, StatusFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, charts)
}

func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.Broadcast == nil {
		respondError(w, http.StatusServiceUnavailable, errors.New("httpapi: broadcast disabled"))
		return
	}
	h.Broadcast.ServeWebSocket(w, r)
}

func (h *Handlers) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if h.Broadcast == nil {
		respondError(w, http.StatusServiceUnavailable, errors.New("httpapi: broadcast disabled"))
		return
	}
	h.Broadcast.ServeSSE(w, r)
}

// Routes mounts every handler on a ServeMux under base (e.g. "/insights").
func (h *Handlers) Routes(mux *http.ServeMux, base string) {
	mux.HandleFunc("POST "+base+"/sessions", h.HandleMountSession)
	mux.HandleFunc("DELETE "+base+"/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleDisposeSession(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("GET "+base+"/sessions/{id}/overview", func(w http.ResponseWriter, r *http.Request) {
		h.HandleOverview(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("GET "+base+"/sessions/{id}/tables/{table}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleTable(w, r, r.PathValue("id"), r.PathValue("table"))
	})
	mux.HandleFunc("POST "+base+"/sessions/{id}/tables/{table}/sort", func(w http.ResponseWriter, r *http.Request) {
		h.HandleToggleSort(w, r, r.PathValue("id"), r.PathValue("table"))
	})
	mux.HandleFunc("GET "+base+"/sessions/{id}/tables/{table}/export/{format}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleExport(w, r, r.PathValue("id"), r.PathValue("table"), r.PathValue("format"))
	})
	mux.HandleFunc("POST "+base+"/sessions/{id}/refresh", func(w http.ResponseWriter, r *http.Request) {
		h.HandleRefresh(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("GET "+base+"/charts", h.HandleCharts)
	mux.HandleFunc("GET "+base+"/ws", h.HandleWebSocket)
	mux.HandleFunc("GET "+base+"/events", h.HandleEvents)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
