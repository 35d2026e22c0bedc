package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	dashboard "github.com/goliatone/go-insights/components/dashboard"
)

// Query string keys understood by the table endpoints.
const (
	ParamSearch    = "q"
	ParamFrom      = "from"
	ParamTo        = "to"
	ParamSort      = "sort"
	ParamDirection = "direction"
)

var tableParams = []string{ParamSearch, ParamFrom, ParamTo, ParamSort, ParamDirection}

// ParseTableRequest reads the table query parameters through lookup, validates them
// against the table_query schema and converts them into a TableRequest.
func ParseTableRequest(lookup func(string) string, validator dashboard.RequestValidator) (dashboard.TableRequest, error) {
	payload := make(map[string]any, len(tableParams))
	for _, key := range tableParams {
		if value := strings.TrimSpace(lookup(key)); value != "" {
			payload[key] = value
		}
	}
	if validator != nil {
		if err := validator.Validate(dashboard.SchemaTableQuery, payload); err != nil {
			return dashboard.TableRequest{}, err
		}
	}

	var req dashboard.TableRequest
	if search := lookup(ParamSearch); strings.TrimSpace(search) != "" {
		req.Search = search
	}
	rng, err := dashboard.ParseDateRange(lookup(ParamFrom), lookup(ParamTo))
	if err != nil {
		return dashboard.TableRequest{}, fmt.Errorf("%w: %v", dashboard.ErrInvalidRequest, err)
	}
	req.Range = rng
	if key := strings.TrimSpace(lookup(ParamSort)); key != "" {
		direction, err := dashboard.ParseSortDirection(lookup(ParamDirection))
		if err != nil {
			return dashboard.TableRequest{}, err
		}
		req.Sort = dashboard.SortConfig{Key: key, Direction: direction}
	}
	return req, nil
}

// ParseExportFormat accepts "csv" and "pdf", case-insensitively.
func ParseExportFormat(value string) (dashboard.ExportFormat, error) {
	switch format := dashboard.ExportFormat(strings.ToLower(strings.TrimSpace(value))); format {
	case dashboard.FormatCSV, dashboard.FormatPDF:
		return format, nil
	}
	return "", fmt.Errorf("%w: %q", dashboard.ErrUnknownFormat, value)
}

// StatusFor maps dashboard errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, dashboard.ErrSessionNotFound), errors.Is(err, dashboard.ErrUnknownTable):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrInvalidRequest),
		errors.Is(err, dashboard.ErrInvalidDirection),
		errors.Is(err, dashboard.ErrUnknownFormat):
		return http.StatusBadRequest
	case errors.Is(err, dashboard.ErrSimulationStopped):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ContentDisposition builds an attachment header for an export filename.
func ContentDisposition(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}
