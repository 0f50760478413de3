package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pratik-mahalle/costpilot/internal/api/dto"
	"github.com/pratik-mahalle/costpilot/internal/domain/usage"
	"github.com/pratik-mahalle/costpilot/internal/pkg/errors"
	"github.com/pratik-mahalle/costpilot/internal/pkg/utils"
)

// decodeJSON decodes the request body into dst
func decodeJSON(r *http.Request, dst interface{}) *errors.AppError {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.BadRequest("Invalid JSON body")
	}
	return nil
}

// writeServiceError maps any error onto the response, preserving AppError
// codes and status
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	if appErr, ok := err.(*errors.AppError); ok {
		utils.WriteError(w, appErr)
		return
	}
	utils.WriteError(w, errors.Internal(fallback, err))
}

// parseTimestamp accepts RFC3339 or a bare date
func parseTimestamp(field, value string) (time.Time, *errors.AppError) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Time{}, errors.InvalidParameter(field, "RFC3339 timestamp or YYYY-MM-DD", value)
}

// parseWindow extracts and validates a [start, end) request window
func parseWindow(startStr, endStr string) (time.Time, time.Time, *errors.AppError) {
	start, appErr := parseTimestamp("start", startStr)
	if appErr != nil {
		return time.Time{}, time.Time{}, appErr
	}
	end, appErr := parseTimestamp("end", endStr)
	if appErr != nil {
		return time.Time{}, time.Time{}, appErr
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, errors.InvalidParameter("end", "after start", endStr)
	}
	return start, end, nil
}

func toScope(s dto.ScopeDTO) usage.Scope {
	return usage.Scope{
		TeamID:      s.TeamID,
		ServiceName: s.ServiceName,
		Region:      s.Region,
		Provider:    s.Provider,
	}
}
