package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/mercantil-app/mercantilgo/internal/services/tiny"
)

// triggerSync runs one marketplace sync on demand (admin). Query params
// startDate/endDate use DD/MM/YYYY and default to today; status narrows
// the remote search to one marketplace status.
func (r *Router) triggerSync(w http.ResponseWriter, req *http.Request) {
	if r.sync == nil {
		respondError(w, http.StatusServiceUnavailable, "Marketplace sync is not configured")
		return
	}

	today := tiny.TodayStoreDate()
	startDate := req.URL.Query().Get("startDate")
	if startDate == "" {
		startDate = today
	}
	endDate := req.URL.Query().Get("endDate")
	if endDate == "" {
		endDate = today
	}
	for _, raw := range []string{startDate, endDate} {
		if _, err := time.Parse("02/01/2006", raw); err != nil {
			respondError(w, http.StatusBadRequest, "Dates must use DD/MM/YYYY")
			return
		}
	}
	statusFilter := req.URL.Query().Get("status")

	report, err := r.sync.RunSync(req.Context(), startDate, endDate, statusFilter)
	if err != nil {
		switch {
		case errors.Is(err, tiny.ErrSyncInProgress):
			respondError(w, http.StatusConflict, "A sync run is already in progress")
		case errors.Is(err, tiny.ErrRemoteUnavailable):
			respondError(w, http.StatusBadGateway, "Marketplace API is unavailable")
		default:
			respondError(w, http.StatusInternalServerError, "Sync failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, report)
}
