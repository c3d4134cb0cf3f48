package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/meetreminder/meetreminder/internal/model"
	"github.com/meetreminder/meetreminder/internal/service"
	"github.com/meetreminder/meetreminder/internal/template"
)

// ScheduleReminder registers a reminder for a meeting today
func (h *Handler) ScheduleReminder(w http.ResponseWriter, r *http.Request) {
	var req service.ScheduleRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	status, err := h.schedulerSvc.Schedule(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			writeError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		h.log.Error().Err(err).Msg("failed to schedule reminder")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to schedule reminder")
		return
	}

	code := http.StatusCreated
	if status == service.ScheduleAlreadyExists {
		code = http.StatusOK
	}
	writeJSON(w, code, map[string]string{"status": string(status)})
}

// ListReminders returns every reminder row
func (h *Handler) ListReminders(w http.ResponseWriter, r *http.Request) {
	rows, err := h.schedulerSvc.List(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list reminders")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list reminders")
		return
	}
	if rows == nil {
		rows = []model.Reminder{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reminders": rows})
}

// DispatchReminders runs one dispatch cycle immediately
func (h *Handler) DispatchReminders(w http.ResponseWriter, r *http.Request) {
	result, err := h.dispatchSvc.Dispatch(r.Context())
	if err != nil {
		if errors.Is(err, template.ErrTemplateNotFound) {
			writeError(w, http.StatusServiceUnavailable, "template_not_found", "Reminder template draft not found")
			return
		}
		h.log.Error().Err(err).Msg("dispatch cycle failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "Dispatch cycle failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetReminder returns one reminder row by id
func (h *Handler) GetReminder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid reminder id")
		return
	}

	rem, err := h.schedulerSvc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrReminderNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Reminder not found")
			return
		}
		h.log.Error().Err(err).Int64("reminder_id", id).Msg("failed to get reminder")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to get reminder")
		return
	}
	writeJSON(w, http.StatusOK, rem)
}

// ListDispatchRuns returns the most recent dispatch cycles
func (h *Handler) ListDispatchRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 200 {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	runs, err := h.dispatchSvc.RecentRuns(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list dispatch runs")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list dispatch runs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}
