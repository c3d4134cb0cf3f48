package handler

import (
	"errors"
	"net/http"

	"github.com/meetreminder/meetreminder/internal/service"
)

// SendReportRequest is the body of a direct report send
type SendReportRequest struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// SendReport mails an HTML report to the configured recipient
func (h *Handler) SendReport(w http.ResponseWriter, r *http.Request) {
	var req SendReportRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	err := h.mailSvc.SendReport(r.Context(), req.Subject, req.HTML)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, service.ErrReportRecipientMissing):
		writeError(w, http.StatusServiceUnavailable, "report_not_configured", "Report recipient is not configured")
	default:
		h.log.Error().Err(err).Msg("failed to send report")
		writeError(w, http.StatusBadGateway, "send_failed", "Failed to send report")
	}
}

// LatestInboxMessage returns the newest message matching the alert query
func (h *Handler) LatestInboxMessage(w http.ResponseWriter, r *http.Request) {
	msg, err := h.mailSvc.LatestAlert(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrInboxUnavailable) {
			writeError(w, http.StatusNotImplemented, "inbox_unavailable", "Inbox search requires the gmail provider")
			return
		}
		h.log.Error().Err(err).Msg("inbox lookup failed")
		writeError(w, http.StatusBadGateway, "inbox_error", "Inbox lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, msg)
}
