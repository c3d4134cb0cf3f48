package router

import (
	"net/http"

	"github.com/meetreminder/meetreminder/internal/config"
	"github.com/meetreminder/meetreminder/internal/handler"
	"github.com/meetreminder/meetreminder/internal/middleware"
)

// New creates and configures the HTTP router
func New(h *handler.Handler, mw *middleware.Middleware, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoints (no auth required)
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ready", h.Ready)

	mux.HandleFunc("GET /api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"meetreminder API v1","version":"0.1.0"}`))
	})

	writeRateLimit := mw.RateLimit(middleware.RateLimitConfig{
		Limit:  cfg.API.RateLimit.Limit,
		Window: cfg.API.RateLimit.Window,
		KeyFn:  middleware.SubjectOrIPKey,
	})
	protected := func(fn http.HandlerFunc) http.Handler {
		return mw.Auth(fn)
	}
	limited := func(fn http.HandlerFunc) http.Handler {
		return mw.Auth(writeRateLimit(fn))
	}

	// Reminders
	mux.Handle("POST /api/v1/reminders", limited(h.ScheduleReminder))
	mux.Handle("GET /api/v1/reminders", protected(h.ListReminders))
	mux.Handle("GET /api/v1/reminders/{id}", protected(h.GetReminder))
	mux.Handle("POST /api/v1/reminders/dispatch", limited(h.DispatchReminders))
	mux.Handle("GET /api/v1/reminders/dispatch/runs", protected(h.ListDispatchRuns))

	// Direct mail
	mux.Handle("POST /api/v1/reports", limited(h.SendReport))
	mux.Handle("GET /api/v1/inbox/latest", protected(h.LatestInboxMessage))

	// Apply middleware stack
	var handler http.Handler = mux

	// Security headers
	handler = mw.SecurityHeaders(handler)

	// Request logging
	handler = mw.Logger(handler)

	// Timing
	handler = mw.Timing(handler)

	// Request ID
	handler = mw.RequestID(handler)

	// Panic recovery (outermost)
	handler = mw.Recover(handler)

	return handler
}
