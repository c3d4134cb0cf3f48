package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/meetreminder/meetreminder/internal/config"
	"github.com/meetreminder/meetreminder/internal/database"
	"github.com/meetreminder/meetreminder/internal/logger"
	"github.com/meetreminder/meetreminder/internal/service"
)

// Handler holds all HTTP handlers
type Handler struct {
	db           database.SQL
	rdb          *database.Redis
	log          *logger.Logger
	cfg          *config.Config
	schedulerSvc *service.SchedulerService
	dispatchSvc  *service.DispatchService
	mailSvc      *service.MailService
}

// New creates a new Handler instance. rdb may be nil when Redis is disabled.
func New(db database.SQL, rdb *database.Redis, log *logger.Logger, cfg *config.Config, schedulerSvc *service.SchedulerService, dispatchSvc *service.DispatchService, mailSvc *service.MailService) *Handler {
	return &Handler{
		db:           db,
		rdb:          rdb,
		log:          log.WithComponent("handler"),
		cfg:          cfg,
		schedulerSvc: schedulerSvc,
		dispatchSvc:  dispatchSvc,
		mailSvc:      mailSvc,
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	})
}

func readJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.New("request body is empty")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}
