package handler

import (
	"net/http"

	"lagoon/internal/sweeper/service"
	httputil "lagoon/pkg/http"
	"lagoon/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type SweeperHandler struct {
	service service.SweeperService
	log     *logger.Logger
}

func NewSweeperHandler(service service.SweeperService, log *logger.Logger) *SweeperHandler {
	return &SweeperHandler{
		service: service,
		log:     log,
	}
}

func (h *SweeperHandler) Run(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	report, err := h.service.Run(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Run", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, report); err != nil {
		h.log.Error("failed to write success response", "handler", "Run", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SweeperHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/sweep", h.Run)
}
