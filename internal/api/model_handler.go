package api

import (
	"net/http"

	"flow-chat/backend/internal/interfaces"
)

// ModelHandler serves the model catalog.
type ModelHandler struct {
	service interfaces.ModelService
}

func NewModelHandler(svc interfaces.ModelService) *ModelHandler {
	return &ModelHandler{service: svc}
}

// HandleListModels godoc
// @Summary      List models
// @Description  Returns the chat, image and video models and their defaults.
// @Tags         Models
// @Produce      json
// @Success      200  {object}  service.Catalog
// @Router       /v1/models [get]
func (h *ModelHandler) HandleListModels(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.service.List(r.Context()))
}
