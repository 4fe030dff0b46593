package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docsight/internal/extractor"
)

// ModelsHandler serves the per-provider model catalogs.
type ModelsHandler struct {
	registry *extractor.Registry
}

// NewModelsHandler creates a new ModelsHandler.
func NewModelsHandler(registry *extractor.Registry) *ModelsHandler {
	return &ModelsHandler{registry: registry}
}

// List handles GET /models/:provider. It returns the provider's supported
// model identifiers as a bare JSON array, in catalog order.
func (h *ModelsHandler) List(c *gin.Context) {
	provider := c.Param("provider")

	models, err := h.registry.Models(provider)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_PROVIDER", err.Error())
		return
	}

	c.JSON(http.StatusOK, models)
}
