package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/swachhta/civic-issues/internal/core/ports"
)

type AnalyticsHandler struct {
	service ports.AnalyticsService
}

func NewAnalyticsHandler(service ports.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// Summary handles GET /v1/analytics.
//
// @Summary      Community dashboard
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  analyticsResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/analytics [get]
func (h *AnalyticsHandler) Summary(c echo.Context) error {
	summary, err := h.service.Summary(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAnalyticsResponse(summary))
}
