package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/swachhta/civic-issues/internal/core/ports"
)

// RescoreDispatcher is the interface the admin handler uses to queue a bulk
// rescore of every user.
type RescoreDispatcher interface {
	EnqueueAll(ctx context.Context) (accepted, dropped int, err error)
}

// AdminHandler exposes score maintenance to administrators.
type AdminHandler struct {
	scores     ports.ScoreService
	dispatcher RescoreDispatcher
}

func NewAdminHandler(scores ports.ScoreService, dispatcher RescoreDispatcher) *AdminHandler {
	return &AdminHandler{scores: scores, dispatcher: dispatcher}
}

// Rescore handles POST /v1/admin/users/:id/rescore.
//
// @Summary      Reconcile one user's score
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  rescoreResponse
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/admin/users/{id}/rescore [post]
func (h *AdminHandler) Rescore(c echo.Context) error {
	userID := c.Param("id")
	snap, err := h.scores.Reconcile(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rescoreResponse{UserID: userID, scoreResponse: toScoreResponse(*snap)})
}

// RescoreAll handles POST /v1/admin/rescore. It queues every user and returns 202.
//
// @Summary      Queue a rescore of every user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      202  {object}  rescoreAcceptedResponse
// @Failure      403  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/admin/rescore [post]
func (h *AdminHandler) RescoreAll(c echo.Context) error {
	accepted, dropped, err := h.dispatcher.EnqueueAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, rescoreAcceptedResponse{
		Message:  "rescore queued",
		Accepted: accepted,
		Dropped:  dropped,
	})
}
