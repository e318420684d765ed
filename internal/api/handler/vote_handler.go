package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/swachhta/civic-issues/internal/core/ports"
)

// VoteHandler handles upvotes on issues.
type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{service: service}
}

// Cast handles POST /v1/issues/:id/vote.
//
// @Summary      Upvote an issue
// @Tags         votes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Issue id"
// @Success      200  {object}  voteResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/issues/{id}/vote [post]
func (h *VoteHandler) Cast(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	res, err := h.service.Cast(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toVoteResponse(res))
}

// Retract handles DELETE /v1/issues/:id/vote.
//
// @Summary      Withdraw an upvote
// @Tags         votes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Issue id"
// @Success      200  {object}  voteResponse
// @Failure      400  {object}  errorResponse
// @Router       /v1/issues/{id}/vote [delete]
func (h *VoteHandler) Retract(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	res, err := h.service.Retract(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toVoteResponse(res))
}
