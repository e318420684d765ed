package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/swachhta/civic-issues/internal/core/ports"
)

// UserHandler serves the caller's score, stats and quota plus the leaderboard.
type UserHandler struct {
	profile     ports.ProfileService
	scores      ports.ScoreService
	limiter     ports.RateLimiter
	leaderboard ports.LeaderboardService
}

func NewUserHandler(
	profile ports.ProfileService,
	scores ports.ScoreService,
	limiter ports.RateLimiter,
	leaderboard ports.LeaderboardService,
) *UserHandler {
	return &UserHandler{
		profile:     profile,
		scores:      scores,
		limiter:     limiter,
		leaderboard: leaderboard,
	}
}

// Stats handles GET /v1/me/stats.
//
// @Summary      Profile dashboard
// @Tags         me
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  statsResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/me/stats [get]
func (h *UserHandler) Stats(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	stats, err := h.profile.Stats(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStatsResponse(stats))
}

// Score handles GET /v1/me/score. Clients call it to refresh the points and
// badges cached in their session.
//
// @Summary      Reconciled score
// @Tags         me
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  scoreResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/me/score [get]
func (h *UserHandler) Score(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	snap, err := h.scores.Reconcile(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toScoreResponse(*snap))
}

// Quota handles GET /v1/me/quota.
//
// @Summary      Issue creation quota
// @Tags         me
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  quotaResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/me/quota [get]
func (h *UserHandler) Quota(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	q, err := h.limiter.Usage(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toQuotaResponse(q))
}

// Leaderboard handles GET /v1/leaderboard.
//
// @Summary      Top contributors
// @Tags         leaderboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  leaderboardResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/leaderboard [get]
func (h *UserHandler) Leaderboard(c echo.Context) error {
	entries, err := h.leaderboard.Leaderboard(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLeaderboardResponse(entries))
}
