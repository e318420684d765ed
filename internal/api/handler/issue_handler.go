package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/swachhta/civic-issues/internal/core/ports"
)

// IssueHandler handles HTTP requests for the issue lifecycle.
type IssueHandler struct {
	service ports.IssueService
}

func NewIssueHandler(service ports.IssueService) *IssueHandler {
	return &IssueHandler{service: service}
}

// List handles GET /v1/issues.
//
// @Summary      List issues
// @Description  Paged list of issues with vote tallies. Authenticated callers also get user_has_voted.
// @Tags         issues
// @Produce      json
// @Param        category  query     string  false  "Category filter (or all)"
// @Param        status    query     string  false  "Status filter (or all)"
// @Param        search    query     string  false  "Case-insensitive match on title or description"
// @Param        sort      query     string  false  "newest (default) or oldest"
// @Param        page      query     int     false  "Page number, 1-based"
// @Param        limit     query     int     false  "Page size, max 100"
// @Success      200       {object}  listIssuesResponse
// @Failure      422       {object}  errorResponse
// @Failure      500       {object}  errorResponse
// @Router       /v1/issues [get]
func (h *IssueHandler) List(c echo.Context) error {
	var q listIssuesQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	if err := c.Validate(&q); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	page, err := h.service.List(c.Request().Context(), toListInput(q, viewerID(c)))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListResponse(page))
}

// Get handles GET /v1/issues/:id.
//
// @Summary      Get an issue
// @Tags         issues
// @Produce      json
// @Param        id   path      string  true  "Issue id"
// @Success      200  {object}  issueViewResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/issues/{id} [get]
func (h *IssueHandler) Get(c echo.Context) error {
	view, err := h.service.Get(c.Request().Context(), c.Param("id"), viewerID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toIssueViewResponse(*view))
}

// Create handles POST /v1/issues.
//
// @Summary      Report a new issue
// @Tags         issues
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createIssueRequest  true  "Issue details"
// @Success      201   {object}  issueResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/issues [post]
func (h *IssueHandler) Create(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req createIssueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	issue, err := h.service.Create(c.Request().Context(), toCreateInput(req, userID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toIssueResponse(issue))
}

// Update handles PATCH /v1/issues/:id.
//
// @Summary      Edit a pending issue
// @Tags         issues
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Issue id"
// @Param        body  body      updateIssueRequest  true  "Fields to change"
// @Success      200   {object}  issueResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/issues/{id} [patch]
func (h *IssueHandler) Update(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req updateIssueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	issue, err := h.service.Update(c.Request().Context(), toUpdateInput(req, c.Param("id"), userID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toIssueResponse(issue))
}

// Delete handles DELETE /v1/issues/:id.
//
// @Summary      Delete a pending issue
// @Tags         issues
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Issue id"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/issues/{id} [delete]
func (h *IssueHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("id"), userID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "issue deleted"})
}

// Mine handles GET /v1/me/issues.
//
// @Summary      List the caller's issues
// @Tags         me
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   issueViewResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/me/issues [get]
func (h *IssueHandler) Mine(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	views, err := h.service.ListMine(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toIssueViewsResponse(views))
}

// Map handles GET /v1/map/issues.
//
// @Summary      Issues with coordinates
// @Tags         issues
// @Produce      json
// @Success      200  {array}   mapIssueResponse
// @Router       /v1/map/issues [get]
func (h *IssueHandler) Map(c echo.Context) error {
	issues, err := h.service.MapIssues(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMapResponse(issues))
}
