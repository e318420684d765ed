package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/swachhta/civic-issues/internal/api/middleware"
)

// ctxUserID extracts the caller id injected by the Auth middleware. A missing
// id means the route was mounted without Auth; reject with 401.
func ctxUserID(c echo.Context) (string, error) {
	userID, _ := c.Get(middleware.CtxUserID).(string)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return userID, nil
}

// viewerID returns the caller id on routes behind OptionalAuth, or "" for
// anonymous requests.
func viewerID(c echo.Context) string {
	userID, _ := c.Get(middleware.CtxUserID).(string)
	return userID
}
