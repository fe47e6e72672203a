package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxClaims extracts the auth claims injected by the Auth middleware and
// performs a fast-fail check before any service call: a non-empty role proves
// the middleware ran. Calling this on a route that skips Auth is a wiring
// bug, not a client error.
func ctxClaims(c echo.Context) (userID, role string, err error) {
	role, _ = c.Get("role").(string)
	if role == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	userID, _ = c.Get("user_id").(string)
	return userID, role, nil
}
