package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/medidata/dataset-system/internal/core/domain"
	"github.com/medidata/dataset-system/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	activity    ports.ActivityLogger
}

func NewAuthHandler(authService ports.AuthService, activity ports.ActivityLogger) *AuthHandler {
	return &AuthHandler{authService: authService, activity: activity}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	user, err := h.authService.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if err == domain.ErrUserExists {
			// 400, not 409: registration treats a duplicate as invalid input.
			return echo.NewHTTPError(http.StatusBadRequest, "user already exists")
		}
		return err
	}

	h.activity.LogUserActivity(c.Request().Context(), user.ID, domain.ActionRegister, "User registered", c.RealIP())

	return c.JSON(http.StatusCreated, registerResponse{
		Message: "user registered successfully",
		User:    userView{ID: user.ID, Email: user.Email, Role: user.Role},
	})
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		// Missing user and bad password both surface as 401 so the response
		// does not reveal which accounts exist.
		if err == domain.ErrUserNotFound || err == domain.ErrInvalidCredentials {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		}
		return err
	}

	h.activity.LogUserActivity(c.Request().Context(), user.ID, domain.ActionLogin, "User logged in", c.RealIP())

	return c.JSON(http.StatusOK, loginResponse{
		Token: token,
		User:  userView{ID: user.ID, Email: user.Email, Role: user.Role},
	})
}

// Validate verifies the bearer token presented in the Authorization header.
//
// @Summary      Validate a bearer token
// @Tags         auth
// @Produce      json
// @Success      200  {object}  validateResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/validate [get]
func (h *AuthHandler) Validate(c echo.Context) error {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "no token provided")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}

	claims, err := h.authService.Validate(parts[1])
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	return c.JSON(http.StatusOK, validateResponse{Valid: true, User: claims})
}
