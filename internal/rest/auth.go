package rest

import (
	"net/http"

	"recosim/pkg/config"
	"recosim/pkg/logger"
	"recosim/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

type AuthHandler struct {
	validate *validator.Validate
	auth     config.AuthConfig
}

func NewAuthHandler(auth config.AuthConfig) *AuthHandler {
	return &AuthHandler{
		validate: validator.New(),
		auth:     auth,
	}
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates the configured operator account and issues a JWT.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if req.Username != h.auth.OperatorUsername || !utils.CheckPassword(req.Password, h.auth.OperatorPasswordHash) {
		logger.Warn("Failed operator login attempt", "username", req.Username)
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "invalid credentials"})
	}

	token, err := utils.GenerateJWT(req.Username, "ADMIN")
	if err != nil {
		logger.Error("Failed to generate token", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "failed to generate token"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"token":   token,
	})
}
