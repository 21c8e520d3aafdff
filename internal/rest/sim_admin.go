package rest

import (
	"context"
	"net/http"

	"recosim/business/sim"
	"recosim/domain"
	"recosim/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	SimAdminHandler struct {
		validate *validator.Validate
		cfgRepo  SimConfigRepository
		defaults sim.Config
	}

	SimConfigRepository interface {
		GetConfig(ctx context.Context) (domain.SimConfig, bool, error)
		UpsertConfig(ctx context.Context, cfg domain.SimConfig) error
	}

	ReseedRequest struct {
		RandomSeed int64 `json:"random_seed"`
	}
)

func NewSimAdminHandler(cfgRepo SimConfigRepository, defaults sim.Config) *SimAdminHandler {
	return &SimAdminHandler{
		validate: validator.New(),
		cfgRepo:  cfgRepo,
		defaults: defaults,
	}
}

// GetConfig returns the effective simulation parameters.
func (h *SimAdminHandler) GetConfig(c echo.Context) error {
	cfg, ok, err := h.cfgRepo.GetConfig(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	if !ok {
		cfg = h.defaults.ToDomain()
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cfg))
}

// UpsertConfig replaces the stored simulation parameters.
func (h *SimAdminHandler) UpsertConfig(c echo.Context) error {
	var cfg domain.SimConfig
	if err := c.Bind(&cfg); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&cfg); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	// a round-trip through the working type catches cross-field problems
	if _, err := sim.ConfigFromDomain(cfg); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.cfgRepo.UpsertConfig(c.Request().Context(), cfg); err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	logger.Info("sim_config_updated", "num_products", cfg.NumProducts, "random_seed", cfg.RandomSeed)

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cfg))
}

// Reseed rewinds the stored configuration to a new seed without touching the
// other parameters.
func (h *SimAdminHandler) Reseed(c echo.Context) error {
	var req ReseedRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx := c.Request().Context()

	cfg, ok, err := h.cfgRepo.GetConfig(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	if !ok {
		cfg = h.defaults.ToDomain()
	}

	cfg.RandomSeed = req.RandomSeed
	if err := h.cfgRepo.UpsertConfig(ctx, cfg); err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	logger.Info("sim_reseeded", "random_seed", req.RandomSeed)

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cfg))
}
