package rest

import (
	"context"
	"net/http"
	"time"

	"recosim/domain"
	"recosim/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	SimulationHandler struct {
		validate *validator.Validate
		service  SimulationService
	}

	SimulationService interface {
		Generate(ctx context.Context, numUsers int, overrides map[string]any) (domain.SimulationRun, string, error)
		Replay(ctx context.Context, token string) (domain.SimulationRun, error)
		GetRun(ctx context.Context, id string) (domain.SimulationRun, error)
		Events(ctx context.Context, id string, offset, limit int) ([]domain.Event, error)
	}

	SimulateRequest struct {
		NumUsers  int            `json:"num_users" validate:"required,gt=0"`
		Overrides map[string]any `json:"overrides"`
	}

	ReplayRequest struct {
		Token string `json:"token" validate:"required"`
	}

	EventsQuery struct {
		Offset int `query:"offset"`
		Limit  int `query:"limit"`
	}

	SimulateResponse struct {
		Run         domain.SimulationRun `json:"run"`
		ReplayToken string               `json:"replay_token"`
	}
)

func NewSimulationHandler(service SimulationService) *SimulationHandler {
	return &SimulationHandler{
		validate: validator.New(),
		service:  service,
	}
}

// Create generates an offline interaction log.
func (h *SimulationHandler) Create(c echo.Context) error {
	start := time.Now()

	var req SimulateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	run, token, err := h.service.Generate(c.Request().Context(), req.NumUsers, req.Overrides)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	metrics.SimulateLatency.Observe(time.Since(start).Seconds())

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(SimulateResponse{
		Run:         run,
		ReplayToken: token,
	}))
}

// Replay reproduces a run from its replay token.
func (h *SimulationHandler) Replay(c echo.Context) error {
	var req ReplayRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	run, err := h.service.Replay(c.Request().Context(), req.Token)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(run))
}

// Get returns a run summary.
func (h *SimulationHandler) Get(c echo.Context) error {
	run, err := h.service.GetRun(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(run))
}

// GetEvents pages through a run's stored event log.
func (h *SimulationHandler) GetEvents(c echo.Context) error {
	var q EventsQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if q.Limit <= 0 {
		q.Limit = 100
	}

	events, err := h.service.Events(c.Request().Context(), c.Param("id"), q.Offset, q.Limit)
	if err != nil {
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(events))
}
