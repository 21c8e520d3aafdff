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
	EvaluationHandler struct {
		validate *validator.Validate
		service  EvaluationService
	}

	EvaluationService interface {
		Evaluate(ctx context.Context, policyName string, numTrainUsers, numTestUsers int, overrides map[string]any) (domain.EvaluationResult, error)
	}

	EvaluateRequest struct {
		Policy        string         `json:"policy" validate:"required,oneof=uniform popularity"`
		NumTrainUsers int            `json:"num_train_users" validate:"gte=0"`
		NumTestUsers  int            `json:"num_test_users" validate:"required,gt=0"`
		Overrides     map[string]any `json:"overrides"`
	}
)

func NewEvaluationHandler(service EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{
		validate: validator.New(),
		service:  service,
	}
}

// Create runs the evaluation harness for a built-in policy.
func (h *EvaluationHandler) Create(c echo.Context) error {
	start := time.Now()

	var req EvaluateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	result, err := h.service.Evaluate(c.Request().Context(), req.Policy, req.NumTrainUsers, req.NumTestUsers, req.Overrides)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	metrics.EvaluateLatency.Observe(time.Since(start).Seconds())
	metrics.EvaluateRequests.Inc()

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}
