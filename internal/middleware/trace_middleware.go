package middleware

import (
	"recosim/business/sim"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// TraceMiddleware assigns every request a trace id that the simulation and
// evaluation services log alongside their output.
func TraceMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tid := uuid.NewString()

			req := c.Request()
			ctx := sim.WithTraceID(req.Context(), tid)
			c.SetRequest(req.WithContext(ctx))

			c.Response().Header().Set("X-Trace-ID", tid)

			return next(c)
		}
	}
}
