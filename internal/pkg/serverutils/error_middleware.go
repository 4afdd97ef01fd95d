package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors escaping the handlers into the
// standard envelope: validation failures become 400, everything else 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := fiber.StatusInternalServerError

		var verr *ValidationError
		if errors.As(err, &verr) {
			status = fiber.StatusBadRequest
		}
		var ferr *fiber.Error
		if errors.As(err, &ferr) {
			status = ferr.Code
		}

		return ctx.Status(status).JSON(Response[any]{
			Success: false,
			Message: err.Error(),
		})
	}
}
