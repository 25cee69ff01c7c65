package serverutils

import (
	"errors"

	"ai-docchat-be/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type Response[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Message: message,
		Data:    data,
	}
}

var validate = validator.New()

func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		return &apperror.ValidationError{Reason: err.Error()}
	}
	return nil
}

// ErrorHandlerMiddleware maps typed service errors to HTTP statuses so
// controllers can simply return errors.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var validationErr *apperror.ValidationError
		var authErr *apperror.AuthError
		var notFoundErr *apperror.NotFoundError
		var upstreamErr *apperror.UpstreamError

		switch {
		case errors.As(err, &validationErr):
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": validationErr.Error()})
		case errors.As(err, &authErr):
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": authErr.Error()})
		case errors.As(err, &notFoundErr):
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": notFoundErr.Error()})
		case errors.As(err, &upstreamErr):
			return ctx.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": upstreamErr.Error()})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
}
