package helpers

import (
	"errors"
	"form-builder/apperr"

	"github.com/gofiber/fiber/v2"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func OK(ctx *fiber.Ctx, data interface{}, message string) error {
	return ctx.Status(fiber.StatusOK).JSON(Envelope{Success: true, Data: data, Message: message})
}

func Created(ctx *fiber.Ctx, data interface{}, message string) error {
	return ctx.Status(fiber.StatusCreated).JSON(Envelope{Success: true, Data: data, Message: message})
}

// Fail writes err with the status that matches its kind.
func Fail(ctx *fiber.Ctx, err error) error {
	return ctx.Status(apperr.HTTPStatus(err)).JSON(Envelope{Success: false, Error: err.Error(), Message: err.Error()})
}

func BadRequest(ctx *fiber.Ctx, message string) error {
	return Fail(ctx, apperr.Validation("%s", message))
}

// ErrorHandler renders errors that escape handlers (unknown routes,
// recovered panics) with the same envelope.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return ctx.Status(fe.Code).JSON(Envelope{Success: false, Error: fe.Message, Message: fe.Message})
	}
	return Fail(ctx, err)
}
