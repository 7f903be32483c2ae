package models

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Envelope is the uniform body of every API response.
type Envelope[T any] struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Data    T      `json:"data"`
}

// OK builds a successful envelope around data.
func OK[T any](message string, data T) Envelope[T] {
	return Envelope[T]{Message: message, Data: data}
}

// Failure builds an error envelope from err. Internal details are never exposed.
func Failure(err error) Envelope[any] {
	env := Envelope[any]{Error: true, Code: CodeInternal, Message: "Internal server error"}
	var appErr *AppError
	if errors.As(err, &appErr) {
		env.Code = appErr.Code
		env.Message = appErr.Message
	}
	return env
}

// RespondOK writes a success envelope with the given status.
func RespondOK[T any](c *fiber.Ctx, status int, message string, data T) error {
	return c.Status(status).JSON(OK(message, data))
}

// RespondWithError writes an error envelope with the given status.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(Failure(err))
}

// RespondError writes an error envelope with the status derived from err.
func RespondError(c *fiber.Ctx, err error) error {
	return RespondWithError(c, StatusFor(err), err)
}
