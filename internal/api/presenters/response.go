package presenters

import (
	"github.com/gofiber/fiber/v2"
)

type Response struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`

	Retryable       bool `json:"retryable,omitempty"`
	UpgradeRequired bool `json:"upgrade_required,omitempty"`
}

func SuccessResponse(c *fiber.Ctx, data any, statusCode int, message string) error {
	return c.Status(statusCode).JSON(Response{
		Status:  true,
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *fiber.Ctx, statusCode int, message string, err error) error {
	res := Response{
		Status:  false,
		Message: message,
	}
	if err != nil {
		res.Error = err.Error()
	}
	return c.Status(statusCode).JSON(res)
}

// RetryableErrorResponse tells the client it may resubmit the same request,
// for example the same meal photo without capturing it again.
func RetryableErrorResponse(c *fiber.Ctx, statusCode int, message string, err error) error {
	return c.Status(statusCode).JSON(Response{
		Status:    false,
		Message:   message,
		Error:     err.Error(),
		Retryable: true,
	})
}

func UpgradeRequiredResponse(c *fiber.Ctx, message string, err error) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(Response{
		Status:          false,
		Message:         message,
		Error:           err.Error(),
		UpgradeRequired: true,
	})
}
