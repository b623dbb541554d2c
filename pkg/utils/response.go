package utils

import (
	"github.com/gofiber/fiber/v2"

	"taskboard/pkg/apperror"
)

// ========== Response Structures ==========

type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ========== Error Code Constants ==========

const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeInternalError = "INTERNAL_ERROR"
	ErrCodeBadRequest    = "BAD_REQUEST"
)

// ========== Success Responses ==========

func SuccessResponse(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Success: true,
		Data:    data,
	})
}

func CreatedResponse(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Data:    data,
	})
}

func NoContentResponse(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// ========== Error Responses ==========

func ErrorResponse(c *fiber.Ctx, statusCode int, code, message string, details any) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func ValidationErrorResponse(c *fiber.Ctx, details any) error {
	return ErrorResponse(
		c,
		fiber.StatusBadRequest,
		ErrCodeValidation,
		"Validation failed",
		details,
	)
}

func BadRequestResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(
		c,
		fiber.StatusBadRequest,
		ErrCodeBadRequest,
		message,
		nil,
	)
}

func UnauthorizedResponse(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Unauthorized"
	}
	return ErrorResponse(
		c,
		fiber.StatusUnauthorized,
		ErrCodeUnauthorized,
		message,
		nil,
	)
}

func ForbiddenResponse(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Forbidden"
	}
	return ErrorResponse(
		c,
		fiber.StatusForbidden,
		ErrCodeForbidden,
		message,
		nil,
	)
}

func NotFoundResponse(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Resource not found"
	}
	return ErrorResponse(
		c,
		fiber.StatusNotFound,
		ErrCodeNotFound,
		message,
		nil,
	)
}

// ServiceErrorResponse maps an apperror kind to status + error code.
// Internal errors never leak their message.
func ServiceErrorResponse(c *fiber.Ctx, err error) error {
	return ServiceErrorDetailsResponse(c, err, nil)
}

// ServiceErrorDetailsResponse same mapping, with extra details in the envelope
func ServiceErrorDetailsResponse(c *fiber.Ctx, err error, details any) error {
	switch apperror.KindOf(err) {
	case apperror.KindInvalidArgument:
		return ErrorResponse(c, fiber.StatusBadRequest, ErrCodeValidation, err.Error(), details)
	case apperror.KindForbidden:
		return ErrorResponse(c, fiber.StatusForbidden, ErrCodeForbidden, err.Error(), details)
	case apperror.KindNotFound:
		return ErrorResponse(c, fiber.StatusNotFound, ErrCodeNotFound, err.Error(), details)
	case apperror.KindConflict:
		return ErrorResponse(c, fiber.StatusConflict, ErrCodeConflict, err.Error(), details)
	default:
		return ErrorResponse(c, fiber.StatusInternalServerError, ErrCodeInternalError, "Internal server error", details)
	}
}
