package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/corpuslabs/corpusd/internal/core/domain"
)

// apiError is the JSON error body of every non-2xx response.
type apiError struct {
	Error string `json:"error"`
}

// statusForError maps domain error kinds onto HTTP status codes.
// Unclassified errors become 500 without leaking their message.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrTextExtraction):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrLLMRateLimit):
		return fiber.StatusTooManyRequests
	case errors.Is(err, domain.ErrLLMAuth),
		errors.Is(err, domain.ErrLLMConnection),
		errors.Is(err, domain.ErrLLMProvider),
		errors.Is(err, domain.ErrEmbedding),
		errors.Is(err, domain.ErrUnsupportedProvider):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// errorHandler renders every handler error as a JSON body. fiber.Error
// values keep their code; everything else goes through the domain map.
func errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(apiError{Error: fiberErr.Message})
	}

	status := statusForError(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "internal server error"
	}
	return c.Status(status).JSON(apiError{Error: msg})
}
