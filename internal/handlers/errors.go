package handlers

import (
	"errors"

	"medreminder/internal/response"
	"medreminder/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// statusFor maps a service error kind to an HTTP status.
func statusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation:
		return fiber.StatusBadRequest
	case services.KindAuth:
		return fiber.StatusUnauthorized
	case services.KindForbidden:
		return fiber.StatusForbidden
	case services.KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// writeServiceError converts err into the error envelope. Internal errors are
// logged; errors not produced by a service get a generic message.
func writeServiceError(c *fiber.Ctx, log logrus.FieldLogger, err error) error {
	status := statusFor(services.KindOf(err))
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		log.WithError(err).WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).Error("Request failed")

		var svcErr *services.Error
		if !errors.As(err, &svcErr) {
			message = "Internal server error"
		}
	}
	return response.Error(c, status, message)
}
