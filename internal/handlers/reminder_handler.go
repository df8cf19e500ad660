package handlers

import (
	"medreminder/internal/middleware"
	"medreminder/internal/response"
	"medreminder/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ReminderHandler handles HTTP requests for reminders. Every route it serves
// is mounted behind middleware.SessionRequired.
type ReminderHandler struct {
	service *services.ReminderService
	log     logrus.FieldLogger
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(service *services.ReminderService, log logrus.FieldLogger) *ReminderHandler {
	return &ReminderHandler{
		service: service,
		log:     log,
	}
}

// HandleList returns all reminders of the caller.
func (h *ReminderHandler) HandleList(c *fiber.Ctx) error {
	userID, err := h.requester(c)
	if err != nil {
		return err
	}
	reminders, err := h.service.ListForUser(userID)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return response.Data(c, fiber.StatusOK, reminders)
}

// HandleListToday returns the caller's reminders due today.
func (h *ReminderHandler) HandleListToday(c *fiber.Ctx) error {
	userID, err := h.requester(c)
	if err != nil {
		return err
	}
	reminders, err := h.service.ListTodayForUser(userID)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return response.Data(c, fiber.StatusOK, reminders)
}

// HandleCreate creates a reminder for the caller.
func (h *ReminderHandler) HandleCreate(c *fiber.Ctx) error {
	userID, err := h.requester(c)
	if err != nil {
		return err
	}
	var req services.ReminderInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	reminder, err := h.service.Create(userID, req)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return response.Data(c, fiber.StatusCreated, reminder)
}

// HandleUpdate replaces a reminder of the caller.
func (h *ReminderHandler) HandleUpdate(c *fiber.Ctx) error {
	userID, err := h.requester(c)
	if err != nil {
		return err
	}
	id, ok := reminderID(c)
	if !ok {
		return response.Error(c, fiber.StatusBadRequest, "Invalid reminder ID")
	}
	var req services.ReminderInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	updated, err := h.service.Update(id, userID, req)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	if !updated {
		return response.Error(c, fiber.StatusNotFound, "Reminder not found")
	}
	return response.Message(c, fiber.StatusOK, "Reminder updated successfully")
}

// HandleDelete deletes a reminder of the caller.
func (h *ReminderHandler) HandleDelete(c *fiber.Ctx) error {
	userID, err := h.requester(c)
	if err != nil {
		return err
	}
	id, ok := reminderID(c)
	if !ok {
		return response.Error(c, fiber.StatusBadRequest, "Invalid reminder ID")
	}

	deleted, err := h.service.Delete(id, userID)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	if !deleted {
		return response.Error(c, fiber.StatusNotFound, "Reminder not found")
	}
	return response.Message(c, fiber.StatusOK, "Reminder deleted successfully")
}

// HandleMarkTaken marks a reminder of the caller as COMPLETED.
func (h *ReminderHandler) HandleMarkTaken(c *fiber.Ctx) error {
	userID, err := h.requester(c)
	if err != nil {
		return err
	}
	id, ok := reminderID(c)
	if !ok {
		return response.Error(c, fiber.StatusBadRequest, "Invalid reminder ID")
	}

	taken, err := h.service.MarkTaken(id, userID)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	if !taken {
		return response.Error(c, fiber.StatusNotFound, "Reminder not found")
	}
	return response.Message(c, fiber.StatusOK, "Reminder marked as taken")
}

// requester returns the authenticated user's ID. A missing user means the
// route was mounted without the session middleware.
func (h *ReminderHandler) requester(c *fiber.Ctx) (string, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	return user.ID, nil
}

func reminderID(c *fiber.Ctx) (string, bool) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return "", false
	}
	return id.String(), true
}
