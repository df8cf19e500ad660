package services

import (
	"errors"
	"strings"
	"time"

	"medreminder/internal/models"
	"medreminder/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// ReminderInput carries the caller-supplied fields of a reminder. EndDate,
// Notes and Status are optional; Status is only honoured by Update.
type ReminderInput struct {
	MedicineName string `json:"medicineName" label:"Medicine name" validate:"required"`
	Dosage       string `json:"dosage" label:"Dosage" validate:"required"`
	Frequency    string `json:"frequency" label:"Frequency" validate:"required"`
	StartDate    string `json:"startDate" label:"Start date" validate:"required,datetime=2006-01-02"`
	EndDate      string `json:"endDate" label:"End date" validate:"omitempty,datetime=2006-01-02"`
	TimeOfDay    string `json:"timeOfDay" label:"Time of day" validate:"required,clock"`
	Notes        string `json:"notes"`
	Status       string `json:"status" label:"Status" validate:"omitempty,oneof=ACTIVE COMPLETED CANCELLED"`
}

// ReminderService handles business logic related to reminders.
type ReminderService struct {
	repo      repositories.ReminderRepository
	publisher EventPublisher
	validate  *validator.Validate
	log       logrus.FieldLogger
	now       func() time.Time
}

// ReminderOption customizes a ReminderService.
type ReminderOption func(*ReminderService)

// WithClock overrides the clock used to compute "today".
func WithClock(now func() time.Time) ReminderOption {
	return func(s *ReminderService) { s.now = now }
}

// WithPublisher attaches a broker for reminder lifecycle events.
func WithPublisher(p EventPublisher) ReminderOption {
	return func(s *ReminderService) { s.publisher = p }
}

// NewReminderService creates a new ReminderService.
func NewReminderService(repo repositories.ReminderRepository, log logrus.FieldLogger, opts ...ReminderOption) *ReminderService {
	s := &ReminderService{
		repo:     repo,
		validate: newValidator(),
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates the input and stores a new ACTIVE reminder for userID.
func (s *ReminderService) Create(userID string, in ReminderInput) (*models.Reminder, error) {
	in.Status = ""
	reminder, err := s.buildReminder(in)
	if err != nil {
		return nil, err
	}
	reminder.UserID = userID
	reminder.Status = models.StatusActive

	if err := s.repo.Create(reminder); err != nil {
		return nil, internalError("Error creating reminder", err)
	}

	s.log.WithFields(logrus.Fields{"reminder_id": reminder.ID, "user_id": userID}).Info("Reminder created")
	s.emit(EventReminderCreated, reminder.ID, userID, reminder.Status)
	return reminder, nil
}

// ListForUser returns all reminders of a user ordered by time of day.
func (s *ReminderService) ListForUser(userID string) ([]models.Reminder, error) {
	reminders, err := s.repo.GetByUserID(userID)
	if err != nil {
		return nil, internalError("Error fetching reminders", err)
	}
	return reminders, nil
}

// ListTodayForUser returns the user's ACTIVE reminders whose date range covers
// the current server-local date.
func (s *ReminderService) ListTodayForUser(userID string) ([]models.Reminder, error) {
	today := s.now().Format(models.DateLayout)
	reminders, err := s.repo.GetActiveOn(userID, today)
	if err != nil {
		return nil, internalError("Error fetching today's reminders", err)
	}
	return reminders, nil
}

// Update replaces every mutable field of a reminder owned by requesterID.
// Status defaults to ACTIVE; any status transition is accepted.
func (s *ReminderService) Update(reminderID, requesterID string, in ReminderInput) (bool, error) {
	reminder, err := s.buildReminder(in)
	if err != nil {
		return false, err
	}
	reminder.ID = reminderID
	reminder.UserID = requesterID
	if reminder.Status == "" {
		reminder.Status = models.StatusActive
	}

	updated, err := s.repo.UpdateOwned(reminder)
	if err != nil {
		return false, internalError("Error updating reminder", err)
	}
	if !updated {
		return false, s.explainMiss(reminderID, requesterID, "update")
	}
	s.emit(EventReminderUpdated, reminderID, requesterID, reminder.Status)
	return true, nil
}

// Delete removes a reminder owned by requesterID.
func (s *ReminderService) Delete(reminderID, requesterID string) (bool, error) {
	deleted, err := s.repo.DeleteOwned(reminderID, requesterID)
	if err != nil {
		return false, internalError("Error deleting reminder", err)
	}
	if !deleted {
		return false, s.explainMiss(reminderID, requesterID, "delete")
	}
	s.emit(EventReminderDeleted, reminderID, requesterID, "")
	return true, nil
}

// MarkTaken sets a reminder owned by requesterID to COMPLETED. Calling it
// again on a completed reminder succeeds.
func (s *ReminderService) MarkTaken(reminderID, requesterID string) (bool, error) {
	updated, err := s.repo.UpdateStatusOwned(reminderID, requesterID, models.StatusCompleted)
	if err != nil {
		return false, internalError("Error marking reminder", err)
	}
	if !updated {
		return false, s.explainMiss(reminderID, requesterID, "update")
	}
	s.emit(EventReminderTaken, reminderID, requesterID, models.StatusCompleted)
	return true, nil
}

// explainMiss classifies a conditional write that matched no row. It returns
// nil when the reminder exists and is owned by requesterID.
func (s *ReminderService) explainMiss(reminderID, requesterID, action string) error {
	existing, err := s.repo.GetByID(reminderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFoundError("Reminder not found")
		}
		return internalError("Error loading reminder", err)
	}
	if existing.UserID != requesterID {
		s.log.WithFields(logrus.Fields{
			"reminder_id":  reminderID,
			"requester_id": requesterID,
		}).Warn("Rejected access to another user's reminder")
		return forbiddenError("Unauthorized to " + action + " this reminder")
	}
	return nil
}

// buildReminder trims, validates and normalizes the input.
func (s *ReminderService) buildReminder(in ReminderInput) (*models.Reminder, error) {
	in.MedicineName = strings.TrimSpace(in.MedicineName)
	in.Dosage = strings.TrimSpace(in.Dosage)
	in.Frequency = strings.TrimSpace(in.Frequency)
	in.StartDate = strings.TrimSpace(in.StartDate)
	in.EndDate = strings.TrimSpace(in.EndDate)
	in.TimeOfDay = strings.TrimSpace(in.TimeOfDay)
	in.Notes = strings.TrimSpace(in.Notes)
	in.Status = strings.ToUpper(strings.TrimSpace(in.Status))

	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(validationMessage(err))
	}

	// Layouts were checked by the validator; canonical strings compare chronologically.
	if in.EndDate != "" && in.EndDate < in.StartDate {
		return nil, validationError("End date cannot be before start date")
	}
	clock, err := parseClock(in.TimeOfDay)
	if err != nil {
		return nil, validationError("Time of day must be a time in HH:MM or HH:MM:SS format")
	}

	reminder := &models.Reminder{
		MedicineName: in.MedicineName,
		Dosage:       in.Dosage,
		Frequency:    in.Frequency,
		StartDate:    in.StartDate,
		TimeOfDay:    clock.Format(models.TimeLayout),
		Notes:        in.Notes,
		Status:       in.Status,
	}
	if in.EndDate != "" {
		end := in.EndDate
		reminder.EndDate = &end
	}
	return reminder, nil
}

func (s *ReminderService) emit(eventType, reminderID, userID, status string) {
	publish(s.publisher, s.log, ReminderEvent{
		Type:       eventType,
		ReminderID: reminderID,
		UserID:     userID,
		Status:     status,
		OccurredAt: s.now(),
	})
}
