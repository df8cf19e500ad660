package repositories

import (
	"medreminder/internal/models"
)

// ReminderRepository defines the interface for reminder data access.
//
// The *Owned methods only touch a row whose user_id matches, and report
// whether a row was matched. They never read before writing.
type ReminderRepository interface {
	Create(reminder *models.Reminder) error
	GetByID(id string) (*models.Reminder, error)
	GetByUserID(userID string) ([]models.Reminder, error)
	GetActiveOn(userID, day string) ([]models.Reminder, error)
	UpdateOwned(reminder *models.Reminder) (bool, error)
	UpdateStatusOwned(id, userID, status string) (bool, error)
	DeleteOwned(id, userID string) (bool, error)
}
