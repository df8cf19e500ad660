package repositories

import (
	"errors"
	"fmt"
	"time"

	"medreminder/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMReminderRepository is a GORM implementation of ReminderRepository.
type GORMReminderRepository struct {
	db *gorm.DB
}

// NewGORMReminderRepository creates a new instance of GORMReminderRepository.
func NewGORMReminderRepository(db *gorm.DB) *GORMReminderRepository {
	return &GORMReminderRepository{
		db: db,
	}
}

// Create creates a new reminder in the database.
func (r *GORMReminderRepository) Create(reminder *models.Reminder) error {
	if reminder.ID == "" {
		reminder.ID = uuid.New().String()
	}
	if reminder.Status == "" {
		reminder.Status = models.StatusActive
	}
	if reminder.CreatedAt.IsZero() {
		reminder.CreatedAt = time.Now()
	}
	if err := r.db.Create(reminder).Error; err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}
	return nil
}

// GetByID retrieves a single reminder by its ID from the database.
func (r *GORMReminderRepository) GetByID(id string) (*models.Reminder, error) {
	var reminder models.Reminder
	if err := r.db.First(&reminder, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("reminder with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get reminder by ID %s: %w", id, err)
	}
	return &reminder, nil
}

// GetByUserID returns every reminder of a user, earliest time of day first.
func (r *GORMReminderRepository) GetByUserID(userID string) ([]models.Reminder, error) {
	reminders := make([]models.Reminder, 0)
	err := r.db.Where("user_id = ?", userID).
		Order("time_of_day ASC, created_at ASC").
		Find(&reminders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get reminders for user %s: %w", userID, err)
	}
	return reminders, nil
}

// GetActiveOn returns the user's ACTIVE reminders whose date range covers day.
func (r *GORMReminderRepository) GetActiveOn(userID, day string) ([]models.Reminder, error) {
	reminders := make([]models.Reminder, 0)
	err := r.db.Where("user_id = ? AND status = ?", userID, models.StatusActive).
		Where("start_date <= ?", day).
		Where("(end_date IS NULL OR end_date >= ?)", day).
		Order("time_of_day ASC, created_at ASC").
		Find(&reminders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get reminders for user %s on %s: %w", userID, day, err)
	}
	return reminders, nil
}

// UpdateOwned replaces the mutable fields of a reminder owned by reminder.UserID.
func (r *GORMReminderRepository) UpdateOwned(reminder *models.Reminder) (bool, error) {
	// A map is used so that zero values (empty notes, NULL end date) are written too.
	res := r.db.Model(&models.Reminder{}).
		Where("id = ? AND user_id = ?", reminder.ID, reminder.UserID).
		Updates(map[string]interface{}{
			"medicine_name": reminder.MedicineName,
			"dosage":        reminder.Dosage,
			"frequency":     reminder.Frequency,
			"start_date":    reminder.StartDate,
			"end_date":      reminder.EndDate,
			"time_of_day":   reminder.TimeOfDay,
			"notes":         reminder.Notes,
			"status":        reminder.Status,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to update reminder %s: %w", reminder.ID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// UpdateStatusOwned sets the status of a reminder owned by userID.
func (r *GORMReminderRepository) UpdateStatusOwned(id, userID, status string) (bool, error) {
	res := r.db.Model(&models.Reminder{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("status", status)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update status of reminder %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// DeleteOwned deletes a reminder owned by userID.
func (r *GORMReminderRepository) DeleteOwned(id, userID string) (bool, error) {
	res := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Reminder{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete reminder %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}
