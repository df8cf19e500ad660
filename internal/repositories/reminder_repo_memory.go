package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"medreminder/internal/models"

	"github.com/google/uuid"
)

// MemoryReminderRepository is an in-memory implementation of ReminderRepository.
type MemoryReminderRepository struct {
	reminders map[string]models.Reminder
	mu        sync.RWMutex
}

// NewMemoryReminderRepository creates a new instance of MemoryReminderRepository.
func NewMemoryReminderRepository() *MemoryReminderRepository {
	return &MemoryReminderRepository{
		reminders: make(map[string]models.Reminder),
	}
}

// Create adds a new reminder.
func (r *MemoryReminderRepository) Create(reminder *models.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if reminder.ID == "" {
		reminder.ID = uuid.New().String()
	}
	if reminder.Status == "" {
		reminder.Status = models.StatusActive
	}
	if reminder.CreatedAt.IsZero() {
		reminder.CreatedAt = time.Now()
	}
	r.reminders[reminder.ID] = cloneReminder(*reminder)
	return nil
}

// GetByID returns a reminder by its ID.
func (r *MemoryReminderRepository) GetByID(id string) (*models.Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reminder, ok := r.reminders[id]
	if !ok {
		return nil, fmt.Errorf("reminder with ID %s: %w", id, ErrNotFound)
	}
	reminder = cloneReminder(reminder)
	return &reminder, nil
}

// GetByUserID returns the user's reminders ordered by time of day.
func (r *MemoryReminderRepository) GetByUserID(userID string) ([]models.Reminder, error) {
	return r.filter(func(rem *models.Reminder) bool {
		return rem.UserID == userID
	}), nil
}

// GetActiveOn returns the user's reminders due on day ordered by time of day.
func (r *MemoryReminderRepository) GetActiveOn(userID, day string) ([]models.Reminder, error) {
	return r.filter(func(rem *models.Reminder) bool {
		return rem.UserID == userID && rem.ActiveOn(day)
	}), nil
}

// UpdateOwned replaces the mutable fields of a reminder owned by reminder.UserID.
func (r *MemoryReminderRepository) UpdateOwned(reminder *models.Reminder) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.reminders[reminder.ID]
	if !ok || existing.UserID != reminder.UserID {
		return false, nil
	}
	existing.MedicineName = reminder.MedicineName
	existing.Dosage = reminder.Dosage
	existing.Frequency = reminder.Frequency
	existing.StartDate = reminder.StartDate
	existing.EndDate = reminder.EndDate
	existing.TimeOfDay = reminder.TimeOfDay
	existing.Notes = reminder.Notes
	existing.Status = reminder.Status
	r.reminders[reminder.ID] = cloneReminder(existing)
	return true, nil
}

// UpdateStatusOwned sets the status of a reminder owned by userID.
func (r *MemoryReminderRepository) UpdateStatusOwned(id, userID, status string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.reminders[id]
	if !ok || existing.UserID != userID {
		return false, nil
	}
	existing.Status = status
	r.reminders[id] = existing
	return true, nil
}

// DeleteOwned removes a reminder owned by userID.
func (r *MemoryReminderRepository) DeleteOwned(id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.reminders[id]
	if !ok || existing.UserID != userID {
		return false, nil
	}
	delete(r.reminders, id)
	return true, nil
}

func (r *MemoryReminderRepository) filter(keep func(*models.Reminder) bool) []models.Reminder {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Reminder, 0)
	for _, rem := range r.reminders {
		if keep(&rem) {
			list = append(list, cloneReminder(rem))
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].TimeOfDay == list[j].TimeOfDay {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].TimeOfDay < list[j].TimeOfDay
	})
	return list
}

// cloneReminder copies the EndDate pointer so stored values cannot be mutated by callers.
func cloneReminder(rem models.Reminder) models.Reminder {
	if rem.EndDate != nil {
		end := *rem.EndDate
		rem.EndDate = &end
	}
	rem.User = nil
	return rem
}
