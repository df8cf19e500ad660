package models

import "time"

// Reminder statuses.
const (
	StatusActive    = "ACTIVE"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// Wire and storage layouts. Both sort lexicographically in chronological order.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Reminder is a scheduled medicine intake owned by a single user.
type Reminder struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID       string    `json:"userId" gorm:"index;type:varchar(36);not null"`
	MedicineName string    `json:"medicineName" gorm:"type:varchar(255);not null"`
	Dosage       string    `json:"dosage" gorm:"type:varchar(100);not null"`
	Frequency    string    `json:"frequency" gorm:"type:varchar(100);not null"`
	StartDate    string    `json:"startDate" gorm:"type:varchar(10);not null"`
	EndDate      *string   `json:"endDate" gorm:"type:varchar(10)"`
	TimeOfDay    string    `json:"timeOfDay" gorm:"type:varchar(8);not null"`
	Notes        string    `json:"notes" gorm:"type:text"`
	Status       string    `json:"status" gorm:"type:varchar(20);not null;default:ACTIVE;index"`
	CreatedAt    time.Time `json:"createdAt"`

	User *User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// ActiveOn reports whether the reminder is due on day (formatted with DateLayout).
func (r *Reminder) ActiveOn(day string) bool {
	if r.Status != StatusActive || r.StartDate > day {
		return false
	}
	return r.EndDate == nil || *r.EndDate >= day
}
