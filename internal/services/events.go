package services

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

// Routing keys of reminder lifecycle events.
const (
	EventReminderCreated = "reminder.created"
	EventReminderUpdated = "reminder.updated"
	EventReminderDeleted = "reminder.deleted"
	EventReminderTaken   = "reminder.taken"
)

// EventPublisher delivers serialized events to a broker.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// ReminderEvent is the payload published after a reminder mutation.
type ReminderEvent struct {
	Type       string    `json:"type"`
	ReminderID string    `json:"reminderId"`
	UserID     string    `json:"userId"`
	Status     string    `json:"status,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// publish never fails the caller: the mutation has already been committed.
func publish(p EventPublisher, log logrus.FieldLogger, event ReminderEvent) {
	if p == nil {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).Error("Failed to marshal reminder event")
		return
	}
	if err := p.Publish(event.Type, body); err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"event":       event.Type,
			"reminder_id": event.ReminderID,
		}).Warn("Failed to publish reminder event")
	}
}
