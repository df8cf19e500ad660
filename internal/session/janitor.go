package session

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ScheduleSweep adds a job to c that runs registry.Sweep on the given cron
// schedule (for example "@every 1m").
func ScheduleSweep(c *cron.Cron, registry *Registry, schedule string, log logrus.FieldLogger) error {
	_, err := c.AddFunc(schedule, func() {
		if removed := registry.Sweep(); removed > 0 {
			log.WithFields(logrus.Fields{
				"removed":   removed,
				"remaining": registry.Len(),
			}).Info("Swept expired sessions")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid session sweep schedule %q: %w", schedule, err)
	}
	return nil
}
