package reminders

import (
	"time"

	"github.com/mamadbah2/pantry/internal/domain/models"
)

// JobScheduler is the external collaborator that owns pending reminders.
// ScheduleOnce replaces any entry under the same key; Cancel is a no-op for
// unknown keys.
type JobScheduler interface {
	ScheduleOnce(key models.ReminderKey, fireAt time.Time, payload models.ReminderPayload)
	Cancel(key models.ReminderKey)
}

// Apply issues cancels before schedules.
func Apply(jobs JobScheduler, cancels []models.CancelCommand, schedules []models.ScheduleCommand) {
	for _, c := range cancels {
		jobs.Cancel(c.Key)
	}
	for _, s := range schedules {
		jobs.ScheduleOnce(s.Key, s.FireAt, s.Payload)
	}
}
