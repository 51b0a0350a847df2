package reminders

import (
	"fmt"
	"time"

	"github.com/mamadbah2/pantry/internal/domain/models"
)

const (
	// DefaultHour is the local wall-clock hour normal reminders fire at.
	DefaultHour = 7

	// DefaultTestDelay is how long after a save a fast-test reminder fires.
	DefaultTestDelay = 5 * time.Second

	reminderTitle = "Expiry warning!"
)

// offsets maps the normal-mode kinds to their lead time in calendar days.
var offsets = []struct {
	kind models.OffsetKind
	days int
}{
	{models.OffsetThreeDays, 3},
	{models.OffsetOneDay, 1},
}

// Planner computes reminder commands for inventory writes. It holds no state
// and performs no I/O.
type Planner struct {
	Location  *time.Location
	Hour      int
	TestDelay time.Duration
}

// NewPlanner returns a planner firing at DefaultHour in loc.
func NewPlanner(loc *time.Location) Planner {
	if loc == nil {
		loc = time.Local
	}
	return Planner{Location: loc, Hour: DefaultHour, TestDelay: DefaultTestDelay}
}

// OnItemSaved plans the reminders for a freshly saved item. Placeholders get
// none, and normal-mode reminders whose fire time is not after now are
// dropped.
func (p Planner) OnItemSaved(item models.InventoryItem, mode models.ReminderMode, now time.Time) []models.ScheduleCommand {
	if item.IsPlaceholder() {
		return nil
	}

	if mode == models.ModeFastTest {
		return []models.ScheduleCommand{p.command(item, models.OffsetTest, now.Add(p.TestDelay))}
	}

	var commands []models.ScheduleCommand
	for _, offset := range offsets {
		fireAt := p.FireTime(item.ExpiresAt, offset.days)
		if !fireAt.After(now) {
			continue
		}
		commands = append(commands, p.command(item, offset.kind, fireAt))
	}
	return commands
}

// OnItemRemoved cancels every kind of reminder the item could hold.
func (p Planner) OnItemRemoved(itemID int64) []models.CancelCommand {
	commands := make([]models.CancelCommand, 0, len(models.OffsetKinds))
	for _, kind := range models.OffsetKinds {
		commands = append(commands, models.CancelCommand{Key: models.ReminderKey{ItemID: itemID, Kind: kind}})
	}
	return commands
}

// OnCategoryRemoved cancels the reminders of every listed item.
func (p Planner) OnCategoryRemoved(itemIDs []int64) []models.CancelCommand {
	var commands []models.CancelCommand
	for _, id := range itemIDs {
		commands = append(commands, p.OnItemRemoved(id)...)
	}
	return commands
}

// Reschedule is the edit path: cancel every existing key unconditionally,
// then plan from the edited item.
func (p Planner) Reschedule(item models.InventoryItem, mode models.ReminderMode, now time.Time) ([]models.CancelCommand, []models.ScheduleCommand) {
	return p.OnItemRemoved(item.ID), p.OnItemSaved(item, mode, now)
}

// FireTime returns Hour:00 local time on the calendar day daysBefore days
// ahead of expiresAt.
func (p Planner) FireTime(expiresAt time.Time, daysBefore int) time.Time {
	loc := p.location()
	local := expiresAt.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d-daysBefore, p.Hour, 0, 0, 0, loc)
}

func (p Planner) location() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}

func (p Planner) command(item models.InventoryItem, kind models.OffsetKind, fireAt time.Time) models.ScheduleCommand {
	key := models.ReminderKey{ItemID: item.ID, Kind: kind}
	return models.ScheduleCommand{
		Key:    key,
		FireAt: fireAt,
		Payload: models.ReminderPayload{
			ItemID:         item.ID,
			Kind:           kind,
			Title:          reminderTitle,
			Body:           messageFor(item.Name, kind),
			NotificationID: item.ID,
		},
	}
}

func messageFor(name string, kind models.OffsetKind) string {
	switch kind {
	case models.OffsetThreeDays:
		return fmt.Sprintf("Reminder! '%s' expires in 3 days.", name)
	case models.OffsetOneDay:
		return fmt.Sprintf("ATTENTION! '%s' expires TOMORROW!", name)
	case models.OffsetTest:
		return fmt.Sprintf("TEST: '%s' was scheduled successfully!", name)
	default:
		return fmt.Sprintf("Product '%s' will expire soon.", name)
	}
}
