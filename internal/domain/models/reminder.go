package models

import (
	"fmt"
	"time"
)

// ReminderMode selects how reminders are planned for a saved item.
type ReminderMode int

const (
	ModeNormal ReminderMode = iota
	ModeFastTest
)

func (m ReminderMode) String() string {
	if m == ModeFastTest {
		return "fast-test"
	}
	return "normal"
}

// OffsetKind names which lead time a reminder corresponds to.
type OffsetKind string

const (
	OffsetThreeDays OffsetKind = "h3"
	OffsetOneDay    OffsetKind = "h1"
	OffsetTest      OffsetKind = "test"
)

// OffsetKinds lists every kind a pending reminder may carry.
var OffsetKinds = []OffsetKind{OffsetThreeDays, OffsetOneDay, OffsetTest}

// ReminderKey addresses at most one pending reminder.
type ReminderKey struct {
	ItemID int64      `json:"item_id"`
	Kind   OffsetKind `json:"kind"`
}

func (k ReminderKey) String() string {
	return fmt.Sprintf("reminder:%d:%s", k.ItemID, k.Kind)
}

// ReminderPayload is handed back to the presenter when a reminder fires.
type ReminderPayload struct {
	ItemID         int64      `json:"item_id"`
	Kind           OffsetKind `json:"kind"`
	Title          string     `json:"title"`
	Body           string     `json:"body"`
	NotificationID int64      `json:"notification_id"`
}

// ScheduleCommand asks the job scheduler to fire Payload at FireAt,
// replacing any pending entry under Key.
type ScheduleCommand struct {
	Key     ReminderKey     `json:"key"`
	FireAt  time.Time       `json:"fire_at"`
	Payload ReminderPayload `json:"payload"`
}

// CancelCommand removes the pending entry under Key, if any.
type CancelCommand struct {
	Key ReminderKey `json:"key"`
}

// PendingReminder describes an entry currently held by the job scheduler.
type PendingReminder struct {
	Key     ReminderKey     `json:"key"`
	FireAt  time.Time       `json:"fire_at"`
	Payload ReminderPayload `json:"payload"`
}
