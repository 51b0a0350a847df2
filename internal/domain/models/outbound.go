package models

import "time"

// OutboundMessageRequest is a text pushed to a WhatsApp recipient.
type OutboundMessageRequest struct {
	To         string `json:"to" binding:"required"`
	Message    string `json:"message" binding:"required"`
	PreviewURL bool   `json:"preview_url"`
}

// DeliveryStatus is the outcome of presenting a fired reminder.
type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
	DeliveryLogged DeliveryStatus = "logged"
)

// ReminderDelivery records one presented reminder.
type ReminderDelivery struct {
	Key       string         `bson:"key" json:"key"`
	ItemID    int64          `bson:"item_id" json:"item_id"`
	Kind      OffsetKind     `bson:"kind" json:"kind"`
	Title     string         `bson:"title" json:"title"`
	Body      string         `bson:"body" json:"body"`
	Status    DeliveryStatus `bson:"status" json:"status"`
	MessageID string         `bson:"message_id,omitempty" json:"message_id,omitempty"`
	Error     string         `bson:"error,omitempty" json:"error,omitempty"`
	At        time.Time      `bson:"at" json:"at"`
}
