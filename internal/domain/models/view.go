package models

// ExpirationStatus buckets an item by urgency. Derived, never stored.
type ExpirationStatus string

const (
	StatusExpired      ExpirationStatus = "EXPIRED"
	StatusExpiringSoon ExpirationStatus = "EXPIRING_SOON"
	StatusSafe         ExpirationStatus = "SAFE"
)

// Statuses lists the buckets in presentation order.
var Statuses = []ExpirationStatus{StatusExpired, StatusExpiringSoon, StatusSafe}

// Title returns the human-facing bucket header.
func (s ExpirationStatus) Title() string {
	switch s {
	case StatusExpired:
		return "Expired"
	case StatusExpiringSoon:
		return "Expiring soon"
	case StatusSafe:
		return "Safe"
	default:
		return string(s)
	}
}

// ClassifiedItem is a read-only projection of an item at a reference instant.
type ClassifiedItem struct {
	Item     InventoryItem    `json:"item"`
	DaysLeft int              `json:"days_left"`
	Status   ExpirationStatus `json:"status"`
}

// GroupedView maps each non-empty bucket to its items, in snapshot order.
type GroupedView map[ExpirationStatus][]ClassifiedItem

// ViewPhase distinguishes the terminal states of the live list.
type ViewPhase string

const (
	PhaseLoading ViewPhase = "loading"
	PhaseEmpty   ViewPhase = "empty"
	PhaseReady   ViewPhase = "ready"
)

// ViewState is what observers of the inventory list receive.
type ViewState struct {
	Phase  ViewPhase   `json:"phase"`
	Groups GroupedView `json:"groups,omitempty"`
}

// CategoryCount is one row of the category summary.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
