package classifier

import (
	"sort"
	"time"

	"github.com/mamadbah2/pantry/internal/domain/models"
)

const (
	day = 24 * time.Hour

	// SoonWindow is the inclusive upper bound of the EXPIRING_SOON bucket.
	SoonWindow = 3 * day

	// MinDaysLeft keeps very old items from blowing up the display.
	MinDaysLeft = -999
)

// DaysLeft returns the floored number of whole days until expiresAt,
// clamped to MinDaysLeft.
func DaysLeft(expiresAt, now time.Time) int {
	remaining := expiresAt.Sub(now)
	days := int64(remaining / day)
	if remaining%day != 0 && remaining < 0 {
		days--
	}
	if days < MinDaysLeft {
		return MinDaysLeft
	}
	return int(days)
}

// Status buckets an expiration relative to now. The boundary is inclusive
// at zero and at SoonWindow.
func Status(expiresAt, now time.Time) models.ExpirationStatus {
	remaining := expiresAt.Sub(now)
	switch {
	case remaining <= 0:
		return models.StatusExpired
	case remaining <= SoonWindow:
		return models.StatusExpiringSoon
	default:
		return models.StatusSafe
	}
}

// Classify turns an inventory snapshot into the grouped list view. Only real
// items (quantity > 0) are considered; a non-nil filter keeps a single
// category. Items keep their snapshot order inside each group.
func Classify(items []models.InventoryItem, now time.Time, filter *string) models.ViewState {
	groups := make(models.GroupedView)

	for _, item := range items {
		if item.IsPlaceholder() {
			continue
		}
		if filter != nil && item.Category != *filter {
			continue
		}

		status := Status(item.ExpiresAt, now)
		groups[status] = append(groups[status], models.ClassifiedItem{
			Item:     item,
			DaysLeft: DaysLeft(item.ExpiresAt, now),
			Status:   status,
		})
	}

	if len(groups) == 0 {
		return models.ViewState{Phase: models.PhaseEmpty}
	}

	return models.ViewState{Phase: models.PhaseReady, Groups: groups}
}

// Summarize counts real items per category. Every category present in the
// snapshot is listed, even when it only holds placeholders.
func Summarize(items []models.InventoryItem) []models.CategoryCount {
	counts := make(map[string]int)
	for _, item := range items {
		if _, ok := counts[item.Category]; !ok {
			counts[item.Category] = 0
		}
		if !item.IsPlaceholder() {
			counts[item.Category]++
		}
	}

	summary := make([]models.CategoryCount, 0, len(counts))
	for name, count := range counts {
		summary = append(summary, models.CategoryCount{Name: name, Count: count})
	}
	sort.Slice(summary, func(i, j int) bool { return summary[i].Name < summary[j].Name })

	return summary
}
