package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/models"
	repo "github.com/mamadbah2/pantry/internal/repository/sheets"
	"github.com/mamadbah2/pantry/internal/service/classifier"
)

const dateLayout = "2006-01-02"

// ErrExportDisabled is returned when no spreadsheet is configured.
var ErrExportDisabled = errors.New("spreadsheet export is not configured")

// Snapshots is the read side of the inventory.
type Snapshots interface {
	Snapshot() ([]models.InventoryItem, bool)
}

// Service builds inventory summaries for WhatsApp and Google Sheets.
type Service struct {
	snapshots  Snapshots
	sheets     repo.Repository
	sheetRange string
	logger     *zap.Logger
}

// NewService wires a new reporting service instance. sheets may be nil.
func NewService(snapshots Snapshots, sheets repo.Repository, sheetRange string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{snapshots: snapshots, sheets: sheets, sheetRange: sheetRange, logger: logger}
}

// BuildDigest summarizes what is expired or about to expire at now.
func (s *Service) BuildDigest(now time.Time) string {
	items, _ := s.snapshots.Snapshot()
	state := classifier.Classify(items, now, nil)

	expired := state.Groups[models.StatusExpired]
	soon := state.Groups[models.StatusExpiringSoon]

	header := fmt.Sprintf("Pantry digest (%s)", now.Format(dateLayout))
	if len(expired) == 0 && len(soon) == 0 {
		return header + ": nothing expired or expiring soon."
	}

	var b strings.Builder
	b.WriteString(header + ":")
	writeGroup(&b, models.StatusExpired, expired)
	writeGroup(&b, models.StatusExpiringSoon, soon)
	return b.String()
}

func writeGroup(b *strings.Builder, status models.ExpirationStatus, items []models.ClassifiedItem) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s (%d):", status.Title(), len(items))
	for _, ci := range items {
		fmt.Fprintf(b, "\n- %s (%s) x%d, %s", ci.Item.Name, ci.Item.Category, ci.Item.Quantity, describeDays(ci.DaysLeft))
	}
}

func describeDays(days int) string {
	switch {
	case days < -1:
		return fmt.Sprintf("expired %d days ago", -days)
	case days == -1:
		return "expired yesterday"
	case days == 0:
		return "expires today"
	case days == 1:
		return "1 day left"
	default:
		return fmt.Sprintf("%d days left", days)
	}
}

// ExportSnapshot overwrites the configured sheet range with the classified
// inventory and returns the number of item rows written.
func (s *Service) ExportSnapshot(ctx context.Context, now time.Time) (int, error) {
	if s.sheets == nil {
		return 0, ErrExportDisabled
	}

	items, _ := s.snapshots.Snapshot()
	state := classifier.Classify(items, now, nil)

	rows := [][]interface{}{{"ID", "Name", "Category", "Quantity", "Expires", "Days left", "Status"}}
	for _, status := range models.Statuses {
		for _, ci := range state.Groups[status] {
			rows = append(rows, []interface{}{
				ci.Item.ID,
				ci.Item.Name,
				ci.Item.Category,
				ci.Item.Quantity,
				ci.Item.ExpiresAt.In(now.Location()).Format(dateLayout),
				ci.DaysLeft,
				string(ci.Status),
			})
		}
	}

	if err := s.sheets.ReplaceRange(ctx, s.sheetRange, rows); err != nil {
		return 0, fmt.Errorf("export inventory: %w", err)
	}

	s.logger.Info("inventory exported", zap.String("range", s.sheetRange), zap.Int("rows", len(rows)-1))
	return len(rows) - 1, nil
}
