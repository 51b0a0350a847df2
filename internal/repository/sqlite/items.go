package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mamadbah2/pantry/internal/domain/models"
)

const itemColumns = `id, name, category, quantity, expires_at, note`

type itemRow struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	Category  string `db:"category"`
	Quantity  int    `db:"quantity"`
	ExpiresAt int64  `db:"expires_at"`
	Note      string `db:"note"`
}

func (r itemRow) model() models.InventoryItem {
	return models.InventoryItem{
		ID:        r.ID,
		Name:      r.Name,
		Category:  r.Category,
		Quantity:  r.Quantity,
		ExpiresAt: time.UnixMilli(r.ExpiresAt),
		Note:      r.Note,
	}
}

func rowsToItems(rows []itemRow) []models.InventoryItem {
	items := make([]models.InventoryItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.model())
	}
	return items
}

// ItemRepository persists inventory rows, placeholders included.
type ItemRepository struct {
	db *sqlx.DB
}

// NewItemRepository wraps an open database.
func NewItemRepository(db *sqlx.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// List returns every row ordered by expiration ascending, ties by id.
func (r *ItemRepository) List(ctx context.Context) ([]models.InventoryItem, error) {
	var rows []itemRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+itemColumns+` FROM items ORDER BY expires_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return rowsToItems(rows), nil
}

// ListByCategory returns the rows of one category in snapshot order.
func (r *ItemRepository) ListByCategory(ctx context.Context, category string) ([]models.InventoryItem, error) {
	var rows []itemRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+itemColumns+` FROM items WHERE category = ? ORDER BY expires_at ASC, id ASC`, category)
	if err != nil {
		return nil, fmt.Errorf("listing items of category %q: %w", category, err)
	}
	return rowsToItems(rows), nil
}

// ListProducts returns the rows with a positive quantity.
func (r *ItemRepository) ListProducts(ctx context.Context) ([]models.InventoryItem, error) {
	var rows []itemRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+itemColumns+` FROM items WHERE quantity > 0 ORDER BY expires_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return rowsToItems(rows), nil
}

// Get loads a single row by id.
func (r *ItemRepository) Get(ctx context.Context, id int64) (models.InventoryItem, error) {
	var row itemRow
	err := r.db.GetContext(ctx, &row, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.InventoryItem{}, models.ErrItemNotFound
	}
	if err != nil {
		return models.InventoryItem{}, fmt.Errorf("getting item %d: %w", id, err)
	}
	return row.model(), nil
}

// Insert stores a new row and returns it with its assigned id.
func (r *ItemRepository) Insert(ctx context.Context, item models.InventoryItem) (models.InventoryItem, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO items (name, category, quantity, expires_at, note) VALUES (?, ?, ?, ?, ?)`,
		item.Name, item.Category, item.Quantity, item.ExpiresAt.UnixMilli(), item.Note)
	if err != nil {
		return models.InventoryItem{}, fmt.Errorf("inserting item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.InventoryItem{}, fmt.Errorf("reading inserted id: %w", err)
	}
	item.ID = id
	return item, nil
}

// Update overwrites the row with the item's id.
func (r *ItemRepository) Update(ctx context.Context, item models.InventoryItem) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE items SET name = ?, category = ?, quantity = ?, expires_at = ?, note = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		item.Name, item.Category, item.Quantity, item.ExpiresAt.UnixMilli(), item.Note, item.ID)
	if err != nil {
		return fmt.Errorf("updating item %d: %w", item.ID, err)
	}
	return expectAffected(res, item.ID)
}

// Delete removes one row.
func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item %d: %w", id, err)
	}
	return expectAffected(res, id)
}

// DeleteProducts removes every row with a positive quantity, leaving
// category placeholders in place.
func (r *ItemRepository) DeleteProducts(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE quantity > 0`)
	if err != nil {
		return 0, fmt.Errorf("clearing products: %w", err)
	}
	return res.RowsAffected()
}

// RenameCategory moves every row of oldName to newName.
func (r *ItemRepository) RenameCategory(ctx context.Context, oldName, newName string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE items SET category = ?, updated_at = CURRENT_TIMESTAMP WHERE category = ?`, newName, oldName)
	if err != nil {
		return 0, fmt.Errorf("renaming category %q: %w", oldName, err)
	}
	return res.RowsAffected()
}

// DeleteCategory removes every row of the category, placeholder included.
func (r *ItemRepository) DeleteCategory(ctx context.Context, category string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE category = ?`, category)
	if err != nil {
		return 0, fmt.Errorf("deleting category %q: %w", category, err)
	}
	return res.RowsAffected()
}

func expectAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows for item %d: %w", id, err)
	}
	if n == 0 {
		return models.ErrItemNotFound
	}
	return nil
}
