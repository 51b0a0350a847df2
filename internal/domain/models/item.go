package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidItem is the parent of every validation failure on save.
var ErrInvalidItem = errors.New("invalid item")

var (
	ErrBlankName           = fmt.Errorf("%w: name must not be blank", ErrInvalidItem)
	ErrBlankCategory       = fmt.Errorf("%w: category must not be blank", ErrInvalidItem)
	ErrNonPositiveQuantity = fmt.Errorf("%w: quantity must be positive", ErrInvalidItem)
)

// ErrItemNotFound indicates the requested row does not exist in storage.
var ErrItemNotFound = errors.New("item not found")

// PlaceholderPrefix names the zero-quantity row that records a category.
const PlaceholderPrefix = "Category: "

// InventoryItem is one perishable product, or a category placeholder when
// Quantity is zero.
type InventoryItem struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Quantity  int       `json:"quantity"`
	ExpiresAt time.Time `json:"expires_at"`
	Note      string    `json:"note,omitempty"`
}

// IsPlaceholder reports whether the row only records a category's existence.
func (i InventoryItem) IsPlaceholder() bool {
	return i.Quantity <= 0
}

// Validate applies the save rules for real products.
func (i InventoryItem) Validate() error {
	switch {
	case strings.TrimSpace(i.Name) == "":
		return ErrBlankName
	case strings.TrimSpace(i.Category) == "":
		return ErrBlankCategory
	case i.Quantity <= 0:
		return ErrNonPositiveQuantity
	}
	return nil
}

// NewPlaceholder builds the zero-quantity row representing a category.
func NewPlaceholder(category string) InventoryItem {
	return InventoryItem{
		Name:      PlaceholderPrefix + category,
		Category:  category,
		Quantity:  0,
		ExpiresAt: time.UnixMilli(0),
	}
}
