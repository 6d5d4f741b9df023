package domain

import (
	"math"
	"time"
)

// One stocked item within a warehouse. Thresholds come from the
// inventory system and bound the healthy stock band.
type InventoryItem struct {
	ID           string
	Name         string
	Category     string
	Quantity     int
	Unit         string
	MinThreshold int
	MaxThreshold int
	UpdatedAt    time.Time
}

// BelowThreshold reports whether stock has fallen strictly below the
// minimum. Stock sitting exactly at the minimum is healthy.
func (i *InventoryItem) BelowThreshold() bool {
	return i.Quantity < i.MinThreshold
}

func (i *InventoryItem) AboveThreshold() bool {
	return i.MaxThreshold > 0 && i.Quantity > i.MaxThreshold
}

// Excess is the quantity available to give away without dropping below
// the minimum threshold.
func (i *InventoryItem) Excess() int {
	if e := i.Quantity - i.MinThreshold; e > 0 {
		return e
	}
	return 0
}

// ThresholdFraction places the current quantity within the
// [MinThreshold, MaxThreshold] band: 0 at the minimum, 1 at the
// maximum. Values outside the band run negative or past 1 so balancing
// sees the full size of a deficit or surplus. Items without a
// meaningful band report 0.
func (i *InventoryItem) ThresholdFraction() float64 {
	span := i.MaxThreshold - i.MinThreshold
	if span <= 0 {
		return 0
	}
	return float64(i.Quantity-i.MinThreshold) / float64(span)
}

// DaysOfSupply estimates how long the current stock lasts at the given
// daily usage. Zero usage means the stock never runs out.
func (i *InventoryItem) DaysOfSupply(dailyUsage int) float64 {
	if dailyUsage <= 0 {
		return math.Inf(1)
	}
	return float64(i.Quantity) / float64(dailyUsage)
}

// A storage site and its current stock, keyed by item ID.
type Warehouse struct {
	ID       string
	Name     string
	Location string
	Capacity int
	Items    map[string]*InventoryItem
}

func (w *Warehouse) TotalQuantity() int {
	total := 0
	for _, item := range w.Items {
		total += item.Quantity
	}
	return total
}

// StockFraction is total stock over capacity. Warehouses without a
// known capacity report full so they never trip capacity alerts.
func (w *Warehouse) StockFraction() float64 {
	if w.Capacity <= 0 {
		return 1
	}
	return float64(w.TotalQuantity()) / float64(w.Capacity)
}

func (w *Warehouse) ItemsBelowThreshold() []*InventoryItem {
	var out []*InventoryItem
	for _, item := range w.Items {
		if item.BelowThreshold() {
			out = append(out, item)
		}
	}
	return out
}
